package models

import (
	"bytes"
	"encoding/json"
)

// Ref is a reference to another document. The API sends either the bare id or
// the populated object, depending on the endpoint.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var obj struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
		Term string `json:"term"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	r.Name = obj.Name
	if r.Name == "" {
		r.Name = obj.Term
	}
	return nil
}

// CourseRelationRef is a course relation reference that may arrive populated
// with its institute, course and term.
type CourseRelationRef struct {
	ID        string `json:"_id"`
	Institute Ref    `json:"institute"`
	Course    Ref    `json:"course"`
	Term      Ref    `json:"term"`
}

func (r *CourseRelationRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = CourseRelationRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		*r = CourseRelationRef{}
		return json.Unmarshal(data, &r.ID)
	}

	type plain CourseRelationRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = CourseRelationRef(p)
	return nil
}

// idOrObject decodes data as a bare id into *id, or as an object via full.
// null leaves both untouched.
func idOrObject(data []byte, id *string, full func([]byte) error) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, id)
	}
	return full(data)
}
