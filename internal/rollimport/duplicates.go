package rollimport

import (
	"strings"

	"agency-workers/internal/models"
)

// Key extracts one identity value from a record. Empty values never collide.
type Key struct {
	Name  string
	Value func(Record) string
}

var (
	PhoneKey = Key{Name: models.DuplicatePhone, Value: func(r Record) string {
		return strings.TrimSpace(r.Phone)
	}}
	EmailKey = Key{Name: models.DuplicateEmail, Value: func(r Record) string {
		return strings.ToLower(strings.TrimSpace(r.Email))
	}}
)

// Classification is the duplicate verdict for the record at the same index.
type Classification struct {
	Duplicate bool
	// Type is the colliding key name, or "both" when more than one collided.
	Type string
}

// DetectDuplicates counts each key's values across all records and flags a
// record whose value appears more than once.
func DetectDuplicates(records []Record, keys ...Key) []Classification {
	counts := make([]map[string]int, len(keys))
	for k, key := range keys {
		counts[k] = make(map[string]int, len(records))
		for _, r := range records {
			if v := key.Value(r); v != "" {
				counts[k][v]++
			}
		}
	}

	out := make([]Classification, len(records))
	for i, r := range records {
		var hits []string
		for k, key := range keys {
			if v := key.Value(r); v != "" && counts[k][v] > 1 {
				hits = append(hits, key.Name)
			}
		}
		switch len(hits) {
		case 0:
		case 1:
			out[i] = Classification{Duplicate: true, Type: hits[0]}
		default:
			out[i] = Classification{Duplicate: true, Type: models.DuplicateBoth}
		}
	}
	return out
}

func recordOf(row models.RollRow) Record {
	return Record{RegNo: row.RegNo, Name: row.Name, Phone: row.Phone, Email: row.Email}
}
