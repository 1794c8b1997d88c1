// Package rollimport turns a college roll CSV into upload rows: parsing,
// duplicate detection and directory matching.
package rollimport

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

const (
	ColumnRegNo  = "Reg No"
	ColumnName   = "Name"
	ColumnMobile = "Mobile"
	ColumnEmail  = "Email"
)

var RequiredColumns = []string{ColumnRegNo, ColumnName, ColumnMobile}

var ErrEmptyCSV = stderrors.New("CSV file is empty.")

// MissingColumnsError lists required headers absent from the file.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Missing required columns: " + strings.Join(e.Columns, ", ")
}

// Record is one data line of the roll CSV. Line is 1-based and counts the
// header.
type Record struct {
	Line  int
	RegNo string
	Name  string
	Phone string
	Email string
}

// ParseCSV reads a roll file with a header row. Headers are checked before
// any data, so a header-only file missing columns reports the columns. Blank
// lines are skipped, and a file with a header but no data counts as empty.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var records []Record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blank(fields) {
			continue
		}
		line, _ := reader.FieldPos(0)
		records = append(records, Record{
			Line:  line,
			RegNo: field(fields, index, ColumnRegNo),
			Name:  field(fields, index, ColumnName),
			Phone: field(fields, index, ColumnMobile),
			Email: field(fields, index, ColumnEmail),
		})
	}

	if len(records) == 0 {
		return nil, ErrEmptyCSV
	}
	return records, nil
}

func field(fields []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
