package rollimport

import (
	"github.com/google/uuid"

	"agency-workers/internal/models"
)

const (
	MessageDuplicate = "Duplicate Found"
	MessageNotFound  = "Student not found in database"
)

// Lookup resolves a record to a student id.
type Lookup func(Record) (studentID string, found bool)

// Classify builds upload rows. Duplicates are flagged without a lookup; the
// rest are found or error depending on the directory.
func Classify(records []Record, lookup Lookup) []models.RollRow {
	dups := DetectDuplicates(records, PhoneKey, EmailKey)

	rows := make([]models.RollRow, 0, len(records))
	for i, rec := range records {
		row := models.RollRow{
			TempID: uuid.NewString(),
			RegNo:  rec.RegNo,
			Name:   rec.Name,
			Phone:  rec.Phone,
			Email:  rec.Email,
		}
		switch {
		case dups[i].Duplicate:
			row.Status = models.RowDuplicate
			row.Message = MessageDuplicate
			row.DuplicateType = dups[i].Type
		default:
			if id, ok := lookup(rec); ok {
				row.Status = models.RowFound
				row.StudentID = models.StudentRef{ID: id}
			} else {
				row.Status = models.RowError
				row.Message = MessageNotFound
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Reclassify recomputes row statuses from stored rows, as the review screen
// does after every reload.
func Reclassify(rows []models.RollRow) []models.RollRow {
	records := make([]Record, len(rows))
	for i, r := range rows {
		records[i] = recordOf(r)
	}
	dups := DetectDuplicates(records, PhoneKey, EmailKey)

	out := make([]models.RollRow, len(rows))
	for i, r := range rows {
		r.DuplicateType = ""
		r.Message = ""
		switch {
		case dups[i].Duplicate:
			r.Status = models.RowDuplicate
			r.Message = MessageDuplicate
			r.DuplicateType = dups[i].Type
		case !r.StudentID.IsZero():
			r.Status = models.RowFound
		default:
			r.Status = models.RowError
			r.Message = MessageNotFound
		}
		out[i] = r
	}
	return out
}

// Summary counts rows per status.
func Summary(rows []models.RollRow) map[string]int {
	out := map[string]int{}
	for _, r := range rows {
		out[r.Status]++
	}
	return out
}
