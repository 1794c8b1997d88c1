package billing

import (
	stderrors "errors"

	"github.com/shopspring/decimal"

	"agency-workers/internal/models"
)

var (
	ErrAlreadySelected = stderrors.New("This student is already in your selection.")
	ErrNotSelected     = stderrors.New("student is not in the selection")
)

// Row is a student priced for the current course relation and period.
type Row struct {
	StudentID        string             `json:"studentId"`
	Line             models.InvoiceLine `json:"line"`
	Fee              decimal.Decimal    `json:"fee"`
	Checked          bool               `json:"selected"`
	CourseRelationID string             `json:"courseRelationId"`
	Year             string             `json:"year"`
	Session          string             `json:"session"`
}

// Selection tracks the working set of an invoice or remit being built.
// Rows move available -> selected, and from selected either back to
// available (Remove) or out altogether (MarkSubmitted).
type Selection struct {
	available []Row
	selected  []Row
}

func NewSelection(available ...Row) *Selection {
	s := &Selection{}
	for _, r := range available {
		r.Checked = false
		s.available = append(s.available, r)
	}
	return s
}

// Add moves a candidate into the selection, checked.
func (s *Selection) Add(candidate Row) error {
	if s.indexOf(candidate.StudentID) >= 0 {
		return ErrAlreadySelected
	}
	candidate.Checked = true
	s.selected = append(s.selected, candidate)
	s.available = removeRow(s.available, candidate.StudentID)
	return nil
}

// Toggle flips the checked flag of a selected row.
func (s *Selection) Toggle(studentID string) error {
	i := s.indexOf(studentID)
	if i < 0 {
		return ErrNotSelected
	}
	s.selected[i].Checked = !s.selected[i].Checked
	return nil
}

// Remove returns a selected row to the available pool, unchecked.
func (s *Selection) Remove(studentID string) error {
	i := s.indexOf(studentID)
	if i < 0 {
		return ErrNotSelected
	}
	row := s.selected[i]
	s.selected = append(s.selected[:i], s.selected[i+1:]...)

	for _, r := range s.available {
		if r.StudentID == studentID {
			return nil
		}
	}
	row.Checked = false
	s.available = append(s.available, row)
	return nil
}

// Checked returns the checked rows in the order they were added.
func (s *Selection) Checked() []Row {
	out := make([]Row, 0, len(s.selected))
	for _, r := range s.selected {
		if r.Checked {
			out = append(out, r)
		}
	}
	return out
}

func (s *Selection) Selected() []Row  { return append([]Row(nil), s.selected...) }
func (s *Selection) Available() []Row { return append([]Row(nil), s.available...) }

// Fees lists the fees of the checked rows.
func (s *Selection) Fees() []decimal.Decimal {
	checked := s.Checked()
	fees := make([]decimal.Decimal, 0, len(checked))
	for _, r := range checked {
		fees = append(fees, r.Fee)
	}
	return fees
}

// Subtotal sums the checked rows only.
func (s *Selection) Subtotal() decimal.Decimal {
	return Sum(s.Fees())
}

// MarkSubmitted drops the selected rows after a successful submission.
// A failed submission should leave the selection untouched for a retry.
func (s *Selection) MarkSubmitted() {
	s.selected = nil
}

func (s *Selection) indexOf(studentID string) int {
	for i, r := range s.selected {
		if r.StudentID == studentID {
			return i
		}
	}
	return -1
}

func removeRow(rows []Row, studentID string) []Row {
	out := rows[:0]
	for _, r := range rows {
		if r.StudentID != studentID {
			out = append(out, r)
		}
	}
	return out
}
