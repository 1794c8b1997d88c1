package documents

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"agency-workers/internal/models"
)

const StudentsSheet = "Students"

var identityColumns = []string{
	"Ref ID", "College Roll", "First Name", "Last Name", "Email", "Phone",
	"Date of Birth", "Nationality", "Passport No",
}

var applicationColumns = []string{"Institute", "Course", "Term", "Choice", "Status"}

// StudentColumns is the fixed header: identity columns followed by one group
// per application slot.
func StudentColumns(slots int) []string {
	cols := append([]string(nil), identityColumns...)
	for i := 1; i <= slots; i++ {
		for _, c := range applicationColumns {
			cols = append(cols, fmt.Sprintf("App %d %s", i, c))
		}
	}
	return cols
}

// StudentRow flattens a student into the StudentColumns layout. Extra
// applications beyond slots are dropped; missing ones stay blank.
func StudentRow(st models.Student, slots int) []interface{} {
	row := []interface{}{
		st.RefID, st.CollegeRoll, st.FirstName, st.LastName, st.Email, st.Phone,
		st.DOB, st.Nationality, st.PassportNumber,
	}
	for i := 0; i < slots; i++ {
		if i >= len(st.Applications) {
			row = append(row, "", "", "", "", "")
			continue
		}
		app := st.Applications[i]
		row = append(row,
			firstNonEmpty(app.Institution.Name, app.CourseRelation.Institute.Name),
			firstNonEmpty(app.Course.Name, app.CourseRelation.Course.Name),
			firstNonEmpty(app.Term.Name, app.CourseRelation.Term.Name),
			app.Choice,
			app.Status,
		)
	}
	return row
}

// ExportStudents streams the students into a single-sheet workbook.
func ExportStudents(w io.Writer, students []models.Student, slots int) error {
	if slots < 0 {
		slots = 0
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StudentsSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00A185"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	sw, err := f.NewStreamWriter(StudentsSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	columns := StudentColumns(slots)
	if err := sw.SetColWidth(1, len(columns), 18); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, st := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, StudentRow(st, slots)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	return f.Write(w)
}

// StudentsFileName names an export by its generation time.
func StudentsFileName(stamp string) string { return fileName("students", stamp, ".xlsx") }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
