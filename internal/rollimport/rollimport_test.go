package rollimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/models"
)

func TestParseCSV(t *testing.T) {
	in := "\ufeffReg No,Name,Mobile,Email\n" +
		"R100,Jane Doe,0123456789,jane@example.com\n" +
		"\n" +
		" R101 , John Roe ,0700000000,\n" +
		",,,\n" +
		"R102,\"Smith, Anna\",0711111111\n"

	records, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{Line: 2, RegNo: "R100", Name: "Jane Doe", Phone: "0123456789", Email: "jane@example.com"}, records[0])
	assert.Equal(t, "R101", records[1].RegNo)
	assert.Equal(t, "John Roe", records[1].Name)
	assert.Empty(t, records[1].Email)
	assert.Equal(t, "Smith, Anna", records[2].Name)
	assert.Empty(t, records[2].Email, "short rows leave trailing columns blank")
}

func TestParseCSV_Errors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyCSV)

	_, err = ParseCSV(strings.NewReader("Reg No,Name,Mobile\n\n"))
	assert.ErrorIs(t, err, ErrEmptyCSV)

	_, err = ParseCSV(strings.NewReader("Reg No,Full Name,Phone\nR1,A,1\n"))
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Name", "Mobile"}, missing.Columns)
	assert.Equal(t, "Missing required columns: Name, Mobile", err.Error())

	_, err = ParseCSV(strings.NewReader("Reg No,Name,Mobile\n\"R1,A,1\n"))
	assert.Error(t, err)
}

func TestParseCSV_HeaderOnlyMissingColumns(t *testing.T) {
	for _, body := range []string{"Reg No,Name\n", "Reg No,Name", "Reg No,Name\n\n,\n"} {
		_, err := ParseCSV(strings.NewReader(body))
		var missing *MissingColumnsError
		require.ErrorAs(t, err, &missing, "body %q", body)
		assert.NotErrorIs(t, err, ErrEmptyCSV)
		assert.Equal(t, []string{"Mobile"}, missing.Columns)
	}
}

func TestDetectDuplicates(t *testing.T) {
	records := []Record{
		{Phone: "111", Email: "a@x.com"},
		{Phone: "111", Email: "b@x.com"},
		{Phone: "222", Email: "A@x.com "},
		{Phone: "333", Email: ""},
		{Phone: "444", Email: ""},
		{Phone: "555", Email: "c@x.com"},
	}

	got := DetectDuplicates(records, PhoneKey, EmailKey)
	require.Len(t, got, len(records))

	assert.Equal(t, Classification{Duplicate: true, Type: models.DuplicateBoth}, got[0])
	assert.Equal(t, Classification{Duplicate: true, Type: models.DuplicatePhone}, got[1])
	assert.Equal(t, Classification{Duplicate: true, Type: models.DuplicateEmail}, got[2])
	assert.False(t, got[3].Duplicate, "blank emails never collide")
	assert.False(t, got[4].Duplicate)
	assert.False(t, got[5].Duplicate)

	phoneOnly := DetectDuplicates(records, PhoneKey)
	assert.Equal(t, models.DuplicatePhone, phoneOnly[0].Type)
	assert.False(t, phoneOnly[2].Duplicate)
}

func TestEmailKey_FoldsCase(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", EmailKey.Value(Record{Email: " Jane.Doe@Example.COM "}))

	got := DetectDuplicates([]Record{
		{Phone: "1", Email: "Jane.Doe@Example.com"},
		{Phone: "2", Email: "jane.doe@example.com"},
		{Phone: "3", Email: "john@example.com"},
	}, PhoneKey, EmailKey)
	assert.Equal(t, Classification{Duplicate: true, Type: models.DuplicateEmail}, got[0])
	assert.Equal(t, Classification{Duplicate: true, Type: models.DuplicateEmail}, got[1])
	assert.False(t, got[2].Duplicate)
}

func TestClassify(t *testing.T) {
	records := []Record{
		{RegNo: "R100", Name: "Jane Doe", Phone: "0123456789"},
		{RegNo: "R200", Name: "Known", Phone: "0999"},
		{RegNo: "R300", Name: "Twin A", Phone: "0555"},
		{RegNo: "R301", Name: "Twin B", Phone: "0555"},
	}
	directory := map[string]string{"0999": "stu-1", "0555": "stu-2"}
	lookups := 0
	lookup := func(r Record) (string, bool) {
		lookups++
		id, ok := directory[r.Phone]
		return id, ok
	}

	rows := Classify(records, lookup)
	require.Len(t, rows, 4)
	assert.Equal(t, 2, lookups, "duplicates are not looked up")

	assert.Equal(t, models.RowError, rows[0].Status)
	assert.Equal(t, MessageNotFound, rows[0].Message)
	assert.False(t, rows[0].Eligible())

	assert.Equal(t, models.RowFound, rows[1].Status)
	assert.Equal(t, "stu-1", rows[1].StudentID.ID)
	assert.True(t, rows[1].Eligible())

	for _, r := range rows[2:] {
		assert.Equal(t, models.RowDuplicate, r.Status)
		assert.Equal(t, models.DuplicatePhone, r.DuplicateType)
		assert.False(t, r.Eligible())
	}

	seen := map[string]bool{}
	for _, r := range rows {
		assert.NotEmpty(t, r.TempID)
		assert.False(t, seen[r.TempID])
		seen[r.TempID] = true
	}

	assert.Equal(t, map[string]int{models.RowError: 1, models.RowFound: 1, models.RowDuplicate: 2}, Summary(rows))
}

func TestReclassify(t *testing.T) {
	stored := []models.RollRow{
		{TempID: "a", Phone: "1", StudentID: models.StudentRef{ID: "s1"}, Status: models.RowPending},
		{TempID: "b", Phone: "2"},
		{TempID: "c", Phone: "3", Email: "x@y.z", StudentID: models.StudentRef{ID: "s3"}},
		{TempID: "d", Phone: "4", Email: "x@y.z"},
	}
	rows := Reclassify(stored)

	assert.Equal(t, models.RowFound, rows[0].Status)
	assert.Equal(t, models.RowError, rows[1].Status)
	assert.Equal(t, models.RowDuplicate, rows[2].Status)
	assert.Equal(t, models.DuplicateEmail, rows[2].DuplicateType)
	assert.Equal(t, models.RowDuplicate, rows[3].Status)

	assert.Equal(t, models.RowPending, stored[0].Status, "input is not mutated")
}
