package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(id, fee string) Row {
	return Row{StudentID: id, Fee: d(fee)}
}

func ids(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.StudentID)
	}
	return out
}

func TestSelection_Lifecycle(t *testing.T) {
	s := NewSelection(row("a", "100"), row("b", "50"), row("c", "25"))

	require.NoError(t, s.Add(row("a", "100")))
	require.NoError(t, s.Add(row("b", "50")))
	assert.Equal(t, []string{"c"}, ids(s.Available()))
	assert.Equal(t, []string{"a", "b"}, ids(s.Checked()))
	assertDec(t, "150", s.Subtotal(), "subtotal")

	assert.ErrorIs(t, s.Add(row("a", "100")), ErrAlreadySelected)

	require.NoError(t, s.Toggle("b"))
	assert.Equal(t, []string{"a"}, ids(s.Checked()))
	assert.Len(t, s.Selected(), 2)
	assertDec(t, "100", s.Subtotal(), "unchecked rows are not summed")

	require.NoError(t, s.Remove("a"))
	avail := s.Available()
	assert.Equal(t, []string{"c", "a"}, ids(avail))
	assert.False(t, avail[1].Checked)

	assert.ErrorIs(t, s.Toggle("a"), ErrNotSelected)
	assert.ErrorIs(t, s.Remove("zzz"), ErrNotSelected)

	s.MarkSubmitted()
	assert.Empty(t, s.Selected())
	assert.Equal(t, []string{"c", "a"}, ids(s.Available()))
}

func TestSelection_ReAddAfterRemove(t *testing.T) {
	s := NewSelection()
	require.NoError(t, s.Add(row("a", "10")))
	require.NoError(t, s.Remove("a"))
	require.NoError(t, s.Add(row("a", "10")))
	assert.Empty(t, s.Available())
	assert.True(t, s.Checked()[0].Checked)
}
