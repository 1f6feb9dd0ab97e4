package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/ankistore/internal/models"
)

func TestNewNoteMapsFieldsPositionally(t *testing.T) {
	note := models.NewNote(1234, []string{"Front", "Back", "Extra"}, map[string]string{
		"Back":  "back value",
		"Front": "front value",
	}, nil)

	require.Len(t, note.Fields, 3, "one slot per model field, mapped or not")
	assert.Equal(t, []string{"front value", "back value", ""}, note.Fields)
	assert.Equal(t, "front value", note.SortField)
	assert.Equal(t, int64(2825649157), note.Checksum)
	assert.NotEmpty(t, note.GUID)
	assert.Equal(t, -1, note.USN)
	assert.Equal(t, int64(1234), note.ModelID)
}

func TestNewNoteIgnoresUnknownDataKeys(t *testing.T) {
	note := models.NewNote(1, []string{"Front"}, map[string]string{
		"Front":   "x",
		"Unknown": "dropped",
	}, nil)

	assert.Equal(t, []string{"x"}, note.Fields)
}

func TestRefreshSort(t *testing.T) {
	note := models.NewNote(1, []string{"Front", "Back"}, map[string]string{"Front": "hello"}, nil)
	assert.Equal(t, int64(2868168221), note.Checksum)

	note.Fields[0] = "front value"
	note.RefreshSort()
	assert.Equal(t, "front value", note.SortField)
	assert.Equal(t, int64(2825649157), note.Checksum)

	note.Fields = nil
	note.RefreshSort()
	assert.Equal(t, "", note.SortField)
	assert.Equal(t, int64(0), note.Checksum)
}

func TestFieldChecksum(t *testing.T) {
	assert.Equal(t, int64(2868168221), models.FieldChecksum("hello"))
	assert.Equal(t, int64(3661210606), models.FieldChecksum(""))
	assert.NotEqual(t, models.FieldChecksum("a"), models.FieldChecksum("b"))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"alpha", "beta"}, models.NormalizeTags([]string{"beta", "alpha", "beta", " ", ""}))
	assert.Empty(t, models.NormalizeTags(nil))
	assert.Equal(t, []string{"x"}, models.NormalizeTags([]string{"  x  "}))
}

func TestJoinAndSplitFields(t *testing.T) {
	fields := []string{"a", "", "c"}
	assert.Equal(t, "a\x1f\x1fc", models.JoinFields(fields))
	assert.Equal(t, fields, models.SplitFields("a\x1f\x1fc"))
}

func TestJoinTagsPadsForSubstringMatch(t *testing.T) {
	assert.Equal(t, " vocab verbs ", models.JoinTags([]string{"vocab", "verbs"}))
	assert.Equal(t, "", models.JoinTags(nil))
	assert.Equal(t, []string{"vocab", "verbs"}, models.SplitTags(" vocab verbs "))
	assert.Empty(t, models.SplitTags(""))
}
