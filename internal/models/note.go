package models

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/ankistore/internal/guid"
)

// FieldSeparator joins note field values in the persisted flds column.
const FieldSeparator = "\x1f"

// Note is one semantic flashcard record: positional field values parallel to
// its model's field list, plus a deduplicated sorted tag set.
type Note struct {
	ID        int64
	GUID      string
	ModelID   int64
	Mod       int64
	USN       int
	Tags      []string
	Fields    []string
	SortField string
	Checksum  int64
	Flags     int
	Data      string
}

// NewNote maps a field-name to value mapping onto the model's field order.
// Unmapped fields become the empty string, never null, so the positional
// invariant len(note.Fields) == len(model.Fields) holds from creation.
func NewNote(modelID int64, fieldNames []string, data map[string]string, tags []string) *Note {
	fields := make([]string, len(fieldNames))
	for i, name := range fieldNames {
		fields[i] = data[name]
	}

	n := &Note{
		GUID:    guid.New(),
		ModelID: modelID,
		Mod:     time.Now().Unix(),
		USN:     -1,
		Tags:    NormalizeTags(tags),
		Fields:  fields,
	}
	n.RefreshSort()
	return n
}

// RefreshSort recomputes the sort field and checksum from the first field.
// Call after any field mutation before persisting.
func (n *Note) RefreshSort() {
	if len(n.Fields) > 0 {
		n.SortField = n.Fields[0]
		n.Checksum = FieldChecksum(n.Fields[0])
	} else {
		n.SortField = ""
		n.Checksum = 0
	}
}

// FieldChecksum returns the integer value of the first 8 hex digits of the
// SHA1 of the given field, the dupe-detection key the schema uses.
func FieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	v, err := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	if err != nil {
		return 0
	}
	return v
}

// NormalizeTags deduplicates and sorts a tag list.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// JoinFields renders field values into the persisted flds column form.
func JoinFields(fields []string) string {
	return strings.Join(fields, FieldSeparator)
}

// SplitFields parses the persisted flds column back into field values.
func SplitFields(flds string) []string {
	return strings.Split(flds, FieldSeparator)
}

// JoinTags renders a tag list into the persisted space-delimited form,
// padded so tag membership can be tested with a substring match.
func JoinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " " + strings.Join(tags, " ") + " "
}

// SplitTags parses the persisted tags column back into a tag list.
func SplitTags(tags string) []string {
	return strings.Fields(tags)
}
