package anki

import (
	"context"

	"github.com/vytor/ankistore/internal/logger"
)

// noteIndex is an in-memory queryable mirror of note field data used to
// answer "which notes match these field values" without a query language.
// It is an acceleration structure only: the store stays the source of truth,
// and the index is rebuilt from it whenever it is empty.
type noteIndex struct {
	records []indexRecord
}

type indexRecord struct {
	noteID  int64
	modelID int64
	tags    []string
	fields  map[string]string
}

func (ix *noteIndex) add(rec indexRecord) {
	ix.records = append(ix.records, rec)
}

// match returns the records satisfying a conjunction of field equality tests,
// optionally scoped to one model.
func (ix *noteIndex) match(modelID int64, fields map[string]string) []*indexRecord {
	var out []*indexRecord
	for i := range ix.records {
		rec := &ix.records[i]
		if modelID != 0 && rec.modelID != modelID {
			continue
		}
		ok := true
		for name, want := range fields {
			if rec.fields[name] != want {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

// ensureIndex lazily builds the index by projecting every stored note. An
// empty index is treated as stale and rebuilt.
func (c *Collection) ensureIndex(ctx context.Context) error {
	if c.index != nil && len(c.index.records) > 0 {
		return nil
	}

	log := logger.FromContext(ctx)
	log.Debug("building note index")

	col, err := c.col.Get(ctx)
	if err != nil {
		return err
	}
	notes, err := c.notes.SelectAll(ctx)
	if err != nil {
		return err
	}

	ix := &noteIndex{records: make([]indexRecord, 0, len(notes))}
	for _, note := range notes {
		model, err := col.ModelByID(note.ModelID)
		if err != nil {
			return err
		}
		ix.add(indexRecord{
			noteID:  note.ID,
			modelID: note.ModelID,
			tags:    note.Tags,
			fields:  fieldMap(model.FieldNames(), note.Fields),
		})
	}
	c.index = ix
	log.Debug("note index built: %d records", len(ix.records))
	return nil
}

// InvalidateIndex drops the in-memory note index; the next upsert rebuilds
// it from the store.
func (c *Collection) InvalidateIndex() {
	c.index = nil
}

// UpsertInput describes one upsert: Match is the equality predicate over
// field names (optionally scoped by ModelID), and Defaults supplies the
// values applied to every matched note. On no match a new note is created
// from Match plus Defaults under the given deck.
type UpsertInput struct {
	ModelID  int64             `json:"modelId,omitempty"`
	Match    map[string]string `json:"match"`
	Defaults map[string]string `json:"defaults,omitempty"`
	DeckID   int64             `json:"deckId,omitempty"`
	DeckName string            `json:"deckName,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
}

// UpsertNote updates every note matching the input's predicate with the
// default-bucket values, or inserts a new note (with its card fan-out) when
// nothing matches. Returns the affected note ids. Several matches are all
// updated identically; that is accepted multi-row-upsert semantics.
func (c *Collection) UpsertNote(ctx context.Context, in UpsertInput) ([]int64, error) {
	log := logger.FromContext(ctx)

	if err := c.ensureIndex(ctx); err != nil {
		return nil, err
	}

	matches := c.index.match(in.ModelID, in.Match)
	if len(matches) == 0 {
		fields := make(map[string]string, len(in.Match)+len(in.Defaults))
		for k, v := range in.Match {
			fields[k] = v
		}
		for k, v := range in.Defaults {
			fields[k] = v
		}
		id, err := c.AddNote(ctx, NoteInput{
			DeckID:   in.DeckID,
			DeckName: in.DeckName,
			ModelID:  in.ModelID,
			Fields:   fields,
			Tags:     in.Tags,
		})
		if err != nil {
			return nil, err
		}
		log.Debug("upsert inserted note %d", id)
		return []int64{id}, nil
	}

	ids := make([]int64, 0, len(matches))
	for _, rec := range matches {
		ids = append(ids, rec.noteID)
	}

	if len(in.Defaults) > 0 {
		notes, err := c.notes.SelectByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		col, err := c.col.Get(ctx)
		if err != nil {
			return nil, err
		}
		for _, note := range notes {
			model, err := col.ModelByID(note.ModelID)
			if err != nil {
				return nil, err
			}
			names := model.FieldNames()
			merged := make([]string, len(names))
			for i, name := range names {
				if v, ok := in.Defaults[name]; ok {
					merged[i] = v
				} else if i < len(note.Fields) {
					merged[i] = note.Fields[i]
				}
			}
			note.Fields = merged
		}
		// All matched rows land in one transaction.
		if err := c.notes.UpdateMany(ctx, notes); err != nil {
			return nil, err
		}
		for _, rec := range matches {
			for name, v := range in.Defaults {
				if _, known := rec.fields[name]; known {
					rec.fields[name] = v
				}
			}
		}
	}

	log.Debug("upsert updated %d notes", len(ids))
	return ids, nil
}

// UpsertNotes runs several upserts, concatenating the affected ids in input
// order.
func (c *Collection) UpsertNotes(ctx context.Context, ins []UpsertInput) ([]int64, error) {
	var out []int64
	for _, in := range ins {
		ids, err := c.UpsertNote(ctx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}
