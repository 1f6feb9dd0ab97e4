package anki

import (
	"context"
	"sort"

	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
)

// NoteInput is the caller-facing shape for adding a note. Deck and model may
// be referenced by id or, subject to the unsafe policy, by name; a missing
// deck name is created on the fly with the Dconf option group (group 1 when
// zero).
type NoteInput struct {
	DeckID    int64             `json:"deckId,omitempty"`
	DeckName  string            `json:"deckName,omitempty"`
	ModelID   int64             `json:"modelId,omitempty"`
	ModelName string            `json:"modelName,omitempty"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags,omitempty"`
	Dconf     int64             `json:"dconf,omitempty"`
}

// NoteInfo is the denormalized read-side projection of one note.
type NoteInfo struct {
	NoteID  int64             `json:"noteId"`
	ModelID int64             `json:"modelId"`
	Tags    []string          `json:"tags"`
	Fields  map[string]string `json:"fields"`
}

// AddNote builds and persists a note, then fans out one card per model
// template with ascending ordinals. Returns the new note's id.
func (c *Collection) AddNote(ctx context.Context, in NoteInput) (int64, error) {
	log := logger.FromContext(ctx)

	deckID := in.DeckID
	if deckID == 0 {
		if err := c.checkUnsafe(ctx, "AddNote with deckName"); err != nil {
			return 0, err
		}
		ids, err := c.DeckNamesAndIDs(ctx)
		if err != nil {
			return 0, err
		}
		var ok bool
		deckID, ok = ids[in.DeckName]
		if !ok {
			dconf := in.Dconf
			if dconf == 0 {
				dconf = 1
			}
			deckID, err = c.CreateDeck(ctx, in.DeckName, "", dconf, nil)
			if err != nil {
				return 0, err
			}
		}
	}

	modelID := in.ModelID
	if modelID == 0 {
		if err := c.checkUnsafe(ctx, "AddNote with modelName"); err != nil {
			return 0, err
		}
		var err error
		modelID, err = c.modelIDByName(ctx, in.ModelName)
		if err != nil {
			return 0, err
		}
	}

	model, err := c.ModelByID(ctx, modelID)
	if err != nil {
		return 0, err
	}

	note := models.NewNote(modelID, model.FieldNames(), in.Fields, in.Tags)
	noteID, err := c.notes.Insert(ctx, note)
	if err != nil {
		return 0, err
	}
	note.ID = noteID

	for i := range model.Templates {
		if _, err := c.cards.Insert(ctx, models.NewCard(noteID, deckID, i)); err != nil {
			return 0, err
		}
	}

	// Keep the secondary index consistent with inserts routed through this
	// facade instance.
	if c.index != nil {
		c.index.add(indexRecord{
			noteID:  noteID,
			modelID: modelID,
			tags:    note.Tags,
			fields:  fieldMap(model.FieldNames(), note.Fields),
		})
	}

	log.Debug("note added: id=%d cards=%d", noteID, len(model.Templates))
	return noteID, nil
}

// AddNotes adds several notes, preserving input order in the returned ids.
func (c *Collection) AddNotes(ctx context.Context, ins []NoteInput) ([]int64, error) {
	ids := make([]int64, 0, len(ins))
	for _, in := range ins {
		id, err := c.AddNote(ctx, in)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UpdateNoteFields merges the given field values by name onto the note's
// stored field array. Fields not mentioned keep their previous values.
func (c *Collection) UpdateNoteFields(ctx context.Context, noteID int64, fields map[string]string) error {
	note, err := c.notes.Get(ctx, noteID)
	if err != nil {
		return err
	}

	fieldNames, err := c.ModelFieldNamesByID(ctx, note.ModelID)
	if err != nil {
		return err
	}

	merged := make([]string, len(fieldNames))
	for i, name := range fieldNames {
		if v, ok := fields[name]; ok {
			merged[i] = v
		} else if i < len(note.Fields) {
			merged[i] = note.Fields[i]
		}
	}
	note.Fields = merged
	return c.notes.Update(ctx, note)
}

// AddTags unions the given tags into each note's tag set, re-sorted. The
// per-note sets are recomputed individually and written in one transaction.
func (c *Collection) AddTags(ctx context.Context, noteIDs []int64, tags []string) error {
	return c.mutateTags(ctx, noteIDs, func(existing []string) []string {
		return models.NormalizeTags(append(existing, tags...))
	})
}

// RemoveTags subtracts the given tags from each note's tag set. Removing a
// tag a note does not carry is a no-op for that note.
func (c *Collection) RemoveTags(ctx context.Context, noteIDs []int64, tags []string) error {
	drop := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		drop[t] = struct{}{}
	}
	return c.mutateTags(ctx, noteIDs, func(existing []string) []string {
		kept := existing[:0:0]
		for _, t := range existing {
			if _, gone := drop[t]; !gone {
				kept = append(kept, t)
			}
		}
		return models.NormalizeTags(kept)
	})
}

func (c *Collection) mutateTags(ctx context.Context, noteIDs []int64, apply func([]string) []string) error {
	notes, err := c.notes.SelectByIDs(ctx, noteIDs)
	if err != nil {
		return err
	}
	for _, note := range notes {
		note.Tags = apply(note.Tags)
	}
	return c.notes.UpdateMany(ctx, notes)
}

// GetTags returns the distinct sorted union of every note's tags.
func (c *Collection) GetTags(ctx context.Context) ([]string, error) {
	notes, err := c.notes.SelectAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, note := range notes {
		for _, t := range note.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// NotesInfo denormalizes the given notes into caller-facing projections,
// zipping each note's positional values with its model's field names.
func (c *Collection) NotesInfo(ctx context.Context, noteIDs []int64) ([]NoteInfo, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := c.notes.SelectByIDs(ctx, noteIDs)
	if err != nil {
		return nil, err
	}

	infos := make([]NoteInfo, 0, len(notes))
	for _, note := range notes {
		model, err := col.ModelByID(note.ModelID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, NoteInfo{
			NoteID:  note.ID,
			ModelID: note.ModelID,
			Tags:    note.Tags,
			Fields:  fieldMap(model.FieldNames(), note.Fields),
		})
	}
	return infos, nil
}

// NoteToCards maps each of the note's template names to the id of the card
// generated under it.
func (c *Collection) NoteToCards(ctx context.Context, noteID int64) (map[string]int64, error) {
	note, err := c.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	templateNames, err := c.ModelTemplateNamesByID(ctx, note.ModelID)
	if err != nil {
		return nil, err
	}
	cards, err := c.cards.SelectByNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(cards))
	for _, card := range cards {
		if card.Ord < 0 || card.Ord >= len(templateNames) {
			return nil, errors.NewNotFoundError("template ordinal", card.Ord)
		}
		out[templateNames[card.Ord]] = card.ID
	}
	return out, nil
}

func fieldMap(names, values []string) map[string]string {
	out := make(map[string]string, len(names))
	for i, name := range names {
		if i < len(values) {
			out[name] = values[i]
		} else {
			out[name] = ""
		}
	}
	return out
}
