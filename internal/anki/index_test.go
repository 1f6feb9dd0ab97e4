package anki_test

import (
	"context"

	"github.com/vytor/ankistore/internal/anki"
)

func (s *CollectionSuite) TestUpsertNoteInsertsWhenNothingMatches() {
	ctx := context.Background()

	ids, err := s.coll.UpsertNote(ctx, anki.UpsertInput{
		ModelID:  s.model.ID,
		DeckID:   s.deck.ID,
		Match:    map[string]string{"Front": "bonjour"},
		Defaults: map[string]string{"Back": "hello"},
		Tags:     []string{"fr"},
	})
	s.Require().NoError(err)
	s.Require().Len(ids, 1)

	note, err := s.notes.Get(ctx, ids[0])
	s.Require().NoError(err)
	s.Assert().Equal([]string{"bonjour", "hello"}, note.Fields, "insert merges match and defaults")
	s.Assert().Equal([]string{"fr"}, note.Tags)

	cards, err := s.cards.SelectByNote(ctx, ids[0])
	s.Require().NoError(err)
	s.Assert().Len(cards, 2, "insert path fans out cards like a plain add")
}

func (s *CollectionSuite) TestUpsertNoteUpdatesMatchedFields() {
	ctx := context.Background()

	ids, err := s.coll.UpsertNote(ctx, anki.UpsertInput{
		ModelID:  s.model.ID,
		Match:    map[string]string{"Front": "seed front"},
		Defaults: map[string]string{"Back": "rewritten"},
	})
	s.Require().NoError(err)
	s.Assert().Equal([]int64{s.seedNoteID}, ids)

	note, err := s.notes.Get(ctx, s.seedNoteID)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"seed front", "rewritten"}, note.Fields,
		"unmentioned fields keep their stored values")
}

func (s *CollectionSuite) TestUpsertNoteUpdatesEveryMatch() {
	ctx := context.Background()

	for _, back := range []string{"one", "two"} {
		_, err := s.coll.AddNote(ctx, anki.NoteInput{
			DeckID: s.deck.ID, ModelID: s.model.ID,
			Fields: map[string]string{"Front": "dup", "Back": back},
		})
		s.Require().NoError(err)
	}

	ids, err := s.coll.UpsertNote(ctx, anki.UpsertInput{
		ModelID:  s.model.ID,
		Match:    map[string]string{"Front": "dup"},
		Defaults: map[string]string{"Back": "same"},
	})
	s.Require().NoError(err)
	s.Require().Len(ids, 2, "every matching note is updated")

	for _, id := range ids {
		note, err := s.notes.Get(ctx, id)
		s.Require().NoError(err)
		s.Assert().Equal("same", note.Fields[1])
	}
}

func (s *CollectionSuite) TestUpsertSeesNotesAddedAfterIndexBuild() {
	ctx := context.Background()

	// First upsert forces the index build.
	_, err := s.coll.UpsertNote(ctx, anki.UpsertInput{
		ModelID: s.model.ID, DeckID: s.deck.ID,
		Match: map[string]string{"Front": "warmup"},
	})
	s.Require().NoError(err)

	id, err := s.coll.AddNote(ctx, anki.NoteInput{
		DeckID: s.deck.ID, ModelID: s.model.ID,
		Fields: map[string]string{"Front": "late arrival"},
	})
	s.Require().NoError(err)

	ids, err := s.coll.UpsertNote(ctx, anki.UpsertInput{
		ModelID:  s.model.ID,
		Match:    map[string]string{"Front": "late arrival"},
		Defaults: map[string]string{"Back": "found"},
	})
	s.Require().NoError(err)
	s.Assert().Equal([]int64{id}, ids, "adds after the index build are visible to upserts")
}

func (s *CollectionSuite) TestInvalidateIndexRebuildsFromStore() {
	ctx := context.Background()

	// Mutate the row behind the facade's back, as another writer would.
	note, err := s.notes.Get(ctx, s.seedNoteID)
	s.Require().NoError(err)
	note.Fields = []string{"renamed front", "seed back"}
	s.Require().NoError(s.notes.Update(ctx, note))

	s.coll.InvalidateIndex()

	ids, err := s.coll.UpsertNote(ctx, anki.UpsertInput{
		ModelID: s.model.ID,
		Match:   map[string]string{"Front": "renamed front"},
	})
	s.Require().NoError(err)
	s.Assert().Equal([]int64{s.seedNoteID}, ids, "rebuild projects current store state")
}

func (s *CollectionSuite) TestUpsertNotesConcatenatesInInputOrder() {
	ctx := context.Background()

	ids, err := s.coll.UpsertNotes(ctx, []anki.UpsertInput{
		{ModelID: s.model.ID, Match: map[string]string{"Front": "seed front"}},
		{ModelID: s.model.ID, DeckID: s.deck.ID, Match: map[string]string{"Front": "brand new"}},
	})
	s.Require().NoError(err)
	s.Require().Len(ids, 2)
	s.Assert().Equal(s.seedNoteID, ids[0])
	s.Assert().Greater(ids[1], s.seedNoteID)

	_, err = s.notes.Get(ctx, ids[1])
	s.Require().NoError(err)
}

func (s *CollectionSuite) TestUpsertWithoutDefaultsLeavesRowUntouched() {
	ctx := context.Background()

	before, err := s.notes.Get(ctx, s.seedNoteID)
	s.Require().NoError(err)

	ids, err := s.coll.UpsertNote(ctx, anki.UpsertInput{
		ModelID: s.model.ID,
		Match:   map[string]string{"Front": "seed front"},
	})
	s.Require().NoError(err)
	s.Assert().Equal([]int64{s.seedNoteID}, ids)

	after, err := s.notes.Get(ctx, s.seedNoteID)
	s.Require().NoError(err)
	s.Assert().Equal(before.Fields, after.Fields)
	s.Assert().Equal(before.Mod, after.Mod)
}
