package anki_test

import (
	"context"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/models"
)

func (s *CollectionSuite) TestAddNoteFansOutCards() {
	ctx := context.Background()

	noteID, err := s.coll.AddNote(ctx, anki.NoteInput{
		DeckID:  s.deck.ID,
		ModelID: s.model.ID,
		Fields:  map[string]string{"Front": "f", "Back": "b"},
		Tags:    []string{"vocab"},
	})
	s.Require().NoError(err)

	note, err := s.notes.Get(ctx, noteID)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"f", "b"}, note.Fields)
	s.Assert().Equal([]string{"vocab"}, note.Tags)
	s.Assert().Equal("f", note.SortField)

	cards, err := s.cards.SelectByNote(ctx, noteID)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	for i, c := range cards {
		s.Assert().Equal(i, c.Ord)
		s.Assert().Equal(models.CardTypeNew, c.Type)
	}
}

func (s *CollectionSuite) TestAddNotePadsMissingFields() {
	ctx := context.Background()

	noteID, err := s.coll.AddNote(ctx, anki.NoteInput{
		DeckID:  s.deck.ID,
		ModelID: s.model.ID,
		Fields:  map[string]string{"Back": "only back"},
	})
	s.Require().NoError(err)

	note, err := s.notes.Get(ctx, noteID)
	s.Require().NoError(err)
	s.Require().Len(note.Fields, 2, "every model field gets a slot")
	s.Assert().Equal([]string{"", "only back"}, note.Fields)
}

func (s *CollectionSuite) TestAddNoteByNamesCreatesDeck() {
	ctx := context.Background()

	noteID, err := s.coll.AddNote(ctx, anki.NoteInput{
		DeckName:  "Fresh::Deck",
		ModelName: "Basic",
		Fields:    map[string]string{"Front": "f"},
	})
	s.Require().NoError(err)

	ids, err := s.coll.DeckNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Require().Contains(ids, "Fresh::Deck")

	cards, err := s.cards.SelectByDeck(ctx, ids["Fresh::Deck"])
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Assert().Equal(noteID, cards[0].NoteID)
}

func (s *CollectionSuite) TestAddNotesPreservesOrder() {
	ctx := context.Background()

	ids, err := s.coll.AddNotes(ctx, []anki.NoteInput{
		{DeckID: s.deck.ID, ModelID: s.model.ID, Fields: map[string]string{"Front": "one"}},
		{DeckID: s.deck.ID, ModelID: s.model.ID, Fields: map[string]string{"Front": "two"}},
		{DeckID: s.deck.ID, ModelID: s.model.ID, Fields: map[string]string{"Front": "three"}},
	})
	s.Require().NoError(err)
	s.Require().Len(ids, 3)

	infos, err := s.coll.NotesInfo(ctx, ids)
	s.Require().NoError(err)
	s.Assert().Equal("one", infos[0].Fields["Front"])
	s.Assert().Equal("two", infos[1].Fields["Front"])
	s.Assert().Equal("three", infos[2].Fields["Front"])
}

func (s *CollectionSuite) TestUpdateNoteFieldsIsPartial() {
	ctx := context.Background()

	s.Require().NoError(s.coll.UpdateNoteFields(ctx, s.seedNoteID, map[string]string{"Back": "patched"}))

	note, err := s.notes.Get(ctx, s.seedNoteID)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"seed front", "patched"}, note.Fields, "unmentioned fields keep their values")
	s.Assert().Equal(models.FieldChecksum("seed front"), note.Checksum)
}

func (s *CollectionSuite) TestAddTagsIsIdempotent() {
	ctx := context.Background()
	ids := []int64{s.seedNoteID}

	s.Require().NoError(s.coll.AddTags(ctx, ids, []string{"verbs", "vocab"}))
	s.Require().NoError(s.coll.AddTags(ctx, ids, []string{"vocab"}))

	note, err := s.notes.Get(ctx, s.seedNoteID)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"verbs", "vocab"}, note.Tags, "tag sets stay deduplicated and sorted")
}

func (s *CollectionSuite) TestRemoveTags() {
	ctx := context.Background()
	ids := []int64{s.seedNoteID}

	s.Require().NoError(s.coll.AddTags(ctx, ids, []string{"a", "b", "c"}))
	s.Require().NoError(s.coll.RemoveTags(ctx, ids, []string{"b", "missing"}))

	note, err := s.notes.Get(ctx, s.seedNoteID)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"a", "c"}, note.Tags)

	// Removing everything leaves an empty set.
	s.Require().NoError(s.coll.RemoveTags(ctx, ids, []string{"a", "c"}))
	note, err = s.notes.Get(ctx, s.seedNoteID)
	s.Require().NoError(err)
	s.Assert().Empty(note.Tags)
}

func (s *CollectionSuite) TestGetTagsUnionsAcrossNotes() {
	ctx := context.Background()

	_, err := s.coll.AddNote(ctx, anki.NoteInput{
		DeckID: s.deck.ID, ModelID: s.model.ID,
		Fields: map[string]string{"Front": "x"},
		Tags:   []string{"zeta", "alpha"},
	})
	s.Require().NoError(err)
	s.Require().NoError(s.coll.AddTags(ctx, []int64{s.seedNoteID}, []string{"alpha", "mid"}))

	tags, err := s.coll.GetTags(ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"alpha", "mid", "zeta"}, tags)
}

func (s *CollectionSuite) TestNoteToCards() {
	ctx := context.Background()

	byTemplate, err := s.coll.NoteToCards(ctx, s.seedNoteID)
	s.Require().NoError(err)
	s.Require().Len(byTemplate, 2)
	s.Assert().Contains(byTemplate, "Card 1")
	s.Assert().Contains(byTemplate, "Card 2")
	s.Assert().NotEqual(byTemplate["Card 1"], byTemplate["Card 2"])
}

func (s *CollectionSuite) TestNotesInfo() {
	ctx := context.Background()

	infos, err := s.coll.NotesInfo(ctx, []int64{s.seedNoteID})
	s.Require().NoError(err)
	s.Require().Len(infos, 1)
	s.Assert().Equal(s.seedNoteID, infos[0].NoteID)
	s.Assert().Equal(s.model.ID, infos[0].ModelID)
	s.Assert().Equal(map[string]string{"Front": "seed front", "Back": "seed back"}, infos[0].Fields)
}
