package anki_test

import (
	"context"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/models"
)

func (s *CollectionSuite) TestAddModelAndLookups() {
	ctx := context.Background()

	id, err := s.coll.AddModel(ctx, "Cloze-ish",
		models.FieldsFromNames("Text", "Extra"),
		models.TemplatesFromSpecs([]models.TemplateSpec{
			{Name: "Only", Question: "{{Text}}", Answer: "{{Extra}}"},
		}), nil)
	s.Require().NoError(err)

	names, err := s.coll.ModelNames(ctx)
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"Basic", "Cloze-ish"}, names)

	byName, err := s.coll.ModelNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(id, byName["Cloze-ish"])

	fields, err := s.coll.ModelFieldNames(ctx, "Cloze-ish")
	s.Require().NoError(err)
	s.Assert().Equal([]string{"Text", "Extra"}, fields, "ordinal order, not map order")

	tmpls, err := s.coll.ModelTemplateNames(ctx, "Cloze-ish")
	s.Require().NoError(err)
	s.Assert().Equal([]string{"Only"}, tmpls)
}

func (s *CollectionSuite) TestModelLookupUnknownName() {
	_, err := s.coll.ModelFieldNames(context.Background(), "No Such Model")
	s.Assert().True(errors.IsNotFound(err))
}

func (s *CollectionSuite) TestAddModelThenAddNoteUsesItsTemplates() {
	ctx := context.Background()

	id, err := s.coll.AddModel(ctx, "OneSided",
		models.FieldsFromNames("Prompt"),
		models.TemplatesFromSpecs([]models.TemplateSpec{
			{Name: "Forward", Question: "{{Prompt}}", Answer: ""},
		}), nil)
	s.Require().NoError(err)

	noteID, err := s.coll.AddNote(ctx, anki.NoteInput{
		DeckID: s.deck.ID, ModelID: id,
		Fields: map[string]string{"Prompt": "solo"},
	})
	s.Require().NoError(err)

	cards, err := s.cards.SelectByNote(ctx, noteID)
	s.Require().NoError(err)
	s.Assert().Len(cards, 1, "fan-out follows the new model's template count")
}
