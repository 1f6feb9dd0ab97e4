package anki_test

import (
	"context"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/models"
)

func (s *CollectionSuite) TestCreateDeckMaterializesPathPrefixes() {
	ctx := context.Background()

	leafID, err := s.coll.CreateDeck(ctx, "Japanese::Vocab::Verbs", "", 1, nil)
	s.Require().NoError(err)
	s.Assert().NotZero(leafID)

	ids, err := s.coll.DeckNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Assert().Contains(ids, "Japanese")
	s.Assert().Contains(ids, "Japanese::Vocab")
	s.Assert().Equal(leafID, ids["Japanese::Vocab::Verbs"])
	s.Assert().Len(ids, 4, "three path segments plus the default deck")
}

func (s *CollectionSuite) TestCreateDeckIsIdempotentPerSegment() {
	ctx := context.Background()

	leafID, err := s.coll.CreateDeck(ctx, "Japanese::Vocab", "", 1, nil)
	s.Require().NoError(err)

	again, err := s.coll.CreateDeck(ctx, "Japanese::Vocab", "", 1, nil)
	s.Require().NoError(err)
	s.Assert().Equal(leafID, again, "re-creating an existing path returns the same leaf id")

	ids, err := s.coll.DeckNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Assert().Len(ids, 3)

	// Extending the path only creates the missing suffix.
	_, err = s.coll.CreateDeck(ctx, "Japanese::Vocab::Verbs", "", 1, nil)
	s.Require().NoError(err)
	ids, err = s.coll.DeckNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Assert().Len(ids, 4)
	s.Assert().Equal(leafID, ids["Japanese::Vocab"], "existing segments keep their ids")
}

func (s *CollectionSuite) TestGetDecksGroupsCardsByDeckName() {
	ctx := context.Background()

	otherDeck, err := s.coll.CreateDeck(ctx, "Other", "", 1, nil)
	s.Require().NoError(err)

	noteID, err := s.coll.AddNote(ctx, anki.NoteInput{
		DeckID:  otherDeck,
		ModelID: s.model.ID,
		Fields:  map[string]string{"Front": "f", "Back": "b"},
	})
	s.Require().NoError(err)

	otherCards, err := s.coll.NoteToCards(ctx, noteID)
	s.Require().NoError(err)

	var all []int64
	all = append(all, s.seedCardIDs...)
	for _, id := range otherCards {
		all = append(all, id)
	}

	grouped, err := s.coll.GetDecks(ctx, all)
	s.Require().NoError(err)
	s.Assert().ElementsMatch(s.seedCardIDs, grouped["Default"])
	s.Assert().Len(grouped["Other"], 2)
}

func (s *CollectionSuite) TestChangeDeckCreatesMissingTarget() {
	ctx := context.Background()

	s.Require().NoError(s.coll.ChangeDeck(ctx, s.seedCardIDs, "Archive", 1))

	ids, err := s.coll.DeckNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Require().Contains(ids, "Archive")

	moved, err := s.cards.SelectByDeck(ctx, ids["Archive"])
	s.Require().NoError(err)
	s.Assert().Len(moved, 2)
}

func (s *CollectionSuite) TestDeleteDecksByIDWritesTombstones() {
	ctx := context.Background()

	deckID, err := s.coll.CreateDeck(ctx, "Doomed", "", 1, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.coll.ChangeDeckByID(ctx, s.seedCardIDs, deckID))

	s.Require().NoError(s.coll.DeleteDecksByID(ctx, []int64{deckID}, true))

	names, err := s.coll.DeckNames(ctx)
	s.Require().NoError(err)
	s.Assert().NotContains(names, "Doomed")

	deckGraves, err := s.graves.SelectByType(ctx, models.GraveDeck)
	s.Require().NoError(err)
	s.Require().Len(deckGraves, 1)
	s.Assert().Equal(deckID, deckGraves[0].OID)

	cardGraves, err := s.graves.SelectByType(ctx, models.GraveCard)
	s.Require().NoError(err)
	s.Assert().Len(cardGraves, 2, "cascade delete tombstones every homed card")

	for _, id := range s.seedCardIDs {
		_, err := s.cards.Get(ctx, id)
		s.Assert().True(errors.IsNotFound(err))
	}
}

func (s *CollectionSuite) TestDeleteDecksKeepsCardsWithoutCascade() {
	ctx := context.Background()

	deckID, err := s.coll.CreateDeck(ctx, "Shelved", "", 1, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.coll.ChangeDeckByID(ctx, s.seedCardIDs, deckID))

	s.Require().NoError(s.coll.DeleteDecks(ctx, []string{"Shelved"}, false))

	for _, id := range s.seedCardIDs {
		_, err := s.cards.Get(ctx, id)
		s.Assert().NoError(err, "cards survive when cardsToo is false")
	}
}

func (s *CollectionSuite) TestDeleteDecksUnknownName() {
	err := s.coll.DeleteDecks(context.Background(), []string{"Nope"}, false)
	s.Assert().True(errors.IsNotFound(err))
}
