package anki_test

import (
	"context"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/models"
)

func (s *CollectionSuite) TestSuspendAndUnsuspendMixedTypes() {
	ctx := context.Background()

	// Promote one of the seed cards to the review state first.
	reviewed := s.seedCardIDs[1]
	s.Require().NoError(s.coll.CardSetNextReview(ctx, reviewed, models.CardTypeDue, models.QueueDue, 5))

	changed, err := s.coll.Suspend(ctx, s.seedCardIDs)
	s.Require().NoError(err)
	s.Assert().True(changed)

	flags, err := s.coll.AreSuspended(ctx, s.seedCardIDs)
	s.Require().NoError(err)
	s.Assert().Equal([]bool{true, true}, flags)

	changed, err = s.coll.Unsuspend(ctx, s.seedCardIDs)
	s.Require().NoError(err)
	s.Assert().True(changed)

	first, err := s.cards.Get(ctx, s.seedCardIDs[0])
	s.Require().NoError(err)
	s.Assert().Equal(models.QueueNew, first.Queue, "a new card returns to the new queue")

	second, err := s.cards.Get(ctx, reviewed)
	s.Require().NoError(err)
	s.Assert().Equal(models.QueueDue, second.Queue, "a due card returns to the due queue")
}

func (s *CollectionSuite) TestAreDueFollowsInputOrder() {
	ctx := context.Background()

	due := s.seedCardIDs[1]
	s.Require().NoError(s.coll.CardSetNextReview(ctx, due, models.CardTypeDue, models.QueueDue, 5))

	flags, err := s.coll.AreDue(ctx, []int64{due, s.seedCardIDs[0]})
	s.Require().NoError(err)
	s.Assert().Equal([]bool{true, false}, flags)
}

func (s *CollectionSuite) TestCardSetStatAppendsRevlog() {
	ctx := context.Background()
	cardID := s.seedCardIDs[0]

	err := s.coll.CardSetStat(ctx, cardID, 2, 0, models.RevlogEntry{
		CardID: cardID,
		USN:    -1,
		Ease:   3,
		Ivl:    4,
		Factor: 2500,
		TimeMS: 3000,
		Type:   models.RevlogLearn,
	})
	s.Require().NoError(err)

	card, err := s.cards.Get(ctx, cardID)
	s.Require().NoError(err)
	s.Assert().Equal(2, card.Reps)

	entries, err := s.revlog.SelectByCard(ctx, cardID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Assert().Equal(3, entries[0].Ease)
}

func (s *CollectionSuite) TestCardSetStatUnknownCard() {
	err := s.coll.CardSetStat(context.Background(), 9999, 1, 0, models.RevlogEntry{CardID: 9999})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *CollectionSuite) TestCardsToNotesDedupes() {
	ctx := context.Background()

	otherNote, err := s.coll.AddNote(ctx, anki.NoteInput{
		DeckID: s.deck.ID, ModelID: s.model.ID,
		Fields: map[string]string{"Front": "x"},
	})
	s.Require().NoError(err)
	otherCards, err := s.cards.SelectByNote(ctx, otherNote)
	s.Require().NoError(err)

	all := append([]int64{}, s.seedCardIDs...)
	all = append(all, otherCards[0].ID)

	noteIDs, err := s.coll.CardsToNotes(ctx, all)
	s.Require().NoError(err)
	s.Assert().Equal([]int64{s.seedNoteID, otherNote}, noteIDs, "distinct owning notes, ascending")
}

func (s *CollectionSuite) TestCardsInfo() {
	ctx := context.Background()

	infos, err := s.coll.CardsInfo(ctx, s.seedCardIDs)
	s.Require().NoError(err)
	s.Require().Len(infos, 2, "one projection per card, both owned by the seed note")
	for _, info := range infos {
		s.Assert().Equal(s.seedNoteID, info.NoteID)
		s.Assert().Equal("seed front", info.Fields["Front"])
	}
}
