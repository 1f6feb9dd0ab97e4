package anki

import (
	"context"
	"sort"

	"github.com/vytor/ankistore/internal/models"
)

// CardSetNextReview mutates one card's scheduling triple. Due is interpreted
// by the given type: note-derived key for new, day offset for due, timestamp
// for learning.
func (c *Collection) CardSetNextReview(ctx context.Context, cardID int64, typ models.CardType, queue models.CardQueue, due int64) error {
	return c.cards.SetNextReview(ctx, cardID, typ, queue, due)
}

// CardSetStat updates the card's repetition and lapse counters and appends
// the review-log entry in one atomic unit: on failure neither write is
// visible.
func (c *Collection) CardSetStat(ctx context.Context, cardID int64, reps, lapses int, entry models.RevlogEntry) error {
	return c.cards.SetStat(ctx, cardID, reps, lapses, entry)
}

// Suspend parks the given cards in the suspended queue. Reports whether at
// least one row changed.
func (c *Collection) Suspend(ctx context.Context, cardIDs []int64) (bool, error) {
	n, err := c.cards.UpdateQueue(ctx, cardIDs, models.QueueSuspended)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Unsuspend restores each card's queue from its own type value. Reports
// whether at least one row changed.
func (c *Collection) Unsuspend(ctx context.Context, cardIDs []int64) (bool, error) {
	n, err := c.cards.RestoreQueueFromType(ctx, cardIDs)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AreSuspended reports, per card id in input order, whether the card sits in
// the suspended queue.
func (c *Collection) AreSuspended(ctx context.Context, cardIDs []int64) ([]bool, error) {
	return c.cardFlags(ctx, cardIDs, func(card *models.Card) bool {
		return card.Queue == models.QueueSuspended
	})
}

// AreDue reports, per card id in input order, whether the card is in the due
// state.
func (c *Collection) AreDue(ctx context.Context, cardIDs []int64) ([]bool, error) {
	return c.cardFlags(ctx, cardIDs, func(card *models.Card) bool {
		return card.Type == models.CardTypeDue
	})
}

func (c *Collection) cardFlags(ctx context.Context, cardIDs []int64, pred func(*models.Card) bool) ([]bool, error) {
	out := make([]bool, 0, len(cardIDs))
	for _, id := range cardIDs {
		card, err := c.cards.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, pred(card))
	}
	return out, nil
}

// CardsToNotes maps a card-id set to the distinct sorted ids of the owning
// notes.
func (c *Collection) CardsToNotes(ctx context.Context, cardIDs []int64) ([]int64, error) {
	cards, err := c.cards.SelectByIDs(ctx, cardIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(cards))
	for _, card := range cards {
		seen[card.NoteID] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// CardsInfo denormalizes each card into its owning note's projection,
// preserving card input order.
func (c *Collection) CardsInfo(ctx context.Context, cardIDs []int64) ([]NoteInfo, error) {
	var infos []NoteInfo
	for _, id := range cardIDs {
		card, err := c.cards.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		noteInfos, err := c.NotesInfo(ctx, []int64{card.NoteID})
		if err != nil {
			return nil, err
		}
		infos = append(infos, noteInfos...)
	}
	return infos, nil
}
