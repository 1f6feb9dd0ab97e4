package anki

import (
	"context"
	"strings"

	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
)

// DeckNames returns every deck name, unordered.
func (c *Collection) DeckNames(ctx context.Context) ([]string, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}
	return col.DeckNames(), nil
}

// DeckNamesAndIDs maps deck names to ids.
func (c *Collection) DeckNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}
	return col.DeckNamesAndIDs(), nil
}

// GetDecks groups the given card ids by the name of their owning deck. Decks
// without matching cards are omitted.
func (c *Collection) GetDecks(ctx context.Context, cardIDs []int64) (map[string][]int64, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := c.cards.SelectByIDs(ctx, cardIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int64)
	for _, card := range cards {
		deck, ok := col.Decks[models.IDKey(card.DeckID)]
		if !ok {
			continue
		}
		out[deck.Name] = append(out[deck.Name], card.ID)
	}
	return out, nil
}

// CreateDeck creates the deck named deckName, materializing every missing
// "::" path prefix as its own deck record. Existing segments are left alone,
// so the call is idempotent per path segment. Returns the leaf deck's id.
func (c *Collection) CreateDeck(ctx context.Context, deckName, desc string, dconf int64, overrides map[string]any) (int64, error) {
	log := logger.FromContext(ctx)

	col, err := c.col.Get(ctx)
	if err != nil {
		return 0, err
	}

	existing := col.DeckNamesAndIDs()
	parts := strings.Split(deckName, "::")

	// One id batch for the whole call: several sub-decks may be created
	// within the same millisecond.
	ids := c.gen.NextN(len(parts))

	updated := copyDecks(col.Decks)
	created := 0
	var path []string
	for i, part := range parts {
		path = append(path, part)
		subDeck := strings.Join(path, "::")
		if _, ok := existing[subDeck]; ok {
			continue
		}
		deck, err := models.NewDeckWithID(ids[i], subDeck, desc, dconf, overrides)
		if err != nil {
			return 0, err
		}
		updated[models.IDKey(deck.ID)] = deck
		existing[subDeck] = deck.ID
		created++
	}

	if created > 0 {
		col.Decks = updated
		if err := c.col.Save(ctx, col); err != nil {
			return 0, err
		}
		log.Debug("created %d decks for path %q", created, deckName)
	}
	return existing[deckName], nil
}

// ChangeDeckByID repoints the given cards at deckID. The target deck is not
// validated; callers own that consistency.
func (c *Collection) ChangeDeckByID(ctx context.Context, cardIDs []int64, deckID int64) error {
	_, err := c.cards.UpdateDeck(ctx, cardIDs, deckID)
	return err
}

// ChangeDeck repoints cards at the deck named deckName, creating it (with the
// given option group) when absent. Subject to the unsafe policy.
func (c *Collection) ChangeDeck(ctx context.Context, cardIDs []int64, deckName string, dconf int64) error {
	if err := c.checkUnsafe(ctx, "ChangeDeck"); err != nil {
		return err
	}

	ids, err := c.DeckNamesAndIDs(ctx)
	if err != nil {
		return err
	}
	deckID, ok := ids[deckName]
	if !ok {
		deckID, err = c.CreateDeck(ctx, deckName, "", dconf, nil)
		if err != nil {
			return err
		}
	}
	return c.ChangeDeckByID(ctx, cardIDs, deckID)
}

// DeleteDecksByID removes each deck from the metadata mapping, writing a
// tombstone per deck. With cardsToo, every card homed in a removed deck is
// deleted (and tombstoned) as well. Fails with NotFound when an id is absent;
// callers must pre-validate.
func (c *Collection) DeleteDecksByID(ctx context.Context, deckIDs []int64, cardsToo bool) error {
	log := logger.FromContext(ctx)

	col, err := c.col.Get(ctx)
	if err != nil {
		return err
	}

	updated := copyDecks(col.Decks)
	for _, deckID := range deckIDs {
		key := models.IDKey(deckID)
		if _, ok := updated[key]; !ok {
			return errors.NewNotFoundError("deck", deckID)
		}
		delete(updated, key)

		if err := c.graves.Insert(ctx, models.Grave{USN: -1, OID: deckID, Type: models.GraveDeck}); err != nil {
			return err
		}
		if cardsToo {
			deleted, err := c.cards.DeleteByDeck(ctx, deckID)
			if err != nil {
				return err
			}
			log.Debug("cascade deleted %d cards from deck %d", len(deleted), deckID)
		}
	}

	col.Decks = updated
	return c.col.Save(ctx, col)
}

// DeleteDecks removes decks by name. Subject to the unsafe policy.
func (c *Collection) DeleteDecks(ctx context.Context, deckNames []string, cardsToo bool) error {
	if err := c.checkUnsafe(ctx, "DeleteDecks"); err != nil {
		return err
	}

	ids, err := c.DeckNamesAndIDs(ctx)
	if err != nil {
		return err
	}
	deckIDs := make([]int64, 0, len(deckNames))
	for _, name := range deckNames {
		id, ok := ids[name]
		if !ok {
			return errors.NewNotFoundError("deck", name)
		}
		deckIDs = append(deckIDs, id)
	}
	return c.DeleteDecksByID(ctx, deckIDs, cardsToo)
}

func copyDecks(src map[string]*models.Deck) map[string]*models.Deck {
	out := make(map[string]*models.Deck, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
