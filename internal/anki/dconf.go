package anki

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
)

// SaveDeckConfig builds an option group from the given configuration map
// (its "name" key is required, an "id" key pins the id) and inserts it into
// the metadata mapping. Returns the group's id.
func (c *Collection) SaveDeckConfig(ctx context.Context, config map[string]any) (int64, error) {
	name, ok := config["name"].(string)
	if !ok || name == "" {
		return 0, errors.NewValidationError("deck config", "missing name")
	}

	overrides := make(map[string]any, len(config))
	for k, v := range config {
		if k == "name" {
			continue
		}
		overrides[k] = v
	}

	col, err := c.col.Get(ctx)
	if err != nil {
		return 0, err
	}

	dconf, err := models.NewDeckConfig(c.gen, name, overrides)
	if err != nil {
		return 0, err
	}

	updated := copyDeckConfigs(col.Dconf)
	updated[models.IDKey(dconf.ID)] = dconf
	col.Dconf = updated
	if err := c.col.Save(ctx, col); err != nil {
		return 0, err
	}

	logger.FromContext(ctx).Debug("deck config saved: id=%d name=%q", dconf.ID, name)
	return dconf.ID, nil
}

// SetDeckConfigID rewrites the option-group pointer on every deck whose name
// is in deckNames. Reports whether anything changed.
func (c *Collection) SetDeckConfigID(ctx context.Context, deckNames []string, configID int64) (bool, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return false, err
	}

	wanted := make(map[string]struct{}, len(deckNames))
	for _, name := range deckNames {
		wanted[name] = struct{}{}
	}

	edited := false
	updated := copyDecks(col.Decks)
	for key, deck := range updated {
		if _, ok := wanted[deck.Name]; !ok {
			continue
		}
		clone := *deck
		clone.Conf = configID
		clone.Mod = time.Now().Unix()
		updated[key] = &clone
		edited = true
	}

	if edited {
		col.Decks = updated
		if err := c.col.Save(ctx, col); err != nil {
			return false, err
		}
	}
	return edited, nil
}

// CloneDeckConfigID deep-copies an existing option group's settings under a
// fresh id and name, returning the new id.
func (c *Collection) CloneDeckConfigID(ctx context.Context, name string, cloneFrom int64) (int64, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return 0, err
	}

	src, err := col.DeckConfigByID(cloneFrom)
	if err != nil {
		return 0, err
	}

	// JSON round-trip so nested policy slices are not shared with the source.
	raw, err := json.Marshal(src)
	if err != nil {
		return 0, err
	}
	var clone models.DeckConfig
	if err := json.Unmarshal(raw, &clone); err != nil {
		return 0, err
	}
	clone.ID = c.gen.Next()
	clone.Name = name
	clone.Mod = time.Now().Unix()

	updated := copyDeckConfigs(col.Dconf)
	updated[models.IDKey(clone.ID)] = &clone
	col.Dconf = updated
	if err := c.col.Save(ctx, col); err != nil {
		return 0, err
	}
	return clone.ID, nil
}

// RemoveDeckConfigID deletes an option group by id. Decks still pointing at
// it are not repointed; callers own that consistency.
func (c *Collection) RemoveDeckConfigID(ctx context.Context, configID int64) error {
	col, err := c.col.Get(ctx)
	if err != nil {
		return err
	}

	key := models.IDKey(configID)
	if _, ok := col.Dconf[key]; !ok {
		return errors.NewNotFoundError("deck config", configID)
	}

	updated := copyDeckConfigs(col.Dconf)
	delete(updated, key)
	col.Dconf = updated
	return c.col.Save(ctx, col)
}

// DeckConfigNamesAndIDs maps option-group names to ids.
func (c *Collection) DeckConfigNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}
	return col.DeckConfigNamesAndIDs(), nil
}

// GetDeckConfigByDeckName resolves a deck by name and returns its option
// group.
func (c *Collection) GetDeckConfigByDeckName(ctx context.Context, deckName string) (*models.DeckConfig, error) {
	col, err := c.col.Get(ctx)
	if err != nil {
		return nil, err
	}

	deckID, ok := col.DeckNamesAndIDs()[deckName]
	if !ok {
		return nil, errors.NewNotFoundError("deck", deckName)
	}
	deck, err := col.DeckByID(deckID)
	if err != nil {
		return nil, err
	}
	return col.DeckConfigByID(deck.Conf)
}

// GetDeckConfig is the unsafe-policy variant of GetDeckConfigByDeckName.
func (c *Collection) GetDeckConfig(ctx context.Context, deckName string) (*models.DeckConfig, error) {
	if err := c.checkUnsafe(ctx, "GetDeckConfig"); err != nil {
		return nil, err
	}
	return c.GetDeckConfigByDeckName(ctx, deckName)
}

func copyDeckConfigs(src map[string]*models.DeckConfig) map[string]*models.DeckConfig {
	out := make(map[string]*models.DeckConfig, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
