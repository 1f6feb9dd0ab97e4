package models

import (
	"strconv"

	"github.com/vytor/ankistore/internal/errors"
)

// IDKey renders a record id as the string key used in the persisted
// metadata maps.
func IDKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Col is the collection-metadata singleton row. The Models, Decks and Dconf
// maps are serialized whole into JSON columns on save, so mutations must
// follow read-modify-write on the full map.
type Col struct {
	ID     int64
	Crt    int64 // collection creation epoch, day-offset base for due cards
	Mod    int64
	Scm    int64 // schema modification time
	Ver    int
	Dty    int
	USN    int
	Ls     int64 // last sync time
	Conf   map[string]any
	Models map[string]*Model
	Decks  map[string]*Deck
	Dconf  map[string]*DeckConfig
	Tags   map[string]int
}

// ModelByID resolves a model from the metadata mapping.
func (c *Col) ModelByID(id int64) (*Model, error) {
	m, ok := c.Models[IDKey(id)]
	if !ok {
		return nil, errors.NewNotFoundError("model", id)
	}
	return m, nil
}

// DeckByID resolves a deck from the metadata mapping.
func (c *Col) DeckByID(id int64) (*Deck, error) {
	d, ok := c.Decks[IDKey(id)]
	if !ok {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return d, nil
}

// DeckConfigByID resolves an option group from the metadata mapping.
func (c *Col) DeckConfigByID(id int64) (*DeckConfig, error) {
	dc, ok := c.Dconf[IDKey(id)]
	if !ok {
		return nil, errors.NewNotFoundError("deck config", id)
	}
	return dc, nil
}

// DeckNames returns every deck name, unordered.
func (c *Col) DeckNames() []string {
	names := make([]string, 0, len(c.Decks))
	for _, d := range c.Decks {
		names = append(names, d.Name)
	}
	return names
}

// DeckNamesAndIDs maps deck names to ids.
func (c *Col) DeckNamesAndIDs() map[string]int64 {
	out := make(map[string]int64, len(c.Decks))
	for _, d := range c.Decks {
		out[d.Name] = d.ID
	}
	return out
}

// ModelNamesAndIDs maps model names to ids.
func (c *Col) ModelNamesAndIDs() map[string]int64 {
	out := make(map[string]int64, len(c.Models))
	for _, m := range c.Models {
		out[m.Name] = m.ID
	}
	return out
}

// DeckConfigNamesAndIDs maps option-group names to ids.
func (c *Col) DeckConfigNamesAndIDs() map[string]int64 {
	out := make(map[string]int64, len(c.Dconf))
	for _, dc := range c.Dconf {
		out[dc.Name] = dc.ID
	}
	return out
}
