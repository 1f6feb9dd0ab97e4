package models

import (
	"time"

	"github.com/vytor/ankistore/internal/idgen"
	"github.com/vytor/ankistore/internal/presets"
)

// Deck is a named bucket owning cards. Name supports "::"-separated
// hierarchical paths; each path prefix is its own deck record.
type Deck struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc"`
	Conf             int64  `json:"conf"`
	Mod              int64  `json:"mod"`
	USN              int    `json:"usn"`
	Dyn              int    `json:"dyn"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	LrnToday         [2]int `json:"lrnToday"`
	TimeToday        [2]int `json:"timeToday"`
}

// NewDeck builds a fully-defaulted deck with a generated id.
func NewDeck(gen idgen.Generator, name, desc string, conf int64, overrides map[string]any) (*Deck, error) {
	return NewDeckWithID(gen.Next(), name, desc, conf, overrides)
}

// NewDeckWithID builds a fully-defaulted deck under an explicit id. Callers
// creating several decks in one call pass ids from a single NextN batch so
// same-millisecond creation cannot collide.
func NewDeckWithID(id int64, name, desc string, conf int64, overrides map[string]any) (*Deck, error) {
	base := presets.Deck()
	if len(overrides) > 0 {
		merged, err := presets.Apply(base, overrides)
		if err != nil {
			return nil, err
		}
		base = merged
	}

	var d Deck
	if err := decode(base, &d); err != nil {
		return nil, err
	}
	d.ID = id
	d.Name = name
	d.Desc = desc
	d.Conf = conf
	d.Mod = time.Now().Unix()
	return &d, nil
}

// DeckConfig is a deck-option group: shared scheduling configuration
// referenced by one or more decks through Deck.Conf.
type DeckConfig struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Mod      int64       `json:"mod"`
	USN      int         `json:"usn"`
	MaxTaken int         `json:"maxTaken"`
	Timer    int         `json:"timer"`
	Autoplay bool        `json:"autoplay"`
	Replayq  bool        `json:"replayq"`
	New      NewConfig   `json:"new"`
	Rev      RevConfig   `json:"rev"`
	Lapse    LapseConfig `json:"lapse"`
}

// NewConfig is the new-card policy of an option group.
type NewConfig struct {
	Bury          bool      `json:"bury"`
	Delays        []float64 `json:"delays"`
	InitialFactor int       `json:"initialFactor"`
	Ints          []int     `json:"ints"`
	Order         int       `json:"order"`
	PerDay        int       `json:"perDay"`
	Separate      bool      `json:"separate"`
}

// RevConfig is the review policy of an option group.
type RevConfig struct {
	Bury     bool    `json:"bury"`
	Ease4    float64 `json:"ease4"`
	Fuzz     float64 `json:"fuzz"`
	IvlFct   float64 `json:"ivlFct"`
	MaxIvl   int     `json:"maxIvl"`
	MinSpace int     `json:"minSpace"`
	PerDay   int     `json:"perDay"`
}

// LapseConfig is the lapse policy of an option group.
type LapseConfig struct {
	Delays      []float64 `json:"delays"`
	LeechAction int       `json:"leechAction"`
	LeechFails  int       `json:"leechFails"`
	MinInt      int       `json:"minInt"`
	Mult        float64   `json:"mult"`
}

// NewDeckConfig builds a fully-defaulted option group. An "id" key in
// overrides pins the id; otherwise one is generated.
func NewDeckConfig(gen idgen.Generator, name string, overrides map[string]any) (*DeckConfig, error) {
	base := presets.DeckConfig()
	if len(overrides) > 0 {
		merged, err := presets.Apply(base, overrides)
		if err != nil {
			return nil, err
		}
		base = merged
	}

	var dc DeckConfig
	if err := decode(base, &dc); err != nil {
		return nil, err
	}
	if _, pinned := overrides["id"]; !pinned {
		dc.ID = gen.Next()
	}
	dc.Name = name
	dc.Mod = time.Now().Unix()
	return &dc, nil
}
