// Package anki is the orchestration layer over a flashcard collection: it
// combines the record builders with the per-table repositories into
// consistency-preserving workflows (bootstrap, note fan-out, deck cascades,
// option-group management, tag mutation).
package anki

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/ankistore/internal/db"
	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/idgen"
	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
	"github.com/vytor/ankistore/internal/presets"
	"github.com/vytor/ankistore/internal/repository"
	"github.com/vytor/ankistore/internal/repository/sqlite"
)

// UnsafePolicy selects how name-based bulk mutators are treated. The id-based
// variants are always allowed; resolving records by display name is an unsafe
// shortcut because names are not stable identifiers.
type UnsafePolicy int

const (
	// UnsafeWarn logs a warning and proceeds (the default).
	UnsafeWarn UnsafePolicy = iota
	// UnsafeAllow proceeds silently.
	UnsafeAllow
	// UnsafeForbid fails the operation.
	UnsafeForbid
)

// ParseUnsafePolicy parses a policy name (allow, warn, forbid).
func ParseUnsafePolicy(s string) (UnsafePolicy, error) {
	switch strings.ToLower(s) {
	case "allow":
		return UnsafeAllow, nil
	case "warn", "":
		return UnsafeWarn, nil
	case "forbid":
		return UnsafeForbid, nil
	default:
		return UnsafeWarn, errors.NewValidationError("unsafe policy", fmt.Sprintf("unknown policy %q", s))
	}
}

// Collection exposes every workflow over one opened collection database.
// Operations are synchronous and assume a single writer; the only explicit
// transaction boundaries live in the repositories (stat+revlog, bulk upsert).
type Collection struct {
	col    repository.ColRepository
	notes  repository.NoteRepository
	cards  repository.CardRepository
	revlog repository.RevlogRepository
	graves repository.GraveRepository

	gen    idgen.Generator
	unsafe UnsafePolicy
	log    *logger.Logger

	index *noteIndex
}

// Option configures a Collection.
type Option func(*Collection)

// WithGenerator injects the id generator, letting tests supply a
// deterministic one.
func WithGenerator(gen idgen.Generator) Option {
	return func(c *Collection) {
		c.gen = gen
	}
}

// WithUnsafePolicy sets the policy applied to name-based mutators.
func WithUnsafePolicy(p UnsafePolicy) Option {
	return func(c *Collection) {
		c.unsafe = p
	}
}

// New builds a Collection over an opened database.
func New(database *db.DB, opts ...Option) *Collection {
	c := &Collection{
		col:    sqlite.NewColRepository(database.DB),
		notes:  sqlite.NewNoteRepository(database.DB),
		cards:  sqlite.NewCardRepository(database.DB),
		revlog: sqlite.NewRevlogRepository(database.DB),
		graves: sqlite.NewGraveRepository(database.DB),
		gen:    idgen.NewClock(),
		unsafe: UnsafeWarn,
		log:    logger.Default().WithPrefix("anki"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generator returns the collection's id generator, for callers building
// records themselves before handing them to Init.
func (c *Collection) Generator() idgen.Generator {
	return c.gen
}

// checkUnsafe applies the unsafe policy to a name-based mutator.
func (c *Collection) checkUnsafe(ctx context.Context, operation string) error {
	switch c.unsafe {
	case UnsafeForbid:
		return errors.NewUnsafeError(operation)
	case UnsafeWarn:
		logger.FromContext(ctx).Warn("%s mutates by name; prefer the id-based variant", operation)
	}
	return nil
}

// Init bootstraps an empty collection: the metadata singleton seeded with one
// model, one deck and one option group, plus one seed note fanned out into
// one card per template. Calling Init on a populated collection changes
// nothing.
func (c *Collection) Init(ctx context.Context, firstModel *models.Model, firstDeck *models.Deck, firstDconf *models.DeckConfig, firstNoteData map[string]string) error {
	log := logger.FromContext(ctx)

	if firstDconf == nil {
		// The default deck record references option group 1, so the seeded
		// group is pinned there rather than given a generated id.
		dc, err := models.NewDeckConfig(c.gen, "Default", map[string]any{"id": int64(1)})
		if err != nil {
			return err
		}
		firstDconf = dc
	}

	existing, err := c.col.GetOrNone(ctx)
	if err != nil {
		return err
	}
	if existing == nil {
		log.Debug("creating collection metadata singleton")
		now := time.Now()
		col := &models.Col{
			ID:   1,
			Crt:  dayStart(now),
			Mod:  now.Unix(),
			Scm:  now.UnixMilli(),
			Ver:  11,
			Conf: presets.Conf(),
			Models: map[string]*models.Model{
				models.IDKey(firstModel.ID): firstModel,
			},
			Decks: map[string]*models.Deck{
				models.IDKey(firstDeck.ID): firstDeck,
			},
			Dconf: map[string]*models.DeckConfig{
				models.IDKey(firstDconf.ID): firstDconf,
			},
			Tags: map[string]int{},
		}
		if err := c.col.Create(ctx, col); err != nil {
			return err
		}
	}

	hasNotes, err := c.notes.AnyExists(ctx)
	if err != nil {
		return err
	}
	if hasNotes {
		log.Debug("collection already seeded, skipping first note")
		return nil
	}

	note := models.NewNote(firstModel.ID, firstModel.FieldNames(), firstNoteData, nil)
	noteID, err := c.notes.Insert(ctx, note)
	if err != nil {
		return err
	}
	note.ID = noteID

	for i := range firstModel.Templates {
		if _, err := c.cards.Insert(ctx, models.NewCard(noteID, firstDeck.ID, i)); err != nil {
			return err
		}
	}
	log.Info("collection initialized: model=%q deck=%q", firstModel.Name, firstDeck.Name)
	return nil
}

// dayStart returns the epoch of 4am local time on the given day, the
// rollover hour the scheduler uses as the collection creation base.
func dayStart(t time.Time) int64 {
	start := time.Date(t.Year(), t.Month(), t.Day(), 4, 0, 0, 0, t.Location())
	if start.After(t) {
		start = start.AddDate(0, 0, -1)
	}
	return start.Unix()
}
