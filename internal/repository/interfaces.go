package repository

import (
	"context"

	"github.com/vytor/ankistore/internal/models"
)

// ColRepository handles the collection-metadata singleton. The metadata maps
// are serialized whole on save, so callers mutate a copy and call Save with
// the full row (read-modify-write).
type ColRepository interface {
	// Get fails with NotFound when the singleton has not been created.
	Get(ctx context.Context) (*models.Col, error)
	// GetOrNone returns nil, nil when the singleton has not been created.
	GetOrNone(ctx context.Context) (*models.Col, error)
	Create(ctx context.Context, col *models.Col) error
	Save(ctx context.Context, col *models.Col) error
}

// NoteRepository handles note rows.
type NoteRepository interface {
	Insert(ctx context.Context, note *models.Note) (int64, error)
	// Get fails with NotFound for a missing id.
	Get(ctx context.Context, id int64) (*models.Note, error)
	GetOrNone(ctx context.Context, id int64) (*models.Note, error)
	// AnyExists reports whether at least one note row exists.
	AnyExists(ctx context.Context) (bool, error)
	SelectByIDs(ctx context.Context, ids []int64) ([]*models.Note, error)
	SelectAll(ctx context.Context) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	// UpdateMany applies every row update inside one transaction.
	UpdateMany(ctx context.Context, notes []*models.Note) error
	UpdateTags(ctx context.Context, id int64, tags []string) error
}

// CardRepository handles card rows.
type CardRepository interface {
	Insert(ctx context.Context, card *models.Card) (int64, error)
	// Get fails with NotFound for a missing id.
	Get(ctx context.Context, id int64) (*models.Card, error)
	SelectByIDs(ctx context.Context, ids []int64) ([]*models.Card, error)
	SelectByNote(ctx context.Context, noteID int64) ([]*models.Card, error)
	SelectByDeck(ctx context.Context, deckID int64) ([]*models.Card, error)
	// UpdateDeck repoints matching cards at deckID; no referential check.
	UpdateDeck(ctx context.Context, cardIDs []int64, deckID int64) (int64, error)
	// UpdateQueue sets a single queue value on matching cards.
	UpdateQueue(ctx context.Context, cardIDs []int64, queue models.CardQueue) (int64, error)
	// RestoreQueueFromType sets queue = type per row on matching cards.
	RestoreQueueFromType(ctx context.Context, cardIDs []int64) (int64, error)
	SetNextReview(ctx context.Context, id int64, typ models.CardType, queue models.CardQueue, due int64) error
	// SetStat updates the card's counters and appends the review-log row in
	// one transaction; neither write is visible if either fails.
	SetStat(ctx context.Context, id int64, reps, lapses int, entry models.RevlogEntry) error
	// DeleteByDeck removes a deck's cards and writes their tombstones in one
	// transaction, returning the deleted card ids.
	DeleteByDeck(ctx context.Context, deckID int64) ([]int64, error)
}

// RevlogRepository handles review-log rows.
type RevlogRepository interface {
	Insert(ctx context.Context, entry models.RevlogEntry) (int64, error)
	SelectByCard(ctx context.Context, cardID int64) ([]models.RevlogEntry, error)
}

// GraveRepository handles deleted-item tombstones.
type GraveRepository interface {
	Insert(ctx context.Context, grave models.Grave) error
	SelectByType(ctx context.Context, typ models.GraveType) ([]models.Grave, error)
}
