package connect

import (
	"context"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/models"
)

// ClientInterface defines the interface for automation API operations.
// This interface enables testability by allowing mock implementations.
type ClientInterface interface {
	Version(ctx context.Context) (int, error)
	Sync(ctx context.Context) error
	Multi(ctx context.Context, actions []map[string]any, out any) error

	DeckNames(ctx context.Context) ([]string, error)
	DeckNamesAndIDs(ctx context.Context) (map[string]int64, error)
	GetDecks(ctx context.Context, cardIDs []int64) (map[string][]int64, error)
	CreateDeck(ctx context.Context, deckName string) (int64, error)
	ChangeDeck(ctx context.Context, cardIDs []int64, deckName string) error
	DeleteDecks(ctx context.Context, deckNames []string, cardsToo bool) error

	GetDeckConfig(ctx context.Context, deckName string) (*models.DeckConfig, error)
	SaveDeckConfig(ctx context.Context, config map[string]any) (int64, error)
	SetDeckConfigID(ctx context.Context, deckNames []string, configID int64) (bool, error)
	CloneDeckConfigID(ctx context.Context, name string, cloneFrom int64) (int64, error)
	RemoveDeckConfigID(ctx context.Context, configID int64) error

	ModelNames(ctx context.Context) ([]string, error)
	ModelNamesAndIDs(ctx context.Context) (map[string]int64, error)
	ModelFieldNames(ctx context.Context, modelName string) ([]string, error)
	ModelTemplateNames(ctx context.Context, modelName string) ([]string, error)

	AddNote(ctx context.Context, note anki.NoteInput) (int64, error)
	AddNotes(ctx context.Context, notes []anki.NoteInput) ([]int64, error)
	UpdateNoteFields(ctx context.Context, noteID int64, fields map[string]string) error
	AddTags(ctx context.Context, noteIDs []int64, tags []string) error
	RemoveTags(ctx context.Context, noteIDs []int64, tags []string) error
	GetTags(ctx context.Context) ([]string, error)
	NotesInfo(ctx context.Context, noteIDs []int64) ([]anki.NoteInfo, error)
	UpsertNote(ctx context.Context, in anki.UpsertInput) ([]int64, error)

	Suspend(ctx context.Context, cardIDs []int64) (bool, error)
	Unsuspend(ctx context.Context, cardIDs []int64) (bool, error)
	AreSuspended(ctx context.Context, cardIDs []int64) ([]bool, error)
	AreDue(ctx context.Context, cardIDs []int64) ([]bool, error)
	CardsToNotes(ctx context.Context, cardIDs []int64) ([]int64, error)
	CardsInfo(ctx context.Context, cardIDs []int64) ([]anki.NoteInfo, error)

	StoreMediaFile(ctx context.Context, filename string, data []byte) error
	RetrieveMediaFile(ctx context.Context, filename string) ([]byte, error)
	DeleteMediaFile(ctx context.Context, filename string) (bool, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
