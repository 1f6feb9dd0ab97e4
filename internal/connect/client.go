// Package connect is a JSON-over-HTTP client for the collection automation
// API: every facade operation has a 1:1 wire action. The client carries no
// logic of its own; a non-null error field in a response surfaces as a local
// error and the result field is decoded into the caller's type.
package connect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/logger"
	"github.com/vytor/ankistore/internal/models"
)

// DefaultURL is the local automation endpoint.
const DefaultURL = "http://localhost:8765"

// DefaultVersion is the protocol version spoken by default.
const DefaultVersion = 6

// Client talks the automation protocol against a running endpoint.
type Client struct {
	url        string
	version    int
	httpClient *http.Client
	log        *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithURL overrides the endpoint URL.
func WithURL(url string) ClientOption {
	return func(c *Client) {
		c.url = url
	}
}

// WithVersion overrides the protocol version sent with every request.
func WithVersion(version int) ClientOption {
	return func(c *Client) {
		c.version = version
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client against the default local endpoint.
func New(opts ...ClientOption) *Client {
	c := &Client{
		url:        DefaultURL,
		version:    DefaultVersion,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default().WithPrefix("connect"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

func (c *Client) post(ctx context.Context, action string, params any, out any) error {
	log := logger.FromContext(ctx).WithPrefix("connect")
	log.Debug("posting action %q to %s", action, c.url)

	body, err := json.Marshal(request{Action: action, Version: c.version, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("action %q failed: %v", action, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("action %q failed: status=%d body=%s", action, resp.StatusCode, string(raw))
		return fmt.Errorf("%s status %d: %s", action, resp.StatusCode, string(raw))
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return err
	}
	if r.Error != nil {
		log.Debug("action %q returned error: %s", action, *r.Error)
		return fmt.Errorf("%s: %s", action, *r.Error)
	}
	if out != nil && len(r.Result) > 0 {
		return json.Unmarshal(r.Result, out)
	}
	return nil
}

// Version returns the protocol version of the endpoint.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	err := c.post(ctx, "version", nil, &v)
	return v, err
}

// Sync asks the endpoint to synchronize its collection.
func (c *Client) Sync(ctx context.Context) error {
	return c.post(ctx, "sync", nil, nil)
}

// Multi runs several sub-actions in one round trip.
func (c *Client) Multi(ctx context.Context, actions []map[string]any, out any) error {
	return c.post(ctx, "multi", map[string]any{"actions": actions}, out)
}

func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.post(ctx, "deckNames", nil, &names)
	return names, err
}

func (c *Client) DeckNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	err := c.post(ctx, "deckNamesAndIds", nil, &out)
	return out, err
}

func (c *Client) GetDecks(ctx context.Context, cardIDs []int64) (map[string][]int64, error) {
	out := make(map[string][]int64)
	err := c.post(ctx, "getDecks", map[string]any{"cards": cardIDs}, &out)
	return out, err
}

func (c *Client) CreateDeck(ctx context.Context, deckName string) (int64, error) {
	var id int64
	err := c.post(ctx, "createDeck", map[string]any{"deck": deckName}, &id)
	return id, err
}

func (c *Client) ChangeDeck(ctx context.Context, cardIDs []int64, deckName string) error {
	return c.post(ctx, "changeDeck", map[string]any{"cards": cardIDs, "deck": deckName}, nil)
}

func (c *Client) DeleteDecks(ctx context.Context, deckNames []string, cardsToo bool) error {
	return c.post(ctx, "deleteDecks", map[string]any{"decks": deckNames, "cardsToo": cardsToo}, nil)
}

func (c *Client) GetDeckConfig(ctx context.Context, deckName string) (*models.DeckConfig, error) {
	var dc models.DeckConfig
	if err := c.post(ctx, "getDeckConfig", map[string]any{"deck": deckName}, &dc); err != nil {
		return nil, err
	}
	return &dc, nil
}

func (c *Client) SaveDeckConfig(ctx context.Context, config map[string]any) (int64, error) {
	var id int64
	err := c.post(ctx, "saveDeckConfig", map[string]any{"config": config}, &id)
	return id, err
}

func (c *Client) SetDeckConfigID(ctx context.Context, deckNames []string, configID int64) (bool, error) {
	var edited bool
	err := c.post(ctx, "setDeckConfigId", map[string]any{"decks": deckNames, "configId": configID}, &edited)
	return edited, err
}

func (c *Client) CloneDeckConfigID(ctx context.Context, name string, cloneFrom int64) (int64, error) {
	var id int64
	err := c.post(ctx, "cloneDeckConfigId", map[string]any{"name": name, "cloneFrom": cloneFrom}, &id)
	return id, err
}

func (c *Client) RemoveDeckConfigID(ctx context.Context, configID int64) error {
	return c.post(ctx, "removeDeckConfigId", map[string]any{"configId": configID}, nil)
}

func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.post(ctx, "modelNames", nil, &names)
	return names, err
}

func (c *Client) ModelNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	err := c.post(ctx, "modelNamesAndIds", nil, &out)
	return out, err
}

func (c *Client) ModelFieldNames(ctx context.Context, modelName string) ([]string, error) {
	var names []string
	err := c.post(ctx, "modelFieldNames", map[string]any{"modelName": modelName}, &names)
	return names, err
}

func (c *Client) ModelTemplateNames(ctx context.Context, modelName string) ([]string, error) {
	var names []string
	err := c.post(ctx, "modelTemplateNames", map[string]any{"modelName": modelName}, &names)
	return names, err
}

func (c *Client) AddNote(ctx context.Context, note anki.NoteInput) (int64, error) {
	var id int64
	err := c.post(ctx, "addNote", map[string]any{"note": note}, &id)
	return id, err
}

func (c *Client) AddNotes(ctx context.Context, notes []anki.NoteInput) ([]int64, error) {
	var ids []int64
	err := c.post(ctx, "addNotes", map[string]any{"notes": notes}, &ids)
	return ids, err
}

func (c *Client) UpdateNoteFields(ctx context.Context, noteID int64, fields map[string]string) error {
	return c.post(ctx, "updateNoteFields", map[string]any{
		"note": map[string]any{"id": noteID, "fields": fields},
	}, nil)
}

func (c *Client) AddTags(ctx context.Context, noteIDs []int64, tags []string) error {
	return c.post(ctx, "addTags", map[string]any{"notes": noteIDs, "tags": tags}, nil)
}

func (c *Client) RemoveTags(ctx context.Context, noteIDs []int64, tags []string) error {
	return c.post(ctx, "removeTags", map[string]any{"notes": noteIDs, "tags": tags}, nil)
}

func (c *Client) GetTags(ctx context.Context) ([]string, error) {
	var tags []string
	err := c.post(ctx, "getTags", nil, &tags)
	return tags, err
}

func (c *Client) NotesInfo(ctx context.Context, noteIDs []int64) ([]anki.NoteInfo, error) {
	var infos []anki.NoteInfo
	err := c.post(ctx, "notesInfo", map[string]any{"notes": noteIDs}, &infos)
	return infos, err
}

func (c *Client) UpsertNote(ctx context.Context, in anki.UpsertInput) ([]int64, error) {
	var ids []int64
	err := c.post(ctx, "upsertNote", map[string]any{"note": in}, &ids)
	return ids, err
}

func (c *Client) Suspend(ctx context.Context, cardIDs []int64) (bool, error) {
	var changed bool
	err := c.post(ctx, "suspend", map[string]any{"cards": cardIDs}, &changed)
	return changed, err
}

func (c *Client) Unsuspend(ctx context.Context, cardIDs []int64) (bool, error) {
	var changed bool
	err := c.post(ctx, "unsuspend", map[string]any{"cards": cardIDs}, &changed)
	return changed, err
}

func (c *Client) AreSuspended(ctx context.Context, cardIDs []int64) ([]bool, error) {
	var out []bool
	err := c.post(ctx, "areSuspended", map[string]any{"cards": cardIDs}, &out)
	return out, err
}

func (c *Client) AreDue(ctx context.Context, cardIDs []int64) ([]bool, error) {
	var out []bool
	err := c.post(ctx, "areDue", map[string]any{"cards": cardIDs}, &out)
	return out, err
}

func (c *Client) CardsToNotes(ctx context.Context, cardIDs []int64) ([]int64, error) {
	var ids []int64
	err := c.post(ctx, "cardsToNotes", map[string]any{"cards": cardIDs}, &ids)
	return ids, err
}

func (c *Client) CardsInfo(ctx context.Context, cardIDs []int64) ([]anki.NoteInfo, error) {
	var infos []anki.NoteInfo
	err := c.post(ctx, "cardsInfo", map[string]any{"cards": cardIDs}, &infos)
	return infos, err
}

func (c *Client) StoreMediaFile(ctx context.Context, filename string, data []byte) error {
	return c.post(ctx, "storeMediaFile", map[string]any{
		"filename": filename,
		"data":     base64.StdEncoding.EncodeToString(data),
	}, nil)
}

func (c *Client) RetrieveMediaFile(ctx context.Context, filename string) ([]byte, error) {
	var encoded string
	if err := c.post(ctx, "retrieveMediaFile", map[string]any{"filename": filename}, &encoded); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (c *Client) DeleteMediaFile(ctx context.Context, filename string) (bool, error) {
	var deleted bool
	err := c.post(ctx, "deleteMediaFile", map[string]any{"filename": filename}, &deleted)
	return deleted, err
}
