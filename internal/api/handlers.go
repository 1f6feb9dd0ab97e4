package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vytor/ankistore/internal/anki"
	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/logger"
)

type actionRequest struct {
	Action  string          `json:"action"`
	Version int             `json:"version"`
	Params  json.RawMessage `json:"params"`
}

// actionResponse is the envelope every action answers with. The protocol
// reports failures in-band, so the HTTP status is 200 either way.
type actionResponse struct {
	Result any     `json:"result"`
	Error  *string `json:"error"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("malformed request body: %v", err)
		writeEnvelope(w, nil, fmt.Errorf("malformed request: %w", err))
		return
	}

	log.Debug("dispatching action %q (version %d)", req.Action, req.Version)
	result, err := s.dispatch(r.Context(), req.Action, req.Params)
	if err != nil {
		log.Warn("action %q failed: %v", req.Action, err)
	}
	writeEnvelope(w, result, err)
}

func writeEnvelope(w http.ResponseWriter, result any, err error) {
	resp := actionResponse{Result: result}
	if err != nil {
		msg := err.Error()
		if appErr, ok := err.(*errors.AppError); ok {
			msg = appErr.Message
		}
		resp.Error = &msg
		resp.Result = nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) dispatch(ctx context.Context, action string, params json.RawMessage) (any, error) {
	if strings.HasPrefix(action, "gui") {
		return nil, errors.NewBadRequestError(fmt.Sprintf("action %q requires the desktop application", action))
	}

	switch action {
	case "version":
		return ProtocolVersion, nil
	case "sync":
		// There is no remote to sync against; accepted for compatibility.
		return nil, nil
	case "multi":
		return s.handleMulti(ctx, params)

	case "deckNames":
		return s.Collection.DeckNames(ctx)
	case "deckNamesAndIds":
		return s.Collection.DeckNamesAndIDs(ctx)
	case "getDecks":
		var p struct {
			Cards []int64 `json:"cards"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.GetDecks(ctx, p.Cards)
	case "createDeck":
		var p struct {
			Deck string `json:"deck"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.CreateDeck(ctx, p.Deck, "", 1, nil)
	case "changeDeck":
		var p struct {
			Cards []int64 `json:"cards"`
			Deck  string  `json:"deck"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return nil, s.Collection.ChangeDeck(ctx, p.Cards, p.Deck, 1)
	case "deleteDecks":
		var p struct {
			Decks    []string `json:"decks"`
			CardsToo bool     `json:"cardsToo"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return nil, s.Collection.DeleteDecks(ctx, p.Decks, p.CardsToo)

	case "getDeckConfig":
		var p struct {
			Deck string `json:"deck"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.GetDeckConfigByDeckName(ctx, p.Deck)
	case "saveDeckConfig":
		var p struct {
			Config map[string]any `json:"config"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.SaveDeckConfig(ctx, p.Config)
	case "setDeckConfigId":
		var p struct {
			Decks    []string `json:"decks"`
			ConfigID int64    `json:"configId"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.SetDeckConfigID(ctx, p.Decks, p.ConfigID)
	case "cloneDeckConfigId":
		var p struct {
			Name      string `json:"name"`
			CloneFrom int64  `json:"cloneFrom"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.CloneDeckConfigID(ctx, p.Name, p.CloneFrom)
	case "removeDeckConfigId":
		var p struct {
			ConfigID int64 `json:"configId"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return nil, s.Collection.RemoveDeckConfigID(ctx, p.ConfigID)

	case "modelNames":
		return s.Collection.ModelNames(ctx)
	case "modelNamesAndIds":
		return s.Collection.ModelNamesAndIDs(ctx)
	case "modelFieldNames":
		var p struct {
			ModelName string `json:"modelName"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.ModelFieldNames(ctx, p.ModelName)
	case "modelTemplateNames":
		var p struct {
			ModelName string `json:"modelName"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.ModelTemplateNames(ctx, p.ModelName)

	case "addNote":
		var p struct {
			Note anki.NoteInput `json:"note"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.AddNote(ctx, p.Note)
	case "addNotes":
		var p struct {
			Notes []anki.NoteInput `json:"notes"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.AddNotes(ctx, p.Notes)
	case "updateNoteFields":
		var p struct {
			Note struct {
				ID     int64             `json:"id"`
				Fields map[string]string `json:"fields"`
			} `json:"note"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return nil, s.Collection.UpdateNoteFields(ctx, p.Note.ID, p.Note.Fields)
	case "addTags":
		var p struct {
			Notes []int64  `json:"notes"`
			Tags  []string `json:"tags"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return nil, s.Collection.AddTags(ctx, p.Notes, p.Tags)
	case "removeTags":
		var p struct {
			Notes []int64  `json:"notes"`
			Tags  []string `json:"tags"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return nil, s.Collection.RemoveTags(ctx, p.Notes, p.Tags)
	case "getTags":
		return s.Collection.GetTags(ctx)
	case "notesInfo":
		var p struct {
			Notes []int64 `json:"notes"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.NotesInfo(ctx, p.Notes)
	case "upsertNote":
		var p struct {
			Note anki.UpsertInput `json:"note"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.UpsertNote(ctx, p.Note)

	case "suspend":
		var p struct {
			Cards []int64 `json:"cards"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.Suspend(ctx, p.Cards)
	case "unsuspend":
		var p struct {
			Cards []int64 `json:"cards"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.Unsuspend(ctx, p.Cards)
	case "areSuspended":
		var p struct {
			Cards []int64 `json:"cards"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.AreSuspended(ctx, p.Cards)
	case "areDue":
		var p struct {
			Cards []int64 `json:"cards"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.AreDue(ctx, p.Cards)
	case "cardsToNotes":
		var p struct {
			Cards []int64 `json:"cards"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.CardsToNotes(ctx, p.Cards)
	case "cardsInfo":
		var p struct {
			Cards []int64 `json:"cards"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Collection.CardsInfo(ctx, p.Cards)

	case "storeMediaFile":
		if s.Media == nil {
			return nil, errors.NewBadRequestError("no media store attached")
		}
		var p struct {
			Filename string `json:"filename"`
			Data     string `json:"data"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		data, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return nil, errors.NewBadRequestError("data is not valid base64")
		}
		return nil, s.Media.StoreMediaFile(p.Filename, data)
	case "retrieveMediaFile":
		if s.Media == nil {
			return nil, errors.NewBadRequestError("no media store attached")
		}
		var p struct {
			Filename string `json:"filename"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		data, err := s.Media.RetrieveMediaFile(p.Filename)
		if err != nil {
			return nil, err
		}
		return base64.StdEncoding.EncodeToString(data), nil
	case "deleteMediaFile":
		if s.Media == nil {
			return nil, errors.NewBadRequestError("no media store attached")
		}
		var p struct {
			Filename string `json:"filename"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Media.DeleteMediaFile(p.Filename)
	}

	return nil, errors.NewBadRequestError(fmt.Sprintf("unsupported action: %s", action))
}

// handleMulti runs each sub-request in order and collects one envelope per
// sub-request. A failing sub-action does not stop the rest.
func (s *Server) handleMulti(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Actions []actionRequest `json:"actions"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	results := make([]actionResponse, 0, len(p.Actions))
	for _, sub := range p.Actions {
		if sub.Action == "multi" {
			err := "multi cannot be nested"
			results = append(results, actionResponse{Error: &err})
			continue
		}
		result, err := s.dispatch(ctx, sub.Action, sub.Params)
		resp := actionResponse{Result: result}
		if err != nil {
			msg := err.Error()
			resp.Error = &msg
			resp.Result = nil
		}
		results = append(results, resp)
	}
	return results, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return errors.NewBadRequestError("missing params")
	}
	if err := json.Unmarshal(params, out); err != nil {
		return errors.NewBadRequestError(fmt.Sprintf("invalid params: %v", err))
	}
	return nil
}
