// Package api exposes the collection facade over the same JSON action
// protocol the connect client speaks, so existing automation tooling can
// drive a local collection without the desktop application running.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/ankistore/internal/anki"
)

// ProtocolVersion is the automation protocol version this server reports.
const ProtocolVersion = 6

// MediaStore is the slice of the archive adapter the media actions need.
type MediaStore interface {
	StoreMediaFile(filename string, data []byte) error
	RetrieveMediaFile(filename string) ([]byte, error)
	DeleteMediaFile(filename string) (bool, error)
}

type Server struct {
	Collection *anki.Collection
	Media      MediaStore
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Post("/", s.handleAction)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
