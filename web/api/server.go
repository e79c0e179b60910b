// Package api serves read-only race results over HTTP: JSON endpoints
// for result displays plus a websocket feed pushing each new finish
// entry as it is recorded. The operator console is the only writer;
// this server never mutates the session.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/opentiming/finishline/internal/race"
)

// Server is the live results HTTP server.
type Server struct {
	recorder *race.Recorder
	addr     string
	mux      *http.ServeMux
	hub      *Hub
}

// NewServer creates a results server over the given recorder.
func NewServer(recorder *race.Recorder, addr string) *Server {
	s := &Server{
		recorder: recorder,
		addr:     addr,
		mux:      http.NewServeMux(),
		hub:      NewHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/status", s.statusHandler())
	s.mux.HandleFunc("/api/categories", s.categoriesHandler())
	s.mux.HandleFunc("/api/results", s.resultsHandler())
	s.mux.HandleFunc("/api/recent", s.recentHandler())
	s.mux.HandleFunc("/ws", s.hub.HandleWebSocket)
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Serve runs the hub and blocks serving HTTP until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	go s.hub.Run()

	srv := &http.Server{Addr: s.addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// BroadcastEntry pushes one new finish entry to connected displays.
// Wire it as the recorder's entry listener.
func (s *Server) BroadcastEntry(e *race.FinishEntry) {
	s.hub.Broadcast(Event{Type: "entry", Data: entryPayload(e)})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
