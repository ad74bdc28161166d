// Package httpapi exposes the library and search services over HTTP with a
// websocket event stream.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"riffbox/internal/events"
	"riffbox/internal/media"
	"riffbox/internal/metrics"
	"riffbox/internal/riffbox"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CreateCollectionRequest is the body of POST /api/collections.
type CreateCollectionRequest struct {
	Paths []string `json:"paths"`
}

// Options configures a Server.
type Options struct {
	Library *riffbox.LibraryService
	Search  *riffbox.SearchService

	// Broadcast also receives video:selected events from searches.
	Broadcast riffbox.EventBus
	// Events serves GET /events. Usually an *events.Hub.
	Events http.Handler
	// Authorize gates search results. Nil allows every path.
	Authorize riffbox.PathAuthorizer

	Logger riffbox.Logger
}

// Server routes HTTP requests to the services.
type Server struct {
	opts   Options
	router *mux.Router
}

// NewServer creates a Server and registers its routes.
func NewServer(opts Options) *Server {
	s := &Server{opts: opts, router: mux.NewRouter()}

	s.router.Use(metrics.Middleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/collections", s.handleCreateCollection).Methods(http.MethodPost)
	api.HandleFunc("/collections", s.handleListCollections).Methods(http.MethodGet)
	api.HandleFunc("/collections/{id}", s.handleGetCollection).Methods(http.MethodGet)
	api.HandleFunc("/collections/{id}/videos", s.handleUpdateVideo).Methods(http.MethodPut)
	api.HandleFunc("/index", s.handleIndex).Methods(http.MethodPost)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)

	if opts.Events != nil {
		s.router.Handle("/events", opts.Events).Methods(http.MethodGet)
	}
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}

	c, err := s.opts.Library.CreateCollection(req.Paths)
	if err != nil {
		s.sendError(w, statusFor(err), err)
		return
	}
	sendJSON(w, http.StatusCreated, Response{Success: true, Data: c})
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections := s.opts.Library.ListCollections()
	if collections == nil {
		collections = []riffbox.Collection{}
	}
	sendJSON(w, http.StatusOK, Response{Success: true, Data: collections})
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	c, err := s.opts.Library.GetCollection(mux.Vars(r)["id"])
	if err != nil {
		s.sendError(w, statusFor(err), err)
		return
	}
	sendJSON(w, http.StatusOK, Response{Success: true, Data: c})
}

func (s *Server) handleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	var v riffbox.Video
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}

	c, err := s.opts.Library.UpdateVideo(mux.Vars(r)["id"], v)
	if err != nil {
		s.sendError(w, statusFor(err), err)
		return
	}
	sendJSON(w, http.StatusOK, Response{Success: true, Data: c})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Search.IndexAllVideos(); err != nil {
		s.sendError(w, statusFor(err), err)
		return
	}
	sendJSON(w, http.StatusOK, Response{Success: true})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.sendError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	results := events.NewMemoryBus()
	bus := events.Tee{results, s.opts.Broadcast}
	if err := s.opts.Search.SearchWith(bus, q.Get("q"), limit, s.opts.Authorize); err != nil {
		s.sendError(w, statusFor(err), err)
		return
	}

	videos := results.SelectedVideos()
	if videos == nil {
		videos = []riffbox.Video{}
	}
	sendJSON(w, http.StatusOK, Response{Success: true, Data: videos})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, riffbox.ErrEmptyInput), errors.Is(err, riffbox.ErrInvalidStyle):
		return http.StatusBadRequest
	case errors.Is(err, riffbox.ErrCollectionNotFound), errors.Is(err, riffbox.ErrVideoNotFound):
		return http.StatusNotFound
	case errors.Is(err, media.ErrPathNotAllowed):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) sendError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError && s.opts.Logger != nil {
		s.opts.Logger.Error("request failed", "status", code, "error", err)
	}
	sendJSON(w, code, Response{Success: false, Error: err.Error()})
}

func sendJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}
