package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/service"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
	"github.com/wricardo/mcp-training/greedygnomes/transport/websocket"
)

// maxBodyBytes bounds request bodies; a 64x64 layout is well under this
const maxBodyBytes = 1 << 20

// Broadcaster pushes session events to subscribed clients
type Broadcaster interface {
	BroadcastEvent(sessionID, event string, data any)
	ServeWS(w http.ResponseWriter, r *http.Request, sessionID string)
}

// Server represents the REST API server
type Server struct {
	service service.SolverService
	hub     Broadcaster
	router  *mux.Router
	log     *zap.SugaredLogger
}

// NewServer creates a new API server. hub may be nil, which disables /ws
// and event broadcasting.
func NewServer(svc service.SolverService, hub Broadcaster, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		service: svc,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     log,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Searches
	api.HandleFunc("/sessions/{id}/solve", s.handleSolve).Methods("POST")
	api.HandleFunc("/sessions/{id}/compare", s.handleCompare).Methods("POST")
	api.HandleFunc("/sessions/{id}/results", s.handleGetResults).Methods("GET")
	api.HandleFunc("/sessions/{id}/cells/{row:[0-9]+}/{col:[0-9]+}", s.handleDescribeCell).Methods("GET")
	api.HandleFunc("/solve", s.handleSolveLayout).Methods("POST")
	api.HandleFunc("/algorithms", s.handleListAlgorithms).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and solver errors to HTTP status codes
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrConfigNotFound),
		errors.Is(err, service.ErrCellOutOfBounds):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidConfig),
		errors.Is(err, solver.ErrUnknownAlgorithm):
		status = http.StatusBadRequest
	case errors.Is(err, solver.ErrTooManySteps),
		errors.Is(err, solver.ErrEnumerationOverflow):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log.Errorw("request failed", "error", err)
	}
	respondError(w, status, err.Error())
}

// decodeBody decodes an optional JSON body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) broadcast(sessionID, event string, data any) {
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, event, data)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string   `json:"config_id,omitempty"`
		Name     string   `json:"name,omitempty"`
		Layout   []string `json:"layout,omitempty"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		info *service.SessionInfo
		err  error
	)
	switch {
	case req.Layout != nil && req.ConfigID != "":
		respondError(w, http.StatusBadRequest, "specify either config_id or layout, not both")
		return
	case req.Layout != nil:
		info, err = s.service.CreateSessionFromLayout(r.Context(), req.Name, req.Layout)
	default:
		info, err = s.service.CreateSession(r.Context(), req.ConfigID)
	}
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	// Subscribers are keyed by the stored ID, not the spelling in the URL
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if err := s.service.DeleteSession(r.Context(), info.ID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.broadcast(info.ID, websocket.EventSessionDeleted, nil)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", info.ID),
	})
}

// Search Handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Algorithm string `json:"algorithm"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Solve(r.Context(), sessionID, req.Algorithm)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.broadcast(result.SessionID, websocket.EventSolveCompleted, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var opts service.CompareOptions
	if err := decodeBody(w, r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmp, err := s.service.Compare(r.Context(), sessionID, opts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.broadcast(cmp.SessionID, websocket.EventCompared, cmp)
	respondJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	query := r.URL.Query()

	opts := service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	results, err := s.service.GetResults(r.Context(), sessionID, opts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleDescribeCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	// The route pattern guarantees digits; Atoi can only fail on overflow
	row, err := strconv.Atoi(vars["row"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid row")
		return
	}
	col, err := strconv.Atoi(vars["col"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid col")
		return
	}

	cell, err := s.service.DescribeCell(r.Context(), vars["id"], row, col)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cell)
}

func (s *Server) handleSolveLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Layout    []string `json:"layout"`
		Algorithm string   `json:"algorithm"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Layout) == 0 {
		respondError(w, http.StatusBadRequest, "layout is required")
		return
	}

	result, err := s.service.SolveLayout(r.Context(), req.Layout, req.Algorithm)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListAlgorithms(w http.ResponseWriter, r *http.Request) {
	algorithms := s.service.ListAlgorithms(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"algorithms": algorithms,
		"default":    solver.AlgDynProg,
	})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"configs": configs,
		"count":   len(configs),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.service.LoadConfig(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.GridConfig
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = configIDFromName(req.Name)
	}

	if err := s.service.SaveConfig(r.Context(), configID, &req.GridConfig); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// configIDFromName turns a display name into a file-safe id
func configIDFromName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusNotFound, "websocket updates are disabled")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session parameter required")
		return
	}

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.hub.ServeWS(w, r, info.ID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// logRequests logs one debug line per request
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debugw("http request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(started))
	})
}
