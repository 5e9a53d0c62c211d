package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
)

// SolverService defines all solver-related operations
type SolverService interface {
	// Session Management
	CreateSession(ctx context.Context, configID string) (*SessionInfo, error)
	CreateSessionFromLayout(ctx context.Context, name string, layout []string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Searches
	Solve(ctx context.Context, sessionID, algorithm string) (*SolveResult, error)
	Compare(ctx context.Context, sessionID string, opts CompareOptions) (*Comparison, error)
	SolveLayout(ctx context.Context, layout []string, algorithm string) (*SolveResult, error)

	// Session State
	GetResults(ctx context.Context, sessionID string, opts HistoryOptions) (*ResultsResponse, error)
	DescribeCell(ctx context.Context, sessionID string, row, col int) (*CellInfo, error)

	// Catalogues
	ListAlgorithms(ctx context.Context) []solver.AlgorithmInfo
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configID string) (*engine.GridConfig, error)
	SaveConfig(ctx context.Context, configID string, config *engine.GridConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.GridConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles grid preset loading
type ConfigManager interface {
	LoadConfig(configID string) (*engine.GridConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() (string, *engine.GridConfig)
	SaveConfig(configID string, config *engine.GridConfig) error
}

// Session is one grid bound to its solve history.
// The grid and config never change after creation; the history and access
// time are guarded by the session's own lock.
type Session struct {
	ID        string
	ConfigID  string
	Config    *engine.GridConfig
	Grid      *engine.Grid
	CreatedAt time.Time

	mu             sync.RWMutex
	lastAccessedAt time.Time
	results        []SolveRecord
}

// NewSession creates a session with an empty history
func NewSession(id, configID string, config *engine.GridConfig, grid *engine.Grid, createdAt time.Time) *Session {
	return &Session{
		ID:             id,
		ConfigID:       configID,
		Config:         config,
		Grid:           grid,
		CreatedAt:      createdAt,
		lastAccessedAt: createdAt,
	}
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastAccessedAt = t
	s.mu.Unlock()
}

// LastAccessedAt returns the time of the latest access
func (s *Session) LastAccessedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccessedAt
}

// AddResult appends records to the history in order
func (s *Session) AddResult(records ...SolveRecord) {
	s.mu.Lock()
	s.results = append(s.results, records...)
	s.mu.Unlock()
}

// Results returns a copy of the history, oldest first
func (s *Session) Results() []SolveRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SolveRecord, len(s.results))
	copy(out, s.results)
	return out
}

// Restore replaces the history and access time, used when loading from storage
func (s *Session) Restore(lastAccessedAt time.Time, results []SolveRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = lastAccessedAt
	s.results = append([]SolveRecord(nil), results...)
}
