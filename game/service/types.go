package service

import (
	"time"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
)

// SessionInfo provides information about a solver session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigID       string             `json:"config_id"`
	Rows           int                `json:"rows"`
	Columns        int                `json:"columns"`
	Obstacles      int                `json:"obstacles"`
	ReachableCells int                `json:"reachable_cells"`
	GridGold       int                `json:"grid_gold"`
	SolveCount     int                `json:"solve_count"`
	BestGold       *int               `json:"best_gold,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GridConfig     *engine.GridConfig `json:"grid_config"`
}

// SolveRecord is one completed search, as kept in a session's history
type SolveRecord struct {
	ID        string            `json:"id"`
	Algorithm solver.Algorithm  `json:"algorithm"`
	TotalGold int               `json:"total_gold"`
	Steps     []string          `json:"steps"`
	Cells     []engine.Position `json:"cells"`
	End       engine.Position   `json:"end"`
	ElapsedUS int64             `json:"elapsed_us"`
	SolvedAt  time.Time         `json:"solved_at"`
}

// SolveResult contains the outcome of a solve operation.
// SessionID is empty for stateless solves.
type SolveResult struct {
	SessionID string       `json:"session_id,omitempty"`
	Result    *SolveRecord `json:"result"`
	Message   string       `json:"message"`
}

// CompareOptions selects the two algorithms a comparison runs.
// Empty names default to exhaustive and dynprog.
type CompareOptions struct {
	Baseline  string `json:"baseline"`
	Candidate string `json:"candidate"`
}

// Comparison contains two searches run concurrently on the same grid
type Comparison struct {
	SessionID string       `json:"session_id"`
	Baseline  *SolveRecord `json:"baseline"`
	Candidate *SolveRecord `json:"candidate"`
	Agree     bool         `json:"agree"`
	GoldDelta int          `json:"gold_delta"` // baseline - candidate
	Message   string       `json:"message"`
}

// HistoryOptions configures solve history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// ResultsResponse contains paginated solve history
type ResultsResponse struct {
	Results      []SolveRecord `json:"results"`
	TotalResults int           `json:"total_results"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
	HasNext      bool          `json:"has_next"`
	HasPrevious  bool          `json:"has_previous"`
}

// CellInfo describes one grid cell and the best path ending on it
type CellInfo struct {
	Row       int      `json:"row"`
	Col       int      `json:"col"`
	Char      string   `json:"char"`
	Obstacle  bool     `json:"obstacle"`
	Gold      int      `json:"gold"`
	Reachable bool     `json:"reachable"`
	BestGold  int      `json:"best_gold,omitempty"`
	BestSteps []string `json:"best_steps,omitempty"`
}

// ConfigInfo provides information about a grid preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	Obstacles   int    `json:"obstacles"`
	GridGold    int    `json:"grid_gold"`
}
