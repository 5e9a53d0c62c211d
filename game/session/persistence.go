package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// ExpiryRefresher is implemented by stores whose entries expire unless they
// are written or refreshed in time.
type ExpiryRefresher interface {
	// Refresh restarts the expiry of a stored session.
	// It returns ErrSessionNotFound if the entry is already gone.
	Refresh(id string) error
}

// PersistedSessionData is the stored form of a session.
// The preset is stored inline so ad-hoc layouts survive restarts and
// later edits to a preset file do not change an existing session's grid.
type PersistedSessionData struct {
	ID             string                `json:"id"`
	ConfigID       string                `json:"config_id"`
	Config         *engine.GridConfig    `json:"config"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	Results        []service.SolveRecord `json:"results"`
}

func encodeSession(session *service.Session) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             session.ID,
		ConfigID:       session.ConfigID,
		Config:         session.Config,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt(),
		Results:        session.Results(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return jsonData, nil
}

func decodeSession(jsonData []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	grid, err := engine.GridFromConfig(data.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild grid for session %s: %w", data.ID, err)
	}

	session := service.NewSession(data.ID, data.ConfigID, data.Config, grid, data.CreatedAt)
	session.Restore(data.LastAccessedAt, data.Results)
	return session, nil
}
