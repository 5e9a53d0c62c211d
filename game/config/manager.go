package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigID is the preset used when a session names none
const DefaultConfigID = "classic"

// Manager handles grid preset loading and caching
type Manager struct {
	configDir     string
	defaultID     string
	defaultConfig *engine.GridConfig
	configs       map[string]*engine.GridConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GridConfig),
	}
	m.defaultID, m.defaultConfig = m.resolveDefault()
	return m, nil
}

// LoadConfig loads a preset by id, reading through the cache
func (m *Manager) LoadConfig(id string) (*engine.GridConfig, error) {
	id = strings.TrimSuffix(id, ".json")
	if err := checkID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	data, err := os.ReadFile(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.GridConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, id, err)
	}
	if err := engine.ValidateGridConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = &config
	return &config, nil
}

// ListConfigs returns information about every valid preset, sorted by id
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid presets
			continue
		}

		info := &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Rows:        len(config.Layout),
			Columns:     len(config.Layout[0]),
		}
		if grid, err := engine.ParseLayout(config.Layout); err == nil {
			info.Obstacles = engine.CountObstacles(grid)
			info.GridGold = engine.TotalGold(grid)
		}
		configs = append(configs, info)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default preset and its id
func (m *Manager) GetDefault() (string, *engine.GridConfig) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID, m.defaultConfig
}

// SetDefault sets the default preset by id
func (m *Manager) SetDefault(id string) error {
	config, err := m.LoadConfig(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = strings.TrimSuffix(id, ".json")
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached preset and resolves the default again
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GridConfig)
	m.mu.Unlock()

	id, config := m.resolveDefault()

	m.mu.Lock()
	m.defaultID, m.defaultConfig = id, config
	m.mu.Unlock()
}

// SaveConfig validates and writes a preset to disk
func (m *Manager) SaveConfig(id string, config *engine.GridConfig) error {
	id = strings.TrimSuffix(id, ".json")
	if err := checkID(id); err != nil {
		return err
	}
	if err := engine.ValidateGridConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.path(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return nil
}

// resolveDefault picks classic.json, else the first valid preset, else a built-in grid
func (m *Manager) resolveDefault() (string, *engine.GridConfig) {
	if config, err := m.LoadConfig(DefaultConfigID); err == nil {
		return DefaultConfigID, config
	}

	configs, err := m.ListConfigs()
	if err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].ConfigID); err == nil {
			return configs[0].ConfigID, config
		}
	}

	return "default", minimalConfig()
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.configDir, id+".json")
}

// checkID rejects ids that would escape the config directory
func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: invalid config id %q", ErrConfigNotFound, id)
	}
	return nil
}

// minimalConfig is the example grid from the problem statement
func minimalConfig() *engine.GridConfig {
	return &engine.GridConfig{
		Name:        "default",
		Description: "Default minimal grid",
		Layout: []string{
			"23",
			"15",
		},
	}
}
