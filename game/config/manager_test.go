package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
)

func createValidConfig() *engine.GridConfig {
	return &engine.GridConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Layout: []string{
			"1.3",
			"X56",
			"7X9",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config any) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("classic is the default", func(t *testing.T) {
		dir := t.TempDir()
		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)
		writeConfigFile(t, dir, "another", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		id, config := manager.GetDefault()
		if id != "classic" || config.Name != "Classic" {
			t.Errorf("default = %s/%s, want classic/Classic", id, config.Name)
		}
	})

	t.Run("first preset when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "zeta", createValidConfig())
		writeConfigFile(t, dir, "alpha", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if id, _ := manager.GetDefault(); id != "alpha" {
			t.Errorf("default id = %s, want alpha", id)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory uses built-in grid", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without presets, got: %v", err)
		}
		id, config := manager.GetDefault()
		if id != "default" {
			t.Errorf("default id = %s, want default", id)
		}
		if err := engine.ValidateGridConfig(config); err != nil {
			t.Errorf("built-in grid is invalid: %v", err)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "valid", createValidConfig())
	writeConfigFile(t, dir, "blocked", &engine.GridConfig{Name: "Blocked", Layout: []string{"X1"}})
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "valid", id: "valid"},
		{name: "valid with extension", id: "valid.json"},
		{name: "missing", id: "nope", wantErr: ErrConfigNotFound},
		{name: "blocked origin", id: "blocked", wantErr: ErrInvalidConfig},
		{name: "malformed json", id: "broken", wantErr: ErrInvalidConfig},
		{name: "path traversal", id: "../valid", wantErr: ErrConfigNotFound},
		{name: "empty id", id: "", wantErr: ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := manager.LoadConfig(tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadConfig(%q) error = %v, want %v", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig(%q) unexpected error: %v", tt.id, err)
			}
			if config.Name != "Test Config" {
				t.Errorf("Name = %q, want Test Config", config.Name)
			}
		})
	}
}

func TestLoadConfigCaching(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "cached", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	first, err := manager.LoadConfig("cached")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	changed := createValidConfig()
	changed.Name = "Changed"
	writeConfigFile(t, dir, "cached", changed)

	second, err := manager.LoadConfig("cached")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if first != second {
		t.Error("expected the cached pointer before refresh")
	}

	manager.RefreshCache()
	third, err := manager.LoadConfig("cached")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if third.Name != "Changed" {
		t.Errorf("after refresh Name = %q, want Changed", third.Name)
	}
}

func TestListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "b_valid", createValidConfig())
	writeConfigFile(t, dir, "a_valid", &engine.GridConfig{Name: "Tiny", Layout: []string{"4"}})
	writeConfigFile(t, dir, "invalid", &engine.GridConfig{Name: "Ragged", Layout: []string{"12", "3"}})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs() error: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("len(configs) = %d, want 2", len(configs))
	}
	if configs[0].ConfigID != "a_valid" || configs[1].ConfigID != "b_valid" {
		t.Errorf("order = %s, %s", configs[0].ConfigID, configs[1].ConfigID)
	}

	info := configs[1]
	if info.Filename != "b_valid.json" {
		t.Errorf("Filename = %q", info.Filename)
	}
	if info.Rows != 3 || info.Columns != 3 {
		t.Errorf("size = %dx%d, want 3x3", info.Rows, info.Columns)
	}
	if info.Obstacles != 2 {
		t.Errorf("Obstacles = %d, want 2", info.Obstacles)
	}
	if info.GridGold != 31 {
		t.Errorf("GridGold = %d, want 31", info.GridGold)
	}
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SaveConfig("saved", createValidConfig()); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("preset file not written: %v", err)
	}

	manager.RefreshCache()
	loaded, err := manager.LoadConfig("saved")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if len(loaded.Layout) != 3 || loaded.Layout[1] != "X56" {
		t.Errorf("round-tripped layout = %v", loaded.Layout)
	}

	invalid := &engine.GridConfig{Name: "Bad", Layout: []string{"1", "22"}}
	if err := manager.SaveConfig("bad", invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
		t.Error("invalid preset should not be written")
	}

	if err := manager.SetDefault("saved"); err != nil {
		t.Fatalf("SetDefault() error: %v", err)
	}
	if id, _ := manager.GetDefault(); id != "saved" {
		t.Errorf("default id = %s, want saved", id)
	}
}

func TestConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "shared", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("shared"); err != nil {
				t.Errorf("LoadConfig() error: %v", err)
			}
		}()
	}
	wg.Wait()
}
