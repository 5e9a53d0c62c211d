package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGridConfig validates a grid configuration for correctness
func ValidateGridConfig(config *GridConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if len(config.Layout) == 0 {
		return fmt.Errorf("config validation: layout must have at least one row")
	}
	if len(config.Layout) > MaxLayoutRows {
		return fmt.Errorf("config validation: layout must have at most %d rows, got %d", MaxLayoutRows, len(config.Layout))
	}

	width := len(config.Layout[0])
	if width == 0 {
		return fmt.Errorf("config validation: layout rows must not be empty")
	}
	if width > MaxLayoutColumns {
		return fmt.Errorf("config validation: layout must have at most %d columns, got %d", MaxLayoutColumns, width)
	}

	for i, row := range config.Layout {
		if len(row) != width {
			return fmt.Errorf("config validation: row %d must have %d characters, got %d", i+1, width, len(row))
		}
		for j, char := range row {
			switch {
			case char == ObstacleChar, char == EmptyChar, char >= '0' && char <= '9':
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}

	if config.Layout[0][0] == ObstacleChar {
		return fmt.Errorf("config validation: origin (row 1, col 1) must not be an obstacle")
	}

	return nil
}

// GridFromConfig validates config and builds its grid
func GridFromConfig(config *GridConfig) (*Grid, error) {
	if err := ValidateGridConfig(config); err != nil {
		return nil, err
	}
	return ParseLayout(config.Layout)
}

// LoadGridConfig loads and validates a grid configuration from a JSON file
func LoadGridConfig(filename string) (*GridConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GridConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGridConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
