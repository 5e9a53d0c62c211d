// Command validate checks the grid preset JSON files in a configs directory.
// For every file it checks:
//   - JSON structure and the required name
//   - Layout shape, size limits and allowed characters (0-9, '.', 'X')
//   - That the origin is not an obstacle
//
// and reports, for valid presets, the reachable area, gold that no walk can
// collect, the best gold found by the table search, and whether the
// exhaustive search fits under the step limit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
)

var errInvalidPresets = errors.New("some configurations have errors")

// ValidationResult captures the outcome of validating a single file.
// Errors make the preset invalid; Notes are informational.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string, maxExhaustiveSteps int) ValidationResult {
	result := ValidationResult{File: filepath.Base(filePath), Valid: true}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GridConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	grid, err := engine.GridFromConfig(&config)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	analyzeGrid(&result, &config, grid, maxExhaustiveSteps)
	return result
}

// analyzeGrid adds the informational notes for a valid preset
func analyzeGrid(result *ValidationResult, config *engine.GridConfig, grid *engine.Grid, maxExhaustiveSteps int) {
	result.note("Name: %s", config.Name)
	result.note("Grid: %dx%d, %d steps per full walk", grid.Rows(), grid.Columns(), grid.MaxSteps())
	result.note("Obstacles: %d", engine.CountObstacles(grid))
	result.note("Reachable cells: %d", engine.CountReachable(grid))

	stranded := strandedGold(grid)
	if stranded > 0 {
		result.note("Unreachable gold: %d of %d", stranded, engine.TotalGold(grid))
	} else {
		result.note("Gold: %d, all reachable", engine.TotalGold(grid))
	}

	best, err := solver.DynamicProgramming(grid, solver.DefaultDynProgOptions())
	if err != nil {
		result.fail("Search failed: %v", err)
		return
	}
	result.note("Best gold: %d (%s)", best.TotalGold(), strings.Join(best.StepNames(), " "))

	switch {
	case maxExhaustiveSteps > 0 && grid.MaxSteps() > maxExhaustiveSteps:
		result.note("Exhaustive search: over the %d step limit", maxExhaustiveSteps)
	case grid.MaxSteps() >= 64:
		result.note("Exhaustive search: too many steps to enumerate")
	default:
		result.note("Exhaustive search: %d bitstrings", uint64(1)<<uint(grid.MaxSteps()))
	}
}

// strandedGold sums the gold on passable cells no monotone walk reaches
func strandedGold(grid *engine.Grid) int {
	stranded := 0
	solver.DynamicProgramming(grid, solver.DynProgOptions{
		Gating: solver.GateConventional,
		Trace: func(row, col int, path *engine.Path) {
			if path == nil && !grid.Get(row, col).Obstacle {
				stranded += grid.Get(row, col).Gold
			}
		},
	})
	return stranded
}

// report prints one result and returns whether it was valid
func report(w io.Writer, result ValidationResult) bool {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
		for _, n := range result.Notes {
			fmt.Fprintln(w, "  ✓ "+n)
		}
		return true
	}

	fmt.Fprintln(w, "❌ INVALID")
	for _, e := range result.Errors {
		fmt.Fprintln(w, "  ❌ "+e)
	}
	return false
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check grid preset files",
		ArgsUsage: "[file.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "directory scanned for *.json when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "max-exhaustive-steps",
				Value: 20,
				Usage: "step limit used to report exhaustive feasibility (0 for none)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("dir"), "*.json"))
				if err != nil {
					return fmt.Errorf("error finding config files: %w", err)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found in %s", cmd.String("dir"))
			}

			w := cmd.Root().Writer
			if w == nil {
				w = os.Stdout
			}

			allValid := true
			for _, file := range files {
				if !report(w, validateConfig(file, int(cmd.Int("max-exhaustive-steps")))) {
					allValid = false
				}
			}

			fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
			if !allValid {
				fmt.Fprintln(w, "❌ Some configurations have errors")
				return errInvalidPresets
			}
			fmt.Fprintln(w, "✅ All configurations are valid!")
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
