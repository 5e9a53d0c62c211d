// Command crosscheck runs the exhaustive and table searches side by side on
// every preset in a configs directory, plus optional random grids, and fails
// when they disagree on the best gold or either returns an invalid path.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
)

var errDisagreement = errors.New("searches disagree")

// job is one grid to cross-check
type job struct {
	Name string
	Grid *engine.Grid
}

// outcome is the result of cross-checking one grid
type outcome struct {
	Name           string
	Skipped        bool
	ExhaustiveGold int
	DynProgGold    int
	SpineGold      int
	Agree          bool
	Err            error
}

// Options configures a run
type Options struct {
	MaxSteps int
	Spine    bool
	Workers  int
}

// loadPresets reads every *.json preset in dir
func loadPresets(dir string) ([]job, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	jobs := make([]job, 0, len(files))
	for _, file := range files {
		config, err := engine.LoadGridConfig(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		grid, err := engine.ParseLayout(config.Layout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		jobs = append(jobs, job{Name: strings.TrimSuffix(filepath.Base(file), ".json"), Grid: grid})
	}
	return jobs, nil
}

// randomGrids generates n grids of the given shape. Each non-origin cell is an
// obstacle with probability density, otherwise it holds 0-9 gold.
func randomGrids(n, rows, cols int, density float64, seed uint64) ([]job, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	jobs := make([]job, 0, n)
	for k := 0; k < n; k++ {
		cells := make([][]engine.Cell, rows)
		for i := range cells {
			cells[i] = make([]engine.Cell, cols)
			for j := range cells[i] {
				if (i != 0 || j != 0) && rng.Float64() < density {
					cells[i][j] = engine.Obstacle()
				} else {
					cells[i][j] = engine.Gold(rng.IntN(10))
				}
			}
		}
		grid, err := engine.NewGrid(cells)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{Name: fmt.Sprintf("random-%d", k+1), Grid: grid})
	}
	return jobs, nil
}

// check cross-checks a single grid
func check(j job, opts Options) outcome {
	out := outcome{Name: j.Name}
	if opts.MaxSteps > 0 && j.Grid.MaxSteps() > opts.MaxSteps {
		out.Skipped = true
		return out
	}

	agreement, err := solver.Agree(j.Grid, solver.DefaultExhaustiveOptions(), solver.DefaultDynProgOptions())
	if err != nil {
		out.Err = err
		return out
	}
	for _, p := range []*engine.Path{agreement.Exhaustive, agreement.DynProg} {
		if err := solver.VerifyPath(j.Grid, p); err != nil {
			out.Err = err
			return out
		}
	}
	out.ExhaustiveGold = agreement.Exhaustive.TotalGold()
	out.DynProgGold = agreement.DynProg.TotalGold()
	out.Agree = agreement.Agree

	if opts.Spine {
		spine, err := solver.DynamicProgramming(j.Grid, solver.DynProgOptions{Gating: solver.GateSpine})
		if err != nil {
			out.Err = err
			return out
		}
		out.SpineGold = spine.TotalGold()
	}
	return out
}

// run cross-checks jobs concurrently, preserving their order in the result
func run(ctx context.Context, jobs []job, opts Options) ([]outcome, error) {
	outcomes := make([]outcome, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = check(j, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// summarize prints outcomes and returns errDisagreement if any check failed
func summarize(w io.Writer, outcomes []outcome, opts Options) error {
	failed, skipped, spineGaps := 0, 0, 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(w, "❌ %-16s error: %v\n", o.Name, o.Err)
		case o.Skipped:
			skipped++
			fmt.Fprintf(w, "-  %-16s skipped: over the %d step limit\n", o.Name, opts.MaxSteps)
		case !o.Agree:
			failed++
			fmt.Fprintf(w, "❌ %-16s exhaustive %d, dynprog %d\n", o.Name, o.ExhaustiveGold, o.DynProgGold)
		default:
			line := fmt.Sprintf("✅ %-16s %d gold", o.Name, o.DynProgGold)
			if opts.Spine && o.SpineGold != o.DynProgGold {
				spineGaps++
				line += fmt.Sprintf(" (spine gating finds %d)", o.SpineGold)
			}
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "\n%d checked, %d skipped, %d failed", len(outcomes)-skipped, skipped, failed)
	if opts.Spine {
		fmt.Fprintf(w, ", %d spine gaps", spineGaps)
	}
	fmt.Fprintln(w)

	if failed > 0 {
		return fmt.Errorf("%w on %d grids", errDisagreement, failed)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "crosscheck",
		Usage: "verify that the exhaustive and table searches agree",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "directory of grid presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:    "max-exhaustive-steps",
				Value:   20,
				Usage:   "skip grids whose walks take more steps (0 for no limit)",
				Sources: cli.EnvVars("GNOMES_MAX_EXHAUSTIVE_STEPS"),
			},
			&cli.BoolFlag{Name: "spine", Usage: "also report where spine gating falls short"},
			&cli.IntFlag{Name: "random", Usage: "number of random grids to add"},
			&cli.IntFlag{Name: "rows", Value: 5, Usage: "rows of each random grid"},
			&cli.IntFlag{Name: "cols", Value: 5, Usage: "columns of each random grid"},
			&cli.FloatFlag{Name: "density", Value: 0.2, Usage: "obstacle probability in random grids"},
			&cli.UintFlag{Name: "seed", Value: 1, Usage: "random grid seed"},
			&cli.IntFlag{Name: "workers", Value: runtime.NumCPU(), Usage: "concurrent checks"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := Options{
				MaxSteps: int(cmd.Int("max-exhaustive-steps")),
				Spine:    cmd.Bool("spine"),
				Workers:  int(cmd.Int("workers")),
			}

			var jobs []job
			if dir := cmd.String("dir"); dir != "" {
				presets, err := loadPresets(dir)
				if err != nil {
					return err
				}
				jobs = append(jobs, presets...)
			}
			if n := int(cmd.Int("random")); n > 0 {
				rows, cols := int(cmd.Int("rows")), int(cmd.Int("cols"))
				if rows < 1 || cols < 1 {
					return fmt.Errorf("random grids need at least one row and column, got %dx%d", rows, cols)
				}
				random, err := randomGrids(n, rows, cols, cmd.Float("density"), uint64(cmd.Uint("seed")))
				if err != nil {
					return err
				}
				jobs = append(jobs, random...)
			}
			if len(jobs) == 0 {
				return errors.New("nothing to check: no presets found and --random not set")
			}

			outcomes, err := run(ctx, jobs, opts)
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			return summarize(w, outcomes, opts)
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
