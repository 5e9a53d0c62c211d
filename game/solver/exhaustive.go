package solver

import (
	"fmt"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
)

// maxEnumerationSteps bounds bitstring lengths to what a uint64 counter can enumerate.
const maxEnumerationSteps = 64

// Replacement decides when a candidate path replaces the incumbent best.
type Replacement int

const (
	// ReplaceZeroIncumbent replaces on strictly greater gold, or whenever the
	// incumbent holds exactly zero gold.
	ReplaceZeroIncumbent Replacement = iota
	// ReplaceStrict replaces only on strictly greater gold.
	ReplaceStrict
)

// ExhaustiveOptions configures Exhaustive.
type ExhaustiveOptions struct {
	// Replacement selects the best-path replacement policy.
	Replacement Replacement
	// MaxSteps rejects grids whose rows+columns-2 exceeds it. Zero disables the check.
	MaxSteps int
}

// DefaultExhaustiveOptions returns the reference behaviour with no step limit.
func DefaultExhaustiveOptions() ExhaustiveOptions {
	return ExhaustiveOptions{Replacement: ReplaceZeroIncumbent}
}

// Exhaustive finds the best path by enumerating every step bitstring.
//
// For every length 0..rows+columns-2 and every bitstring of that length, bit k
// selects the k-th step (1 = right, 0 = down). Steps that would leave the grid
// or land on an obstacle are skipped and the remaining bits are still applied,
// so many bitstrings collapse onto the same shorter path.
//
// Complexity: O(2^n · n) for n = rows+columns-2.
func Exhaustive(grid *engine.Grid, opts ExhaustiveOptions) (*engine.Path, error) {
	if grid == nil {
		return nil, ErrNilGrid
	}

	maxSteps := grid.MaxSteps()
	if maxSteps >= maxEnumerationSteps {
		return nil, fmt.Errorf("%w: %d steps", ErrEnumerationOverflow, maxSteps)
	}
	if opts.MaxSteps > 0 && maxSteps > opts.MaxSteps {
		return nil, fmt.Errorf("%w: %d steps, limit %d", ErrTooManySteps, maxSteps, opts.MaxSteps)
	}

	best := engine.NewPath(grid)
	for length := 0; length <= maxSteps; length++ {
		count := uint64(1) << uint(length)
		for bits := uint64(0); bits < count; bits++ {
			candidate := foldBits(grid, bits, length)
			if opts.replaces(best, candidate) {
				best = candidate
			}
		}
	}

	return best, nil
}

// foldBits builds the path encoded by the low length bits, dropping invalid steps.
func foldBits(grid *engine.Grid, bits uint64, length int) *engine.Path {
	path := engine.NewPath(grid)
	for k := 0; k < length; k++ {
		step := engine.StepDown
		if (bits>>uint(k))&1 == 1 {
			step = engine.StepRight
		}
		if path.IsStepValid(step) {
			path.AddStep(step)
		}
	}
	return path
}

func (o ExhaustiveOptions) replaces(incumbent, candidate *engine.Path) bool {
	if candidate.TotalGold() > incumbent.TotalGold() {
		return true
	}
	return o.Replacement == ReplaceZeroIncumbent && incumbent.TotalGold() == 0
}
