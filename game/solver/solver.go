package solver

import (
	"fmt"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
)

// Algorithm names a registered search.
type Algorithm string

const (
	AlgExhaustive       Algorithm = "exhaustive"
	AlgExhaustiveStrict Algorithm = "exhaustive-strict"
	AlgDynProg          Algorithm = "dynprog"
	AlgDynProgSpine     Algorithm = "dynprog-spine"
)

// Limits bounds the work a registered search may do.
type Limits struct {
	// MaxExhaustiveSteps caps rows+columns-2 for the exhaustive searches. Zero means no cap.
	MaxExhaustiveSteps int
}

// AlgorithmInfo describes a registered search.
type AlgorithmInfo struct {
	Name        Algorithm `json:"name"`
	Description string    `json:"description"`
	Exponential bool      `json:"exponential"`
}

var registry = []AlgorithmInfo{
	{AlgExhaustive, "Enumerate every step bitstring; a zero-gold incumbent is always replaced", true},
	{AlgExhaustiveStrict, "Enumerate every step bitstring; replace only on strictly more gold", true},
	{AlgDynProg, "Row-major best-path table extending any reachable predecessor", false},
	{AlgDynProgSpine, "Row-major best-path table extending only trivial single-cell predecessors", false},
}

// Algorithms lists the registered searches in a stable order
func Algorithms() []AlgorithmInfo {
	out := make([]AlgorithmInfo, len(registry))
	copy(out, registry)
	return out
}

// ParseAlgorithm validates an algorithm name. An empty name selects dynprog.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return AlgDynProg, nil
	}
	for _, info := range registry {
		if string(info.Name) == name {
			return info.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Solve runs the named search on grid
func Solve(alg Algorithm, grid *engine.Grid, limits Limits) (*engine.Path, error) {
	switch alg {
	case AlgExhaustive:
		return Exhaustive(grid, ExhaustiveOptions{Replacement: ReplaceZeroIncumbent, MaxSteps: limits.MaxExhaustiveSteps})
	case AlgExhaustiveStrict:
		return Exhaustive(grid, ExhaustiveOptions{Replacement: ReplaceStrict, MaxSteps: limits.MaxExhaustiveSteps})
	case AlgDynProg:
		return DynamicProgramming(grid, DynProgOptions{Gating: GateConventional})
	case AlgDynProgSpine:
		return DynamicProgramming(grid, DynProgOptions{Gating: GateSpine})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
}
