package solver

import (
	"fmt"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
)

// VerifyPath checks that path is a valid monotone walk on grid: it starts at
// the origin, every cell is in bounds and passable, every step advances
// row+column by exactly one, and its cached gold matches the visited cells.
func VerifyPath(grid *engine.Grid, path *engine.Path) error {
	if grid == nil {
		return ErrNilGrid
	}
	if path == nil {
		return fmt.Errorf("%w: path is nil", ErrInvalidPath)
	}

	cells := path.Cells()
	steps := path.Steps()
	if len(cells) != len(steps)+1 {
		return fmt.Errorf("%w: %d cells for %d steps", ErrInvalidPath, len(cells), len(steps))
	}
	if cells[0] != (engine.Position{}) {
		return fmt.Errorf("%w: starts at (%d,%d)", ErrInvalidPath, cells[0].Row, cells[0].Col)
	}

	gold := 0
	for k, cell := range cells {
		if !grid.InBounds(cell.Row, cell.Col) {
			return fmt.Errorf("%w: cell %d (%d,%d) is out of bounds", ErrInvalidPath, k, cell.Row, cell.Col)
		}
		c := grid.Get(cell.Row, cell.Col)
		if c.Obstacle {
			return fmt.Errorf("%w: cell %d (%d,%d) is an obstacle", ErrInvalidPath, k, cell.Row, cell.Col)
		}
		gold += c.Gold

		if k == 0 {
			continue
		}
		prev := cells[k-1]
		if prev.Apply(steps[k-1]) != cell {
			return fmt.Errorf("%w: step %d (%s) does not lead from (%d,%d) to (%d,%d)",
				ErrInvalidPath, k-1, steps[k-1], prev.Row, prev.Col, cell.Row, cell.Col)
		}
	}

	if gold != path.TotalGold() {
		return fmt.Errorf("%w: total gold %d, visited cells hold %d", ErrInvalidPath, path.TotalGold(), gold)
	}
	return nil
}

// Agreement reports the outcome of running both searches on one grid.
type Agreement struct {
	Exhaustive *engine.Path
	DynProg    *engine.Path
	Agree      bool
}

// Agree runs the exhaustive and dynamic-programming searches on grid and
// reports whether they found the same optimal gold.
func Agree(grid *engine.Grid, exOpts ExhaustiveOptions, dpOpts DynProgOptions) (*Agreement, error) {
	ex, err := Exhaustive(grid, exOpts)
	if err != nil {
		return nil, err
	}
	dp, err := DynamicProgramming(grid, dpOpts)
	if err != nil {
		return nil, err
	}

	return &Agreement{
		Exhaustive: ex,
		DynProg:    dp,
		Agree:      ex.TotalGold() == dp.TotalGold(),
	}, nil
}
