package solver

import (
	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
)

// Gating decides which best-path table entries may be extended to a neighbour.
type Gating int

const (
	// GateConventional extends any entry that some path reaches.
	GateConventional Gating = iota
	// GateSpine extends only trivial single-cell entries: the origin may be
	// extended once, and every entry produced that way is final.
	GateSpine
)

// entryState tags a best-path table entry.
type entryState int

const (
	stateEmpty entryState = iota
	stateExtendable
	stateFinal
)

// entry is one cell of the best-path table. Only the last step of the best
// path is stored; the full path is rebuilt by following from back to the origin.
type entry struct {
	state entryState
	gold  int
	from  engine.Step
}

// table is the rows x columns best-path table.
type table [][]entry

// pathTo rebuilds the best path ending at (i,j). The entry must not be empty.
func (t table) pathTo(grid *engine.Grid, i, j int) *engine.Path {
	steps := make([]engine.Step, 0, i+j)
	for i > 0 || j > 0 {
		step := t[i][j].from
		steps = append(steps, step)
		if step == engine.StepDown {
			i--
		} else {
			j--
		}
	}

	path := engine.NewPath(grid)
	for k := len(steps) - 1; k >= 0; k-- {
		path.AddStep(steps[k])
	}
	return path
}

// DynProgOptions configures DynamicProgramming.
type DynProgOptions struct {
	Gating Gating
	// Trace, when set, receives every table entry as soon as it is recorded.
	// Unreachable entries are reported with a nil path. Each reported path is
	// rebuilt for the call and is owned by the receiver.
	Trace func(row, col int, path *engine.Path)
}

// DefaultDynProgOptions returns conventional gating without tracing.
func DefaultDynProgOptions() DynProgOptions {
	return DynProgOptions{Gating: GateConventional}
}

// DynamicProgramming finds the best path by filling a rows x columns table in
// row-major order. Entry (i,j) records the best gold of a path ending exactly
// at (i,j), taken from the better of the entries above and to the left.
//
// Complexity: O(rows·columns) time and space, plus O(rows+columns) to rebuild
// the winning path.
func DynamicProgramming(grid *engine.Grid, opts DynProgOptions) (*engine.Path, error) {
	if grid == nil {
		return nil, ErrNilGrid
	}

	t := fill(grid, opts)

	bestRow, bestCol := 0, 0
	for i := range t {
		for j := range t[i] {
			if t[i][j].state != stateEmpty && t[i][j].gold > t[bestRow][bestCol].gold {
				bestRow, bestCol = i, j
			}
		}
	}
	return t.pathTo(grid, bestRow, bestCol), nil
}

// BestPathTo returns the best path ending exactly at (row, col), or nil when
// no path reaches that cell.
func BestPathTo(grid *engine.Grid, row, col int, opts DynProgOptions) (*engine.Path, error) {
	if grid == nil {
		return nil, ErrNilGrid
	}
	if !grid.InBounds(row, col) {
		return nil, nil
	}

	t := fill(grid, opts)
	if t[row][col].state == stateEmpty {
		return nil, nil
	}
	return t.pathTo(grid, row, col), nil
}

func fill(grid *engine.Grid, opts DynProgOptions) table {
	rows, cols := grid.Rows(), grid.Columns()
	t := make(table, rows)
	for i := range t {
		t[i] = make([]entry, cols)
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			t[i][j] = resolveEntry(grid, t, i, j, opts.Gating)
			if opts.Trace != nil {
				var path *engine.Path
				if t[i][j].state != stateEmpty {
					path = t.pathTo(grid, i, j)
				}
				opts.Trace(i, j, path)
			}
		}
	}
	return t
}

// resolveEntry computes t[i][j] from its already-resolved predecessors.
// Ties go to the entry on the left.
func resolveEntry(grid *engine.Grid, t table, i, j int, gating Gating) entry {
	cell := grid.Get(i, j)
	if cell.Obstacle {
		return entry{state: stateEmpty}
	}
	if i == 0 && j == 0 {
		return entry{state: stateExtendable, gold: cell.Gold}
	}

	aboveOK := i > 0 && extendable(t[i-1][j], gating)
	leftOK := j > 0 && extendable(t[i][j-1], gating)

	var chosen entry
	switch {
	case leftOK && (!aboveOK || t[i][j-1].gold >= t[i-1][j].gold):
		chosen = entry{gold: t[i][j-1].gold + cell.Gold, from: engine.StepRight}
	case aboveOK:
		chosen = entry{gold: t[i-1][j].gold + cell.Gold, from: engine.StepDown}
	default:
		return entry{state: stateEmpty}
	}

	chosen.state = stateExtendable
	if gating == GateSpine {
		chosen.state = stateFinal
	}
	return chosen
}

// extendable reports whether prev may be extended by one step. The target
// cell is checked by the caller.
func extendable(prev entry, gating Gating) bool {
	switch prev.state {
	case stateEmpty:
		return false
	case stateFinal:
		return gating != GateSpine
	}
	return true
}
