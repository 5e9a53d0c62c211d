package engine

import "fmt"

// Path is a monotone right/down walk that starts at the origin (0,0).
// It tracks the steps taken, the cells visited and the gold collected so far.
// Appending a step is only allowed after IsStepValid confirms it.
type Path struct {
	grid  *Grid
	steps []Step
	cells []Position
	gold  int
}

// NewPath creates a zero-length path standing on the origin of grid
func NewPath(grid *Grid) *Path {
	return &Path{
		grid:  grid,
		steps: []Step{},
		cells: []Position{{Row: 0, Col: 0}},
		gold:  grid.Get(0, 0).Gold,
	}
}

// End returns the cell the path currently ends on
func (p *Path) End() Position {
	return p.cells[len(p.cells)-1]
}

// IsStepValid reports whether appending step keeps the path in bounds and off obstacles
func (p *Path) IsStepValid(step Step) bool {
	if step != StepRight && step != StepDown {
		return false
	}
	next := p.End().Apply(step)
	return p.grid.IsPassable(next.Row, next.Col)
}

// AddStep appends step to the path. It panics if the step is invalid;
// callers must check IsStepValid first.
func (p *Path) AddStep(step Step) {
	if !p.IsStepValid(step) {
		from := p.End()
		panic(fmt.Sprintf("engine: invalid step %s from (%d,%d)", step, from.Row, from.Col))
	}

	next := p.End().Apply(step)
	p.steps = append(p.steps, step)
	p.cells = append(p.cells, next)
	p.gold += p.grid.Get(next.Row, next.Col).Gold
}

// TotalGold returns the gold collected over all visited cells
func (p *Path) TotalGold() int {
	return p.gold
}

// Steps returns a copy of the step history
func (p *Path) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Cells returns a copy of the visited cells, starting with the origin
func (p *Path) Cells() []Position {
	out := make([]Position, len(p.cells))
	copy(out, p.cells)
	return out
}

// Len returns the number of steps taken
func (p *Path) Len() int {
	return len(p.steps)
}

// Grid returns the grid the path walks on
func (p *Path) Grid() *Grid {
	return p.grid
}

// Clone returns an independent copy; appending to the clone never affects p
func (p *Path) Clone() *Path {
	c := &Path{
		grid:  p.grid,
		steps: make([]Step, len(p.steps), len(p.steps)+1),
		cells: make([]Position, len(p.cells), len(p.cells)+1),
		gold:  p.gold,
	}
	copy(c.steps, p.steps)
	copy(c.cells, p.cells)
	return c
}

// StepNames returns the steps as plain strings, handy for JSON responses
func (p *Path) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = string(s)
	}
	return names
}
