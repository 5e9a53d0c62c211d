package engine

// Step is a single monotone move on the grid
type Step string

const (
	StepRight Step = "right"
	StepDown  Step = "down"
)

// Layout characters used by grid configurations
const (
	ObstacleChar = 'X'
	EmptyChar    = '.'

	// Validation constants
	MaxLayoutRows    = 64
	MaxLayoutColumns = 64
)

// Cell is one grid cell: either an obstacle or a non-negative gold amount
type Cell struct {
	Obstacle bool `json:"obstacle,omitempty"`
	Gold     int  `json:"gold"`
}

// Gold returns a passable cell holding amount gold
func Gold(amount int) Cell {
	return Cell{Gold: amount}
}

// Obstacle returns a blocked cell
func Obstacle() Cell {
	return Cell{Obstacle: true}
}

// Position is a 0-based (row, column) coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Apply returns the position reached by taking step from p
func (p Position) Apply(step Step) Position {
	switch step {
	case StepRight:
		return Position{Row: p.Row, Col: p.Col + 1}
	case StepDown:
		return Position{Row: p.Row + 1, Col: p.Col}
	}
	return p
}

// ParseStep converts a direction name into a Step
func ParseStep(s string) (Step, bool) {
	switch Step(s) {
	case StepRight, StepDown:
		return Step(s), true
	}
	return "", false
}

// GridConfig represents a named grid preset loaded from JSON
type GridConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Layout      []string `json:"layout"`
}
