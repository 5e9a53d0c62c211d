package engine

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyGrid      = errors.New("engine: grid must have at least one row and one column")
	ErrNonRectangular = errors.New("engine: all grid rows must have the same length")
	ErrNegativeGold   = errors.New("engine: gold amounts must be non-negative")
	ErrOriginBlocked  = errors.New("engine: origin cell (0,0) must not be an obstacle")
)

// Grid is an immutable rows x columns table of cells.
// Grids are never mutated after construction, so one grid may be shared by
// any number of concurrent searches.
type Grid struct {
	cells [][]Cell
	rows  int
	cols  int
}

// NewGrid builds a grid from a rectangular table of cells. The input is deep-copied.
func NewGrid(cells [][]Cell) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	rows, cols := len(cells), len(cells[0])

	copied := make([][]Cell, rows)
	for i, row := range cells {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrNonRectangular, i, len(row), cols)
		}
		for j, cell := range row {
			if !cell.Obstacle && cell.Gold < 0 {
				return nil, fmt.Errorf("%w: cell (%d,%d) has %d", ErrNegativeGold, i, j, cell.Gold)
			}
		}
		copied[i] = make([]Cell, cols)
		copy(copied[i], row)
	}

	if copied[0][0].Obstacle {
		return nil, ErrOriginBlocked
	}

	return &Grid{cells: copied, rows: rows, cols: cols}, nil
}

// NewGoldGrid builds an obstacle-free grid from gold amounts
func NewGoldGrid(amounts [][]int) (*Grid, error) {
	cells := make([][]Cell, len(amounts))
	for i, row := range amounts {
		cells[i] = make([]Cell, len(row))
		for j, amount := range row {
			cells[i][j] = Gold(amount)
		}
	}
	return NewGrid(cells)
}

// ParseLayout builds a grid from layout rows where 'X' is an obstacle,
// '.' is an empty cell and a digit is a gold amount.
func ParseLayout(layout []string) (*Grid, error) {
	if len(layout) == 0 {
		return nil, ErrEmptyGrid
	}

	cells := make([][]Cell, len(layout))
	for i, row := range layout {
		cells[i] = make([]Cell, 0, len(row))
		for j, char := range row {
			switch {
			case char == ObstacleChar:
				cells[i] = append(cells[i], Obstacle())
			case char == EmptyChar:
				cells[i] = append(cells[i], Gold(0))
			case char >= '0' && char <= '9':
				cells[i] = append(cells[i], Gold(int(char-'0')))
			default:
				return nil, fmt.Errorf("engine: invalid layout character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}

	return NewGrid(cells)
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return g.rows
}

// Columns returns the number of columns
func (g *Grid) Columns() int {
	return g.cols
}

// Get returns the cell at (row, col). It panics when the position is out of bounds.
func (g *Grid) Get(row, col int) Cell {
	return g.cells[row][col]
}

// InBounds reports whether (row, col) lies inside the grid
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// IsPassable reports whether a path may enter (row, col)
func (g *Grid) IsPassable(row, col int) bool {
	return g.InBounds(row, col) && !g.cells[row][col].Obstacle
}

// MaxSteps is the length of the longest possible monotone path: rows-1 downs plus columns-1 rights
func (g *Grid) MaxSteps() int {
	return g.rows + g.cols - 2
}

// Layout renders the grid back into layout rows.
// Gold amounts above 9 cannot be expressed and are clamped to '9'.
func (g *Grid) Layout() []string {
	layout := make([]string, g.rows)
	for i, row := range g.cells {
		buf := make([]byte, g.cols)
		for j, cell := range row {
			buf[j] = cellChar(cell)
		}
		layout[i] = string(buf)
	}
	return layout
}

func cellChar(c Cell) byte {
	switch {
	case c.Obstacle:
		return ObstacleChar
	case c.Gold == 0:
		return EmptyChar
	case c.Gold > 9:
		return '9'
	}
	return byte('0' + c.Gold)
}

// CellChar returns the layout character for the cell at (row, col)
func (g *Grid) CellChar(row, col int) string {
	return string(cellChar(g.cells[row][col]))
}
