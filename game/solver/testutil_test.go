package solver_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
)

func mustLayout(t testing.TB, layout ...string) *engine.Grid {
	t.Helper()
	grid, err := engine.ParseLayout(layout)
	require.NoError(t, err)
	return grid
}

// randomGrid builds a rows x cols grid with gold 0..9 and roughly obstaclePct
// percent obstacles. The origin is never blocked.
func randomGrid(t testing.TB, rng *rand.Rand, rows, cols, obstaclePct int) *engine.Grid {
	t.Helper()
	cells := make([][]engine.Cell, rows)
	for i := range cells {
		cells[i] = make([]engine.Cell, cols)
		for j := range cells[i] {
			if (i != 0 || j != 0) && rng.Intn(100) < obstaclePct {
				cells[i][j] = engine.Obstacle()
				continue
			}
			cells[i][j] = engine.Gold(rng.Intn(10))
		}
	}
	grid, err := engine.NewGrid(cells)
	require.NoError(t, err)
	return grid
}
