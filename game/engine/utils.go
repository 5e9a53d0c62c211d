package engine

// TotalGold sums the gold of every passable cell in the grid
func TotalGold(grid *Grid) int {
	total := 0
	for i := 0; i < grid.Rows(); i++ {
		for j := 0; j < grid.Columns(); j++ {
			if cell := grid.Get(i, j); !cell.Obstacle {
				total += cell.Gold
			}
		}
	}
	return total
}

// CountObstacles counts the blocked cells in the grid
func CountObstacles(grid *Grid) int {
	count := 0
	for i := 0; i < grid.Rows(); i++ {
		for j := 0; j < grid.Columns(); j++ {
			if grid.Get(i, j).Obstacle {
				count++
			}
		}
	}
	return count
}

// CountReachable counts the cells a monotone path from the origin can end on
func CountReachable(grid *Grid) int {
	rows, cols := grid.Rows(), grid.Columns()
	reach := make([][]bool, rows)
	for i := range reach {
		reach[i] = make([]bool, cols)
	}

	count := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if grid.Get(i, j).Obstacle {
				continue
			}
			if i == 0 && j == 0 {
				reach[i][j] = true
			}
			if i > 0 && reach[i-1][j] {
				reach[i][j] = true
			}
			if j > 0 && reach[i][j-1] {
				reach[i][j] = true
			}
			if reach[i][j] {
				count++
			}
		}
	}
	return count
}
