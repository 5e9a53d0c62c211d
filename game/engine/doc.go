// Package engine provides the grid and path model for the greedy gnomes problem.
//
// A Grid is an immutable table of cells, each either an obstacle or a
// non-negative amount of gold. A Path is a monotone walk from the top-left
// cell that only ever moves right or down; it caches the visited cells and
// the gold collected along them.
//
// Core Types:
//
// Grid is built with NewGrid, NewGoldGrid or ParseLayout and is never
// modified afterwards, so it can be shared across goroutines. Path offers
// IsStepValid and AddStep; a step must always be checked before it is added.
// GridConfig is the JSON form of a named grid preset.
//
// Usage:
//
//	grid, err := engine.ParseLayout([]string{
//		"23",
//		"15",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	path := engine.NewPath(grid)
//	if path.IsStepValid(engine.StepRight) {
//		path.AddStep(engine.StepRight)
//	}
//	fmt.Println(path.TotalGold()) // 5
//
// Layout Format:
//
// Each layout row is a string with one character per cell: 'X' marks an
// obstacle, '.' an empty cell and a digit '0'-'9' the gold amount. The
// origin cell must never be an obstacle.
package engine
