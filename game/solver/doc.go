// Package solver implements the two searches for the greedy gnomes problem.
//
// Both searches take a read-only *engine.Grid and return the monotone
// right/down path from the origin that collects the most gold.
//
//   - Exhaustive enumerates every bitstring of every length up to
//     rows+columns-2. It is exponential and serves as the reference answer
//     for small grids.
//   - DynamicProgramming fills a best-path table in row-major order and runs
//     in O(rows·columns).
//
// Neither search mutates the grid, so a grid may be handed to several
// searches running concurrently. Each candidate or table entry owns its own
// path; branching always goes through engine.Path.Clone.
//
// Usage:
//
//	grid, _ := engine.NewGoldGrid([][]int{{2, 3}, {1, 5}})
//
//	best, err := solver.DynamicProgramming(grid, solver.DefaultDynProgOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(best.TotalGold(), best.StepNames()) // 10 [right down]
//
//	agreement, _ := solver.Agree(grid, solver.DefaultExhaustiveOptions(), solver.DefaultDynProgOptions())
//	fmt.Println(agreement.Agree) // true
//
// Variants:
//
// Exhaustive supports two replacement policies (ReplaceZeroIncumbent and
// ReplaceStrict) and DynamicProgramming two gating rules (GateConventional
// and GateSpine). The spine gating only ever extends the origin, so it agrees
// with Exhaustive only on grids whose optimum lies within one step of the
// origin. Solve dispatches on the registered Algorithm names.
package solver
