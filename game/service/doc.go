// Package service provides the business logic layer for the greedy gnomes solver.
//
// The service package implements:
//   - Sessions that bind a grid preset or ad-hoc layout to a solve history
//   - Running the registered searches and verifying the paths they return
//   - Concurrent comparison of two searches on one grid
//   - Paginated solve history and per-cell descriptions
//
// Core Interfaces:
//
// SolverService is the main service interface used by every transport.
// SessionManager stores sessions; ConfigManager loads grid presets.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewSolverService(sessionMgr, configMgr, solver.Limits{MaxExhaustiveSteps: 20}, logger)
//
//	info, err := svc.CreateSession(ctx, "example")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := svc.Solve(ctx, info.ID, "dynprog")
//
// Grids are immutable, so searches on the same session may run concurrently.
// A session's history and access time are guarded by the session itself.
package service
