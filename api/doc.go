// Package api provides HTTP REST API handlers for the Greedy Gnomes solver.
//
// The api package implements:
//   - Session management endpoints
//   - Solve, compare and history endpoints
//   - Per-cell inspection backed by the dynamic programming table
//   - Configuration listing and creation
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create session ({"config_id"} or {"name","layout"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Searches:
//   - POST /api/sessions/{id}/solve - Run one algorithm ({"algorithm"})
//   - POST /api/sessions/{id}/compare - Run two algorithms ({"baseline","candidate"})
//   - GET /api/sessions/{id}/results - Solve history (?page&limit&order)
//   - GET /api/sessions/{id}/cells/{row}/{col} - Best path ending on a cell
//   - POST /api/solve - Stateless solve of a layout ({"layout","algorithm"})
//   - GET /api/algorithms - Registered algorithms
//
// Configuration:
//   - GET /api/configs - List grid presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs - Save a preset
//
// Errors are returned as JSON with an HTTP status derived from the
// service error: 404 for unknown sessions, presets and cells, 400 for
// malformed requests and invalid layouts, 422 for grids too large for
// the requested search.
//
//	{"error": "session not found: ab12"}
//
// Usage:
//
//	server := api.NewServer(svc, hub, log)
//	http.ListenAndServe(":8080", server)
package api
