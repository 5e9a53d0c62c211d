// Package mcp exposes the Greedy Gnomes solver to AI agents over the
// Model Context Protocol.
//
// The client is a thin proxy: every tool call becomes one or two REST
// requests against a running API server, and the JSON responses are
// rendered as plain text, with solved paths drawn over the grid.
//
// MCP Tools:
//   - create_session, get_session, list_sessions, delete_session
//   - solve, compare, solve_layout, solve_history
//   - describe_cell
//   - list_configs, list_algorithms, solver_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
