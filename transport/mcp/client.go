package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/service"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Greedy Gnomes",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Greedy Gnomes - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Find the monotone path (right and down moves only) from the top-left cell that
collects the most gold. Obstacles (X) cannot be entered. The path may stop anywhere.

AVAILABLE TOOLS:
- create_session: Create a session from a preset or an ad-hoc layout
- get_session / list_sessions / delete_session: Manage sessions
- solve: Run one algorithm on a session grid
- compare: Run two algorithms concurrently and report whether they agree
- solve_layout: Solve a layout without creating a session
- solve_history: Page through a session's past results
- describe_cell: Best path that ends on a given cell
- list_configs / list_algorithms: Discover presets and algorithms
- solver_instructions: Rules, layout format and algorithm notes`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
	algorithm := mcp.WithString("algorithm",
		mcp.Description("Algorithm name (default dynprog)"),
		mcp.Enum(algorithmNames()...),
	)

	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a solver session from a named preset or from an ad-hoc layout"),
		mcp.WithString("config_id", mcp.Description("Preset to use (optional, see list_configs)")),
		mcp.WithString("name", mcp.Description("Display name for an ad-hoc layout")),
		mcp.WithArray("layout",
			mcp.Description("Grid rows; each character is a digit 0-9 (gold), '.' (no gold) or 'X' (obstacle)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active solver sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details and the grid of a specific session"),
		sessionID,
	), c.handleGetSession)

	c.mcpServer.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a session and its history"),
		sessionID,
	), c.handleDeleteSession)

	// Searches
	c.mcpServer.AddTool(mcp.NewTool("solve",
		mcp.WithDescription("Run one search on a session grid and record the result"),
		sessionID,
		algorithm,
	), c.handleSolve)

	c.mcpServer.AddTool(mcp.NewTool("compare",
		mcp.WithDescription("Run two searches concurrently on a session grid and report whether they agree"),
		sessionID,
		mcp.WithString("baseline", mcp.Description("Reference algorithm (default exhaustive)"), mcp.Enum(algorithmNames()...)),
		mcp.WithString("candidate", mcp.Description("Algorithm under test (default dynprog)"), mcp.Enum(algorithmNames()...)),
	), c.handleCompare)

	c.mcpServer.AddTool(mcp.NewTool("solve_layout",
		mcp.WithDescription("Solve an ad-hoc layout without creating a session"),
		mcp.WithArray("layout", mcp.Required(),
			mcp.Description("Grid rows using digits, '.' and 'X'"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		algorithm,
	), c.handleSolveLayout)

	c.mcpServer.AddTool(mcp.NewTool("solve_history",
		mcp.WithDescription("Get the solve history of a session"),
		sessionID,
		mcp.WithNumber("page", mcp.Description("Page number")),
		mcp.WithNumber("limit", mcp.Description("Items per page")),
	), c.handleSolveHistory)

	c.mcpServer.AddTool(mcp.NewTool("describe_cell",
		mcp.WithDescription("Describe a grid cell and the best path that ends on it"),
		sessionID,
		mcp.WithNumber("row", mcp.Required(), mcp.Description("0-based row")),
		mcp.WithNumber("col", mcp.Required(), mcp.Description("0-based column")),
	), c.handleDescribeCell)

	// Discovery
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available grid presets"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("list_algorithms",
		mcp.WithDescription("List the registered search algorithms"),
	), c.handleListAlgorithms)

	c.mcpServer.AddTool(mcp.NewTool("solver_instructions",
		mcp.WithDescription("Get the rules, the layout format and notes on each algorithm"),
	), c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Argument helpers. Arguments arrive as decoded JSON, so numbers are float64.

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func stringsArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, _ := item.(string)
			out = append(out, s)
		}
		return out
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]any{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}
	if layout := stringsArg(args, "layout"); layout != nil {
		body["layout"] = layout
		body["name"] = stringArg(args, "name")
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created session: " + session.ID + "\n\n" + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		best := "unsolved"
		if s.BestGold != nil {
			best = fmt.Sprintf("best %d gold", *s.BestGold)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, %dx%d, %d solves, %s, Created: %s)\n",
			s.ID, s.ConfigID, s.Rows, s.Columns, s.SolveCount, best, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var response map[string]string
	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response["message"]), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	// The grid is needed to draw the path
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.SolveResult
	body := map[string]string{"algorithm": stringArg(args, "algorithm")}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/solve"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result, layoutOf(&session))), nil
}

func (c *Client) handleCompare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	opts := service.CompareOptions{
		Baseline:  stringArg(args, "baseline"),
		Candidate: stringArg(args, "candidate"),
	}
	var cmp service.Comparison
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/compare"), opts, &cmp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatComparison(&cmp)), nil
}

func (c *Client) handleSolveLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	layout := stringsArg(args, "layout")
	if len(layout) == 0 {
		return mcp.NewToolResultError("layout is required"), nil
	}

	var result service.SolveResult
	body := map[string]any{"layout": layout, "algorithm": stringArg(args, "algorithm")}
	if err := c.apiCall(ctx, "POST", "/api/solve", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSolveResult(&result, layout)), nil
}

func (c *Client) handleSolveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok && page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok && limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/results")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.ResultsResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}
	if row < 0 || col < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) must not be negative", row, col)), nil
	}

	var cell service.CellInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/cells/%d/%d", row, col)), nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCell(&cell)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Configs []service.ConfigInfo `json:"configs"`
	}
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range response.Configs {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %d obstacles, %d gold)\n",
			cfg.ConfigID, cfg.Name, cfg.Rows, cfg.Columns, cfg.Obstacles, cfg.GridGold)
		if cfg.Description != "" {
			fmt.Fprintf(&b, "  %s\n", cfg.Description)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListAlgorithms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Algorithms []solver.AlgorithmInfo `json:"algorithms"`
		Default    string                 `json:"default"`
	}
	if err := c.apiCall(ctx, "GET", "/api/algorithms", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Algorithms:\n\n")
	for _, alg := range response.Algorithms {
		marker := ""
		if string(alg.Name) == response.Default {
			marker = " (default)"
		}
		cost := "linear in cells"
		if alg.Exponential {
			cost = "exponential in steps"
		}
		fmt.Fprintf(&b, "- %s%s: %s [%s]\n", alg.Name, marker, alg.Description, cost)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `GREEDY GNOMES

RULES:
- The gnome starts on the top-left cell (0,0) and collects its gold.
- Each step moves one cell right or one cell down. No other moves exist.
- Obstacles (X) cannot be entered. The start cell is never an obstacle.
- The walk may stop on any cell. The score is the gold summed over every visited cell.

LAYOUT FORMAT:
One string per row, all rows the same width, at most 64x64.
  '0'-'9'  passable cell holding that much gold
  '.'      passable cell with no gold
  'X'      obstacle
Example:
  ["23", "15"]  ->  best path right, down collects 2+3+5 = 10

ALGORITHMS:
- exhaustive: tries every right/down bitstring of length rows+columns-2.
  Exact, but the cost doubles with every extra step, so the server caps
  the number of steps it accepts.
- exhaustive-strict: same enumeration, keeps the first of several equal scores.
- dynprog: fills a best-path table row by row. Exact and fast.
- dynprog-spine: the table variant that only extends single-cell predecessors
  outside the first row and column. It can undercount; compare it against
  exhaustive to see where.

WORKFLOW:
1. list_configs or prepare a layout
2. create_session
3. solve (or compare to cross-check two algorithms)
4. describe_cell to inspect the best path ending on any cell
5. solve_history to review earlier runs`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func algorithmNames() []string {
	infos := solver.Algorithms()
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, string(info.Name))
	}
	return names
}

func layoutOf(session *service.SessionInfo) []string {
	if session.GridConfig == nil {
		return nil
	}
	return session.GridConfig.Layout
}

func formatSessionInfo(s *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", s.ID)
	fmt.Fprintf(&b, "Config: %s\n", s.ConfigID)
	fmt.Fprintf(&b, "Grid: %dx%d, %d obstacles, %d reachable cells, %d gold on the board\n",
		s.Rows, s.Columns, s.Obstacles, s.ReachableCells, s.GridGold)
	fmt.Fprintf(&b, "Solves: %d", s.SolveCount)
	if s.BestGold != nil {
		fmt.Fprintf(&b, " (best %d gold)", *s.BestGold)
	}
	b.WriteString("\n")
	if layout := layoutOf(s); len(layout) > 0 {
		b.WriteString("\n")
		b.WriteString(renderPath(layout, nil))
	}
	return b.String()
}

func formatRecord(r *service.SolveRecord) string {
	return fmt.Sprintf("%s: %d gold in %d steps, ending at (%d,%d), %dus",
		r.Algorithm, r.TotalGold, len(r.Steps), r.End.Row, r.End.Col, r.ElapsedUS)
}

func formatSolveResult(result *service.SolveResult, layout []string) string {
	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n")
	if r := result.Result; r != nil {
		if len(r.Steps) > 0 {
			fmt.Fprintf(&b, "Steps: %s\n", strings.Join(r.Steps, ", "))
		} else {
			b.WriteString("Steps: none (the start cell is the best stop)\n")
		}
		if len(layout) > 0 {
			b.WriteString("\n")
			b.WriteString(renderPath(layout, r.Cells))
		}
	}
	return b.String()
}

func formatComparison(cmp *service.Comparison) string {
	var b strings.Builder
	b.WriteString(cmp.Message)
	b.WriteString("\n\n")
	if cmp.Baseline != nil {
		fmt.Fprintf(&b, "Baseline  %s\n", formatRecord(cmp.Baseline))
	}
	if cmp.Candidate != nil {
		fmt.Fprintf(&b, "Candidate %s\n", formatRecord(cmp.Candidate))
	}
	if cmp.Agree {
		b.WriteString("\nResult: AGREE\n")
	} else {
		fmt.Fprintf(&b, "\nResult: DISAGREE (baseline ahead by %d)\n", cmp.GoldDelta)
	}
	return b.String()
}

func formatHistory(history *service.ResultsResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solve History (page %d/%d, %d total):\n\n", history.Page, history.TotalPages, history.TotalResults)
	if len(history.Results) == 0 {
		b.WriteString("No solves yet.\n")
	}
	for i := range history.Results {
		r := &history.Results[i]
		fmt.Fprintf(&b, "- %s %s\n", r.SolvedAt.Format("15:04:05"), formatRecord(r))
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore results on page %d.\n", history.Page+1)
	}
	return b.String()
}

func formatCell(cell *service.CellInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d) '%s'\n", cell.Row, cell.Col, cell.Char)
	switch {
	case cell.Obstacle:
		b.WriteString("Obstacle: no path can end here.\n")
	case !cell.Reachable:
		fmt.Fprintf(&b, "Gold: %d\nUnreachable: obstacles cut it off from the start.\n", cell.Gold)
	default:
		fmt.Fprintf(&b, "Gold: %d\nBest path ending here collects %d gold", cell.Gold, cell.BestGold)
		if len(cell.BestSteps) > 0 {
			fmt.Fprintf(&b, ": %s", strings.Join(cell.BestSteps, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderPath draws the layout with visited cells in brackets
func renderPath(layout []string, cells []engine.Position) string {
	visited := make(map[engine.Position]bool, len(cells))
	for _, p := range cells {
		visited[p] = true
	}

	var b strings.Builder
	for row, line := range layout {
		for col := 0; col < len(line); col++ {
			if visited[engine.Position{Row: row, Col: col}] {
				fmt.Fprintf(&b, "[%c]", line[col])
			} else {
				fmt.Fprintf(&b, " %c ", line[col])
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
