package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/greedygnomes/game/config"
	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/service"
	"github.com/wricardo/mcp-training/greedygnomes/game/session"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
	"github.com/wricardo/mcp-training/greedygnomes/transport/websocket"
)

// MockSolverService implements service.SolverService for testing
type MockSolverService struct {
	CreateSessionFunc           func(ctx context.Context, configID string) (*service.SessionInfo, error)
	CreateSessionFromLayoutFunc func(ctx context.Context, name string, layout []string) (*service.SessionInfo, error)
	GetSessionFunc              func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc            func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc           func(ctx context.Context, sessionID string) error
	SolveFunc                   func(ctx context.Context, sessionID, algorithm string) (*service.SolveResult, error)
	CompareFunc                 func(ctx context.Context, sessionID string, opts service.CompareOptions) (*service.Comparison, error)
	SolveLayoutFunc             func(ctx context.Context, layout []string, algorithm string) (*service.SolveResult, error)
	GetResultsFunc              func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.ResultsResponse, error)
	DescribeCellFunc            func(ctx context.Context, sessionID string, row, col int) (*service.CellInfo, error)
	ListConfigsFunc             func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc              func(ctx context.Context, configID string) (*engine.GridConfig, error)
	SaveConfigFunc              func(ctx context.Context, configID string, config *engine.GridConfig) error
}

func (m *MockSolverService) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configID)
	}
	return &service.SessionInfo{ID: "test-session", ConfigID: configID, CreatedAt: time.Now()}, nil
}

func (m *MockSolverService) CreateSessionFromLayout(ctx context.Context, name string, layout []string) (*service.SessionInfo, error) {
	if m.CreateSessionFromLayoutFunc != nil {
		return m.CreateSessionFromLayoutFunc(ctx, name, layout)
	}
	return &service.SessionInfo{ID: "layout-session", ConfigID: "custom", Rows: len(layout)}, nil
}

func (m *MockSolverService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigID: "test-config", CreatedAt: time.Now()}, nil
}

func (m *MockSolverService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockSolverService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockSolverService) Solve(ctx context.Context, sessionID, algorithm string) (*service.SolveResult, error) {
	if m.SolveFunc != nil {
		return m.SolveFunc(ctx, sessionID, algorithm)
	}
	return &service.SolveResult{
		SessionID: sessionID,
		Result:    &service.SolveRecord{Algorithm: solver.Algorithm(algorithm), TotalGold: 10},
	}, nil
}

func (m *MockSolverService) Compare(ctx context.Context, sessionID string, opts service.CompareOptions) (*service.Comparison, error) {
	if m.CompareFunc != nil {
		return m.CompareFunc(ctx, sessionID, opts)
	}
	return &service.Comparison{SessionID: sessionID, Agree: true}, nil
}

func (m *MockSolverService) SolveLayout(ctx context.Context, layout []string, algorithm string) (*service.SolveResult, error) {
	if m.SolveLayoutFunc != nil {
		return m.SolveLayoutFunc(ctx, layout, algorithm)
	}
	return &service.SolveResult{Result: &service.SolveRecord{Algorithm: solver.Algorithm(algorithm)}}, nil
}

func (m *MockSolverService) GetResults(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.ResultsResponse, error) {
	if m.GetResultsFunc != nil {
		return m.GetResultsFunc(ctx, sessionID, opts)
	}
	return &service.ResultsResponse{Results: []service.SolveRecord{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockSolverService) DescribeCell(ctx context.Context, sessionID string, row, col int) (*service.CellInfo, error) {
	if m.DescribeCellFunc != nil {
		return m.DescribeCellFunc(ctx, sessionID, row, col)
	}
	return &service.CellInfo{Row: row, Col: col}, nil
}

func (m *MockSolverService) ListAlgorithms(ctx context.Context) []solver.AlgorithmInfo {
	return solver.Algorithms()
}

func (m *MockSolverService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockSolverService) LoadConfig(ctx context.Context, configID string) (*engine.GridConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configID)
	}
	return &engine.GridConfig{Name: configID, Layout: []string{"1"}}, nil
}

func (m *MockSolverService) SaveConfig(ctx context.Context, configID string, config *engine.GridConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configID, config)
	}
	return nil
}

// recordingHub implements Broadcaster and remembers every event
type recordingHub struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHub) BroadcastEvent(sessionID, event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, sessionID+":"+event)
}

func (h *recordingHub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	respondJSON(w, http.StatusSwitchingProtocols, map[string]string{"session": sessionID})
}

func (h *recordingHub) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

func doRequest(t *testing.T, server http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestServer_CreateSession(t *testing.T) {
	var gotConfig, gotName string
	var gotLayout []string
	mock := &MockSolverService{
		CreateSessionFunc: func(ctx context.Context, configID string) (*service.SessionInfo, error) {
			gotConfig = configID
			if configID == "missing" {
				return nil, fmt.Errorf("%w: missing", service.ErrConfigNotFound)
			}
			return &service.SessionInfo{ID: "abcd", ConfigID: configID}, nil
		},
		CreateSessionFromLayoutFunc: func(ctx context.Context, name string, layout []string) (*service.SessionInfo, error) {
			gotName, gotLayout = name, layout
			if layout[0][0] == 'X' {
				return nil, fmt.Errorf("%w: origin blocked", service.ErrInvalidConfig)
			}
			return &service.SessionInfo{ID: "lay1", ConfigID: "custom"}, nil
		},
	}
	server := NewServer(mock, nil, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantID     string
	}{
		{name: "empty body uses default", body: "", wantStatus: http.StatusCreated, wantID: "abcd"},
		{name: "named preset", body: `{"config_id":"example"}`, wantStatus: http.StatusCreated, wantID: "abcd"},
		{name: "unknown preset", body: `{"config_id":"missing"}`, wantStatus: http.StatusNotFound},
		{name: "layout", body: `{"name":"mine","layout":["23","15"]}`, wantStatus: http.StatusCreated, wantID: "lay1"},
		{name: "invalid layout", body: `{"layout":["X1"]}`, wantStatus: http.StatusBadRequest},
		{name: "both preset and layout", body: `{"config_id":"example","layout":["1"]}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"config_id":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, server, "POST", "/api/sessions", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantID == "" {
				var resp map[string]string
				decodeJSON(t, w, &resp)
				if resp["error"] == "" {
					t.Error("error response has no error message")
				}
				return
			}
			var info service.SessionInfo
			decodeJSON(t, w, &info)
			if info.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", info.ID, tt.wantID)
			}
		})
	}

	if gotConfig != "missing" {
		t.Errorf("last config id = %q", gotConfig)
	}
	if gotName != "" || len(gotLayout) != 1 {
		t.Errorf("last layout call = %q %v", gotName, gotLayout)
	}
}

func TestServer_ListSessions(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := &MockSolverService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Hour)},
				{ID: "b", CreatedAt: base.Add(time.Hour), LastAccessedAt: base.Add(time.Hour)},
				{ID: "c", CreatedAt: base.Add(2 * time.Hour), LastAccessedAt: base.Add(2 * time.Hour)},
			}, nil
		},
	}
	server := NewServer(mock, nil, nil)

	tests := []struct {
		query   string
		wantIDs string
		total   int
	}{
		{query: "", wantIDs: "a,c,b", total: 3},
		{query: "?sort=created", wantIDs: "c,b,a", total: 3},
		{query: "?sort=created&order=asc", wantIDs: "a,b,c", total: 3},
		{query: "?order=asc&limit=2", wantIDs: "b,c", total: 3},
		{query: "?limit=bogus", wantIDs: "a,c,b", total: 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := doRequest(t, server, "GET", "/api/sessions"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			decodeJSON(t, w, &resp)

			var ids []string
			for _, s := range resp.Sessions {
				ids = append(ids, s.ID)
			}
			if got := strings.Join(ids, ","); got != tt.wantIDs {
				t.Errorf("order = %s, want %s", got, tt.wantIDs)
			}
			if resp.Total != tt.total || resp.Count != len(ids) {
				t.Errorf("count/total = %d/%d", resp.Count, resp.Total)
			}
		})
	}
}

func TestServer_GetAndDeleteSession(t *testing.T) {
	hub := &recordingHub{}
	mock := &MockSolverService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if strings.ToLower(id) != "abcd" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, id)
			}
			return &service.SessionInfo{ID: "abcd"}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, id string) error {
			if id != "abcd" {
				return service.ErrSessionNotFound
			}
			return nil
		},
	}
	server := NewServer(mock, hub, nil)

	if w := doRequest(t, server, "GET", "/api/sessions/abcd", ""); w.Code != http.StatusOK {
		t.Errorf("GET existing status = %d", w.Code)
	}
	if w := doRequest(t, server, "GET", "/api/sessions/zzzz", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET missing status = %d", w.Code)
	}
	if w := doRequest(t, server, "DELETE", "/api/sessions/zzzz", ""); w.Code != http.StatusNotFound {
		t.Errorf("DELETE missing status = %d", w.Code)
	}
	if w := doRequest(t, server, "DELETE", "/api/sessions/ABCD", ""); w.Code != http.StatusOK {
		t.Errorf("DELETE existing status = %d", w.Code)
	}

	events := hub.Events()
	if len(events) != 1 || events[0] != "abcd:"+websocket.EventSessionDeleted {
		t.Errorf("events = %v", events)
	}
}

func TestServer_Solve(t *testing.T) {
	hub := &recordingHub{}
	mock := &MockSolverService{
		SolveFunc: func(ctx context.Context, id, alg string) (*service.SolveResult, error) {
			switch {
			case id != "abcd":
				return nil, service.ErrSessionNotFound
			case alg == "astar":
				return nil, fmt.Errorf("%w: %w", service.ErrInvalidRequest, solver.ErrUnknownAlgorithm)
			case alg == "exhaustive":
				return nil, fmt.Errorf("exhaustive: %w", solver.ErrTooManySteps)
			case alg == "boom":
				return nil, fmt.Errorf("disk on fire")
			}
			return &service.SolveResult{SessionID: id, Result: &service.SolveRecord{Algorithm: solver.Algorithm(alg), TotalGold: 10}}, nil
		},
	}
	server := NewServer(mock, hub, nil)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "dynprog", path: "/api/sessions/abcd/solve", body: `{"algorithm":"dynprog"}`, wantStatus: http.StatusOK},
		{name: "no body", path: "/api/sessions/abcd/solve", body: "", wantStatus: http.StatusOK},
		{name: "unknown session", path: "/api/sessions/zzzz/solve", body: `{"algorithm":"dynprog"}`, wantStatus: http.StatusNotFound},
		{name: "unknown algorithm", path: "/api/sessions/abcd/solve", body: `{"algorithm":"astar"}`, wantStatus: http.StatusBadRequest},
		{name: "too large for exhaustive", path: "/api/sessions/abcd/solve", body: `{"algorithm":"exhaustive"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "internal error", path: "/api/sessions/abcd/solve", body: `{"algorithm":"boom"}`, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, server, "POST", tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	events := hub.Events()
	if len(events) != 2 {
		t.Fatalf("events = %v, want one per successful solve", events)
	}
	for _, e := range events {
		if e != "abcd:"+websocket.EventSolveCompleted {
			t.Errorf("event = %s", e)
		}
	}
}

func TestServer_Compare(t *testing.T) {
	hub := &recordingHub{}
	var got service.CompareOptions
	mock := &MockSolverService{
		CompareFunc: func(ctx context.Context, id string, opts service.CompareOptions) (*service.Comparison, error) {
			got = opts
			return &service.Comparison{SessionID: id, Agree: false, GoldDelta: 11}, nil
		},
	}
	server := NewServer(mock, hub, nil)

	w := doRequest(t, server, "POST", "/api/sessions/abcd/compare", `{"baseline":"exhaustive","candidate":"dynprog-spine"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got.Baseline != "exhaustive" || got.Candidate != "dynprog-spine" {
		t.Errorf("options = %+v", got)
	}
	var cmp service.Comparison
	decodeJSON(t, w, &cmp)
	if cmp.GoldDelta != 11 {
		t.Errorf("GoldDelta = %d", cmp.GoldDelta)
	}
	if events := hub.Events(); len(events) != 1 || events[0] != "abcd:"+websocket.EventCompared {
		t.Errorf("events = %v", events)
	}
}

func TestServer_GetResultsQueryParsing(t *testing.T) {
	var got service.HistoryOptions
	mock := &MockSolverService{
		GetResultsFunc: func(ctx context.Context, id string, opts service.HistoryOptions) (*service.ResultsResponse, error) {
			got = opts
			return &service.ResultsResponse{Results: []service.SolveRecord{}}, nil
		},
	}
	server := NewServer(mock, nil, nil)

	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{query: "", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{query: "?page=3&limit=5&order=asc", want: service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{query: "?page=-1&limit=x&order=sideways", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := doRequest(t, server, "GET", "/api/sessions/abcd/results"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if got != tt.want {
				t.Errorf("options = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestServer_DescribeCell(t *testing.T) {
	mock := &MockSolverService{
		DescribeCellFunc: func(ctx context.Context, id string, row, col int) (*service.CellInfo, error) {
			if row > 1 {
				return nil, service.ErrCellOutOfBounds
			}
			return &service.CellInfo{Row: row, Col: col, Reachable: true, BestGold: 8}, nil
		},
	}
	server := NewServer(mock, nil, nil)

	w := doRequest(t, server, "GET", "/api/sessions/abcd/cells/1/0", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var cell service.CellInfo
	decodeJSON(t, w, &cell)
	if cell.Row != 1 || cell.Col != 0 || cell.BestGold != 8 {
		t.Errorf("cell = %+v", cell)
	}

	if w := doRequest(t, server, "GET", "/api/sessions/abcd/cells/5/0", ""); w.Code != http.StatusNotFound {
		t.Errorf("out of bounds status = %d", w.Code)
	}
	if w := doRequest(t, server, "GET", "/api/sessions/abcd/cells/-1/0", ""); w.Code != http.StatusNotFound {
		t.Errorf("negative row should not match the route, status = %d", w.Code)
	}
}

func TestServer_SolveLayout(t *testing.T) {
	server := NewServer(&MockSolverService{}, nil, nil)

	if w := doRequest(t, server, "POST", "/api/solve", `{"layout":["23","15"],"algorithm":"exhaustive"}`); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if w := doRequest(t, server, "POST", "/api/solve", `{"algorithm":"exhaustive"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing layout status = %d", w.Code)
	}
}

func TestServer_Algorithms(t *testing.T) {
	server := NewServer(&MockSolverService{}, nil, nil)

	w := doRequest(t, server, "GET", "/api/algorithms", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Algorithms []solver.AlgorithmInfo `json:"algorithms"`
		Default    string                 `json:"default"`
	}
	decodeJSON(t, w, &resp)
	if len(resp.Algorithms) != 4 || resp.Default != "dynprog" {
		t.Errorf("response = %+v", resp)
	}
}

func TestServer_Configs(t *testing.T) {
	var savedID string
	var saved *engine.GridConfig
	mock := &MockSolverService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "example"}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, id string) (*engine.GridConfig, error) {
			if id != "example" {
				return nil, service.ErrConfigNotFound
			}
			return &engine.GridConfig{Name: "Example", Layout: []string{"23", "15"}}, nil
		},
		SaveConfigFunc: func(ctx context.Context, id string, cfg *engine.GridConfig) error {
			savedID, saved = id, cfg
			return nil
		},
	}
	server := NewServer(mock, nil, nil)

	w := doRequest(t, server, "GET", "/api/configs", "")
	var list struct {
		Count int `json:"count"`
	}
	decodeJSON(t, w, &list)
	if list.Count != 1 {
		t.Errorf("count = %d", list.Count)
	}

	if w := doRequest(t, server, "GET", "/api/configs/example", ""); w.Code != http.StatusOK {
		t.Errorf("GET config status = %d", w.Code)
	}
	if w := doRequest(t, server, "GET", "/api/configs/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET missing config status = %d", w.Code)
	}

	w = doRequest(t, server, "POST", "/api/configs", `{"name":"My Grid!","layout":["12","34"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST config status = %d (%s)", w.Code, w.Body.String())
	}
	if savedID != "my_grid" {
		t.Errorf("derived id = %q, want my_grid", savedID)
	}
	if saved == nil || len(saved.Layout) != 2 || saved.Name != "My Grid!" {
		t.Errorf("saved = %+v", saved)
	}

	doRequest(t, server, "POST", "/api/configs", `{"config_id":"explicit","name":"X","layout":["1"]}`)
	if savedID != "explicit" {
		t.Errorf("explicit id = %q", savedID)
	}

	if w := doRequest(t, server, "POST", "/api/configs", `{"layout":["1"]}`); w.Code != http.StatusBadRequest {
		t.Errorf("nameless config status = %d", w.Code)
	}
}

func TestServer_WebSocketChecks(t *testing.T) {
	mock := &MockSolverService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if id != "abcd" {
				return nil, service.ErrSessionNotFound
			}
			return &service.SessionInfo{ID: id}, nil
		},
	}

	if w := doRequest(t, NewServer(mock, nil, nil), "GET", "/ws?session=abcd", ""); w.Code != http.StatusNotFound {
		t.Errorf("without hub status = %d", w.Code)
	}

	server := NewServer(mock, &recordingHub{}, nil)
	if w := doRequest(t, server, "GET", "/ws", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing session status = %d", w.Code)
	}
	if w := doRequest(t, server, "GET", "/ws?session=zzzz", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d", w.Code)
	}
	if w := doRequest(t, server, "GET", "/ws?session=abcd", ""); w.Code != http.StatusSwitchingProtocols {
		t.Errorf("valid session status = %d", w.Code)
	}
}

func TestServer_Health(t *testing.T) {
	w := doRequest(t, NewServer(&MockSolverService{}, nil, nil), "GET", "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
}

// TestServer_EndToEnd wires the real service, managers and hub together
func TestServer_EndToEnd(t *testing.T) {
	configDir := t.TempDir()
	example := `{"name":"Example","description":"two by two","layout":["23","15"]}`
	if err := os.WriteFile(filepath.Join(configDir, "example.json"), []byte(example), 0644); err != nil {
		t.Fatal(err)
	}

	configs, err := config.NewManager(configDir)
	if err != nil {
		t.Fatalf("config.NewManager() error: %v", err)
	}
	store, err := session.NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilePersistence() error: %v", err)
	}
	sessions := session.NewManagerWithPersistence(store, nil)
	svc := service.NewSolverService(sessions, configs, solver.Limits{MaxExhaustiveSteps: 4}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.NewHub(nil)
	go hub.Run(ctx)

	server := httptest.NewServer(NewServer(svc, hub, nil))
	defer server.Close()

	post := func(path, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(server.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		return resp
	}

	resp := post("/api/sessions", `{"config_id":"example"}`)
	var info service.SessionInfo
	json.NewDecoder(resp.Body).Decode(&info)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || info.ID == "" {
		t.Fatalf("create session = %d %+v", resp.StatusCode, info)
	}

	resp = post("/api/sessions/"+info.ID+"/compare", `{}`)
	var cmp service.Comparison
	json.NewDecoder(resp.Body).Decode(&cmp)
	resp.Body.Close()
	if !cmp.Agree || cmp.Baseline.TotalGold != 10 {
		t.Errorf("comparison = %+v", cmp)
	}

	resp = post("/api/sessions", `{"layout":["12345","12345"]}`)
	var wide service.SessionInfo
	json.NewDecoder(resp.Body).Decode(&wide)
	resp.Body.Close()

	resp = post("/api/sessions/"+wide.ID+"/solve", `{"algorithm":"exhaustive"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("exhaustive over the limit status = %d", resp.StatusCode)
	}

	res, err := http.Get(server.URL + "/api/sessions/" + info.ID + "/results?order=asc")
	if err != nil {
		t.Fatal(err)
	}
	var results service.ResultsResponse
	json.NewDecoder(res.Body).Decode(&results)
	res.Body.Close()
	if results.TotalResults != 2 {
		t.Errorf("TotalResults = %d, want 2", results.TotalResults)
	}
	if !store.Exists(info.ID) {
		t.Error("session should be persisted")
	}
}

func TestServer_DeleteNotifiesSubscribersWhateverTheCase(t *testing.T) {
	configDir := t.TempDir()
	example := `{"name":"Example","layout":["23","15"]}`
	if err := os.WriteFile(filepath.Join(configDir, "example.json"), []byte(example), 0644); err != nil {
		t.Fatal(err)
	}
	configs, err := config.NewManager(configDir)
	if err != nil {
		t.Fatalf("config.NewManager() error: %v", err)
	}
	sessions := session.NewManager(nil)
	svc := service.NewSolverService(sessions, configs, solver.Limits{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.NewHub(nil)
	go hub.Run(ctx)

	server := httptest.NewServer(NewServer(svc, hub, nil))
	defer server.Close()

	info, err := sessions.Create("gnome", "example", &engine.GridConfig{Name: "Example", Layout: []string{"23", "15"}})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + info.ID
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	messages := make(chan websocket.Message, 16)
	go func() {
		defer close(messages)
		for {
			conn.SetReadDeadline(time.Now().Add(3 * time.Second))
			var msg websocket.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			messages <- msg
		}
	}()

	// Registration is asynchronous; solve until an event proves the subscription
	subscribed := false
	for attempt := 0; attempt < 100 && !subscribed; attempt++ {
		resp, err := http.Post(server.URL+"/api/sessions/"+info.ID+"/solve", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		select {
		case msg, ok := <-messages:
			if !ok {
				t.Fatal("connection closed before subscribing")
			}
			subscribed = msg.Event == websocket.EventSolveCompleted
		case <-time.After(20 * time.Millisecond):
		}
	}
	if !subscribed {
		t.Fatal("subscription never received a solve event")
	}

	req, _ := http.NewRequest("DELETE", server.URL+"/api/sessions/"+strings.ToUpper(info.ID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE status = %d", resp.StatusCode)
	}

	for msg := range messages {
		if msg.Event == websocket.EventSessionDeleted {
			if msg.SessionID != info.ID {
				t.Errorf("deleted event for %s, want %s", msg.SessionID, info.ID)
			}
			return
		}
	}
	t.Fatal("subscriber never received session_deleted")
}
