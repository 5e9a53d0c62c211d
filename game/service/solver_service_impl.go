package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/greedygnomes/game/engine"
	"github.com/wricardo/mcp-training/greedygnomes/game/solver"
)

const customConfigID = "custom"

// solverServiceImpl implements the SolverService interface
type solverServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	limits   solver.Limits
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewSolverService creates a new solver service instance.
// A nil logger discards all output.
func NewSolverService(sessions SessionManager, configs ConfigManager, limits solver.Limits, log *zap.SugaredLogger) SolverService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &solverServiceImpl{
		sessions: sessions,
		configs:  configs,
		limits:   limits,
		log:      log,
		now:      time.Now,
	}
}

// CreateSession creates a session on a named preset, or on the default preset when configID is empty
func (s *solverServiceImpl) CreateSession(ctx context.Context, configID string) (*SessionInfo, error) {
	var config *engine.GridConfig
	if configID == "" {
		configID, config = s.configs.GetDefault()
	} else {
		var err error
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				return nil, s.configNotFound(configID)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
	}

	return s.createSession(configID, config)
}

// CreateSessionFromLayout creates a session on an ad-hoc layout
func (s *solverServiceImpl) CreateSessionFromLayout(ctx context.Context, name string, layout []string) (*SessionInfo, error) {
	if name == "" {
		name = "Custom"
	}
	config := &engine.GridConfig{
		Name:        name,
		Description: "Custom layout",
		Layout:      layout,
	}
	if err := engine.ValidateGridConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return s.createSession(customConfigID, config)
}

func (s *solverServiceImpl) createSession(configID string, config *engine.GridConfig) (*SessionInfo, error) {
	// Let session manager generate the ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Infow("session created", "session_id", sess.ID, "config_id", configID,
		"rows", sess.Grid.Rows(), "columns", sess.Grid.Columns())
	return s.sessionInfo(sess), nil
}

// configNotFound builds a helpful error listing the available presets
func (s *solverServiceImpl) configNotFound(configID string) error {
	available, err := s.configs.ListConfigs()
	if err != nil || len(available) == 0 {
		return fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configID)
	}
	ids := make([]string, 0, len(available))
	for _, cfg := range available {
		ids = append(ids, cfg.ConfigID)
	}
	return fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configID, ids)
}

// GetSession retrieves session information
func (s *solverServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *solverServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *solverServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.log.Infow("session deleted", "session_id", sessionID)
	return nil
}

// Solve runs one search on the session grid and records it in the history
func (s *solverServiceImpl) Solve(ctx context.Context, sessionID, algorithm string) (*SolveResult, error) {
	alg, err := parseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	record, err := s.run(ctx, alg, sess.Grid)
	if err != nil {
		return nil, err
	}

	sess.AddResult(*record)
	s.persist(sess.ID)

	s.log.Infow("solve completed", "session_id", sess.ID, "algorithm", alg,
		"total_gold", record.TotalGold, "elapsed_us", record.ElapsedUS)

	return &SolveResult{
		SessionID: sess.ID,
		Result:    record,
		Message:   solveMessage(record),
	}, nil
}

// Compare runs two searches concurrently against the same session grid
func (s *solverServiceImpl) Compare(ctx context.Context, sessionID string, opts CompareOptions) (*Comparison, error) {
	if opts.Baseline == "" {
		opts.Baseline = string(solver.AlgExhaustive)
	}
	if opts.Candidate == "" {
		opts.Candidate = string(solver.AlgDynProg)
	}
	baseline, err := parseAlgorithm(opts.Baseline)
	if err != nil {
		return nil, err
	}
	candidate, err := parseAlgorithm(opts.Candidate)
	if err != nil {
		return nil, err
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var base, cand *SolveRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = s.run(gctx, baseline, sess.Grid)
		return err
	})
	g.Go(func() error {
		var err error
		cand, err = s.run(gctx, candidate, sess.Grid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sess.AddResult(*base, *cand)
	s.persist(sess.ID)

	cmp := &Comparison{
		SessionID: sess.ID,
		Baseline:  base,
		Candidate: cand,
		Agree:     base.TotalGold == cand.TotalGold,
		GoldDelta: base.TotalGold - cand.TotalGold,
	}
	if cmp.Agree {
		cmp.Message = fmt.Sprintf("%s and %s agree on %d gold", baseline, candidate, base.TotalGold)
	} else {
		cmp.Message = fmt.Sprintf("%s found %d gold, %s found %d", baseline, base.TotalGold, candidate, cand.TotalGold)
		s.log.Warnw("algorithms disagree", "session_id", sess.ID,
			"baseline", baseline, "baseline_gold", base.TotalGold,
			"candidate", candidate, "candidate_gold", cand.TotalGold)
	}
	return cmp, nil
}

// SolveLayout runs one search on an ad-hoc layout without creating a session
func (s *solverServiceImpl) SolveLayout(ctx context.Context, layout []string, algorithm string) (*SolveResult, error) {
	alg, err := parseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}

	grid, err := engine.GridFromConfig(&engine.GridConfig{Name: "Custom", Layout: layout})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	record, err := s.run(ctx, alg, grid)
	if err != nil {
		return nil, err
	}
	return &SolveResult{Result: record, Message: solveMessage(record)}, nil
}

// GetResults returns a page of the session's solve history
func (s *solverServiceImpl) GetResults(ctx context.Context, sessionID string, opts HistoryOptions) (*ResultsResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Results()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	if opts.Order == "desc" {
		for i, j := 0, total-1; i < j; i, j = i+1, j-1 {
			history[i], history[j] = history[j], history[i]
		}
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}
	results := []SolveRecord{}
	if start < total {
		results = history[start:end]
	}

	return &ResultsResponse{
		Results:      results,
		TotalResults: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// DescribeCell reports a cell's contents and the best path ending on it
func (s *solverServiceImpl) DescribeCell(ctx context.Context, sessionID string, row, col int) (*CellInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	grid := sess.Grid
	if !grid.InBounds(row, col) {
		return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrCellOutOfBounds, row, col, grid.Rows(), grid.Columns())
	}

	cell := grid.Get(row, col)
	info := &CellInfo{
		Row:      row,
		Col:      col,
		Char:     grid.CellChar(row, col),
		Obstacle: cell.Obstacle,
		Gold:     cell.Gold,
	}
	if cell.Obstacle {
		return info, nil
	}

	best, err := solver.BestPathTo(grid, row, col, solver.DefaultDynProgOptions())
	if err != nil {
		return nil, err
	}

	if best != nil {
		info.Reachable = true
		info.BestGold = best.TotalGold()
		info.BestSteps = best.StepNames()
	}
	return info, nil
}

// ListAlgorithms returns the registered searches
func (s *solverServiceImpl) ListAlgorithms(ctx context.Context) []solver.AlgorithmInfo {
	return solver.Algorithms()
}

// ListConfigs returns available grid presets
func (s *solverServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific grid preset
func (s *solverServiceImpl) LoadConfig(ctx context.Context, configID string) (*engine.GridConfig, error) {
	return s.configs.LoadConfig(configID)
}

// SaveConfig stores a grid preset
func (s *solverServiceImpl) SaveConfig(ctx context.Context, configID string, config *engine.GridConfig) error {
	if configID == "" {
		return fmt.Errorf("%w: config id is required", ErrInvalidRequest)
	}
	if err := s.configs.SaveConfig(configID, config); err != nil {
		return err
	}
	s.log.Infow("config saved", "config_id", configID)
	return nil
}

// run executes a single search and verifies the path it returns
func (s *solverServiceImpl) run(ctx context.Context, alg solver.Algorithm, grid *engine.Grid) (*SolveRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := s.now()
	path, err := solver.Solve(alg, grid, s.limits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", alg, err)
	}
	elapsed := time.Since(started)

	if err := solver.VerifyPath(grid, path); err != nil {
		s.log.Errorw("search returned an invalid path", "algorithm", alg, "error", err)
		return nil, fmt.Errorf("%s: %w", alg, err)
	}

	return &SolveRecord{
		ID:        uuid.New().String(),
		Algorithm: alg,
		TotalGold: path.TotalGold(),
		Steps:     path.StepNames(),
		Cells:     path.Cells(),
		End:       path.End(),
		ElapsedUS: elapsed.Microseconds(),
		SolvedAt:  started,
	}, nil
}

func (s *solverServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		s.log.Warnw("failed to update session access time", "session_id", sess.ID, "error", err)
	}
	return sess, nil
}

// persist saves the session, logging instead of failing the request
func (s *solverServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.log.Warnw("failed to persist session", "session_id", sessionID, "error", err)
	}
}

func (s *solverServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	results := sess.Results()
	info := &SessionInfo{
		ID:             sess.ID,
		ConfigID:       sess.ConfigID,
		Rows:           sess.Grid.Rows(),
		Columns:        sess.Grid.Columns(),
		Obstacles:      engine.CountObstacles(sess.Grid),
		ReachableCells: engine.CountReachable(sess.Grid),
		GridGold:       engine.TotalGold(sess.Grid),
		SolveCount:     len(results),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		GridConfig:     sess.Config,
	}
	for _, r := range results {
		if info.BestGold == nil || r.TotalGold > *info.BestGold {
			gold := r.TotalGold
			info.BestGold = &gold
		}
	}
	return info
}

func parseAlgorithm(name string) (solver.Algorithm, error) {
	alg, err := solver.ParseAlgorithm(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return alg, nil
}

func solveMessage(r *SolveRecord) string {
	return fmt.Sprintf("%s collected %d gold in %d steps, ending at (%d,%d)",
		r.Algorithm, r.TotalGold, len(r.Steps), r.End.Row, r.End.Col)
}
