package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/wricardo/pathviz/visualizer/engine"
)

// visualizerServiceImpl implements the VisualizerService interface
type visualizerServiceImpl struct {
	sessions  SessionManager
	layouts   LayoutManager
	publisher Publisher
	pacer     func(speed float64) engine.Pacer
}

// Option configures the service
type Option func(*visualizerServiceImpl)

// WithPublisher streams run events and grid updates to p
func WithPublisher(p Publisher) Option {
	return func(s *visualizerServiceImpl) {
		s.publisher = p
	}
}

// WithPacerFactory overrides how animated runs are paced
func WithPacerFactory(f func(speed float64) engine.Pacer) Option {
	return func(s *visualizerServiceImpl) {
		if f != nil {
			s.pacer = f
		}
	}
}

// NewVisualizerService creates a new visualizer service instance
func NewVisualizerService(sessions SessionManager, layouts LayoutManager, opts ...Option) VisualizerService {
	s := &visualizerServiceImpl{
		sessions: sessions,
		layouts:  layouts,
		pacer: func(speed float64) engine.Pacer {
			return engine.NewDelayPacer(speed)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new session from a named layout, or the default
// layout when name is empty
func (s *visualizerServiceImpl) CreateSession(ctx context.Context, layoutName string) (*SessionInfo, error) {
	var layout *engine.LayoutConfig
	if layoutName != "" {
		var err error
		layout, err = s.layouts.LoadLayout(layoutName)
		if err != nil {
			if errors.Is(err, ErrLayoutNotFound) {
				return nil, s.layoutNotFound(layoutName)
			}
			return nil, fmt.Errorf("failed to load layout %s: %w", layoutName, err)
		}
	} else {
		layout = s.layouts.GetDefault()
	}

	session, err := s.sessions.Create("", layout)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if layoutName == "" {
		layoutName = layout.Name
	}
	log.Printf("Session %s created from layout %q (%dx%d)", session.ID, layoutName, session.Board.Rows(), session.Board.Cols())

	return s.sessionInfo(session, layoutName), nil
}

// layoutNotFound lists the available layouts in the error to help callers
func (s *visualizerServiceImpl) layoutNotFound(name string) error {
	available, err := s.layouts.ListLayouts()
	if err == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, l := range available {
			ids = append(ids, l.LayoutID)
		}
		return fmt.Errorf("%w: '%s'. Available layouts: %s", ErrLayoutNotFound, name, strings.Join(ids, ", "))
	}
	return fmt.Errorf("%w: '%s'", ErrLayoutNotFound, name)
}

// GetSession retrieves session information
func (s *visualizerServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(session, session.Layout.Name), nil
}

// ListSessions returns all active sessions
func (s *visualizerServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, s.sessionInfo(session, session.Layout.Name))
	}
	return result, nil
}

// DeleteSession removes a session. A run in flight finishes on its own board.
func (s *visualizerServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// GetGrid returns the current board snapshot
func (s *visualizerServiceImpl) GetGrid(ctx context.Context, sessionID string) (*GridState, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return gridState(session), nil
}

// UpdateObstacles applies an obstacle edit. Edits are rejected while a run is
// in flight since the search owns the board until it finishes.
func (s *visualizerServiceImpl) UpdateObstacles(ctx context.Context, sessionID string, update ObstacleUpdate) (*ObstacleResult, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &ObstacleResult{}
	err = s.withBoard(session, func(board *engine.Board) error {
		start, end := session.Finder.Start(), session.Finder.End()

		action := strings.ToLower(strings.TrimSpace(update.Action))
		switch action {
		case ActionClearAll:
			obstacles := board.Obstacles()
			for _, c := range obstacles {
				if err := board.SetObstacle(c, false); err != nil {
					return err
				}
			}
			result.Changed = len(obstacles)
		case ActionSet, ActionClear, ActionToggle:
			for _, c := range update.Cells {
				if !engine.InBounds(board, c) {
					return fmt.Errorf("cell %s: %w", c, engine.ErrOutOfBounds)
				}
			}
			for _, c := range update.Cells {
				if c == start || c == end {
					result.Skipped = append(result.Skipped, c)
					continue
				}
				was := board.IsObstacle(c)
				var err error
				switch action {
				case ActionSet:
					err = board.SetObstacle(c, true)
				case ActionClear:
					err = board.SetObstacle(c, false)
				case ActionToggle:
					_, err = board.ToggleObstacle(c)
				}
				if err != nil {
					return fmt.Errorf("cell %s: %w", c, err)
				}
				if board.IsObstacle(c) != was {
					result.Changed++
				}
			}
		default:
			return fmt.Errorf("%w: %q (valid: set, clear, toggle, clear_all)", ErrInvalidAction, update.Action)
		}

		// Obstacle edits invalidate the previous traversal
		board.ResetGrid(nil)
		session.SetLastResult(nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Grid = gridState(session)
	s.publishGrid(session.ID, result.Grid)
	return result, nil
}

// SetEndpoints moves the start and/or end point
func (s *visualizerServiceImpl) SetEndpoints(ctx context.Context, sessionID string, update EndpointUpdate) (*GridState, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	err = s.withBoard(session, func(board *engine.Board) error {
		check := func(name string, c *engine.Coordinate) error {
			if c == nil {
				return nil
			}
			if !engine.InBounds(board, *c) {
				return fmt.Errorf("%s %s: %w", name, *c, engine.ErrOutOfBounds)
			}
			if board.IsObstacle(*c) {
				return fmt.Errorf("%w: %s %s is an obstacle", ErrInvalidEndpoint, name, *c)
			}
			return nil
		}
		if err := check("start", update.Start); err != nil {
			return err
		}
		if err := check("end", update.End); err != nil {
			return err
		}

		if update.Start != nil {
			session.Finder.SetStartPoint(*update.Start)
		}
		if update.End != nil {
			session.Finder.SetEndPoint(*update.End)
		}

		board.ResetGrid(nil)
		session.SetLastResult(nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	state := gridState(session)
	s.publishGrid(session.ID, state)
	return state, nil
}

// ResetGrid clears visited and final marks, and obstacles too when full is set
func (s *visualizerServiceImpl) ResetGrid(ctx context.Context, sessionID string, full bool) (*GridState, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	err = s.withBoard(session, func(board *engine.Board) error {
		if full {
			board.Clear()
		} else {
			board.ResetGrid(nil)
		}
		session.SetLastResult(nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	state := gridState(session)
	s.publishGrid(session.ID, state)
	return state, nil
}

// withBoard runs edit while holding the session's run reservation, so a run
// cannot start until the edit is finished and an edit cannot start during a run.
func (s *visualizerServiceImpl) withBoard(session *Session, edit func(board *engine.Board) error) error {
	if !session.Reserve() {
		return engine.ErrAlreadyRunning
	}
	defer session.Release()
	return edit(session.Board)
}

// RunAlgorithm starts a traversal on the session. The board's previous marks
// are cleared first. Unless req.Wait is set the run continues in the
// background and RunStarted is returned immediately.
func (s *visualizerServiceImpl) RunAlgorithm(ctx context.Context, sessionID string, req RunRequest) (*RunResult, error) {
	algorithm, err := engine.ParseAlgorithm(req.Algorithm)
	if err != nil {
		return nil, err
	}

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Reserve() {
		return nil, engine.ErrAlreadyRunning
	}

	var pacer engine.Pacer = engine.NoPacer
	if !req.Instant {
		pacer = s.pacer(req.Speed)
	}
	session.Finder.SetPacer(pacer)
	session.Finder.SetObserver(func(e engine.Event) {
		if s.publisher != nil {
			s.publisher.PublishEvent(session.ID, e)
		}
	})

	session.Board.ResetGrid(nil)
	session.SetLastResult(nil)
	s.publishGrid(session.ID, gridState(session))

	if req.Wait {
		result, err := s.run(ctx, session, algorithm)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	// The request context ends with the HTTP call; the run must outlive it
	go s.run(context.Background(), session, algorithm)

	return &RunResult{
		SessionID:  session.ID,
		Algorithm:  algorithm,
		Status:     RunStarted,
		PathLength: -1,
	}, nil
}

// run executes a reserved traversal and releases the reservation
func (s *visualizerServiceImpl) run(ctx context.Context, session *Session, algorithm engine.Algorithm) (*RunResult, error) {
	defer session.Release()

	result, err := session.Finder.Run(ctx, algorithm)
	out := &RunResult{
		SessionID:  session.ID,
		Algorithm:  algorithm,
		Status:     RunCompleted,
		PathLength: -1,
	}
	if err != nil {
		log.Printf("Run failed for session %s: %v", session.ID, err)
		out.Error = err.Error()
	} else {
		out.Found = result.Found
		out.Path = result.Path
		out.PathLength = result.PathLength()
		out.VisitedCount = len(result.Visited)
		out.DurationMs = result.Duration.Milliseconds()
	}
	session.SetLastResult(out)

	// Compact server log for observability
	status := "FOUND"
	if !out.Found {
		status = "NO_PATH"
	}
	fmt.Printf("[RUN] session=%s algo=%s %s->%s visited=%d len=%d dur=%dms status=%s\n",
		session.ID, algorithm, session.Finder.Start(), session.Finder.End(), out.VisitedCount, out.PathLength, out.DurationMs, status)

	s.publishGrid(session.ID, gridState(session))
	return out, err
}

// ListAlgorithms describes the supported algorithms in menu order
func (s *visualizerServiceImpl) ListAlgorithms(ctx context.Context) []AlgorithmInfo {
	descriptions := map[engine.Algorithm]AlgorithmInfo{
		engine.AStar:    {Description: "A* search guided by Manhattan distance", Shortest: true},
		engine.Dijkstra: {Description: "Dijkstra's algorithm, stops when the end is discovered", Shortest: true},
		engine.DFS:      {Description: "Depth-first search in right, down, left, up order", Shortest: false},
		engine.BFS:      {Description: "Breadth-first search, expanded one level at a time", Shortest: true},
	}

	result := make([]AlgorithmInfo, 0, len(engine.Algorithms))
	for _, a := range engine.Algorithms {
		info := descriptions[a]
		info.Name = a
		result = append(result, info)
	}
	return result
}

// ListLayouts returns the available layouts
func (s *visualizerServiceImpl) ListLayouts(ctx context.Context) ([]*LayoutInfo, error) {
	return s.layouts.ListLayouts()
}

// LoadLayout loads a specific layout
func (s *visualizerServiceImpl) LoadLayout(ctx context.Context, name string) (*engine.LayoutConfig, error) {
	return s.layouts.LoadLayout(name)
}

// SaveLayout saves a layout
func (s *visualizerServiceImpl) SaveLayout(ctx context.Context, name string, layout *engine.LayoutConfig) error {
	return s.layouts.SaveLayout(name, layout)
}

func (s *visualizerServiceImpl) getSession(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return session, nil
}

func (s *visualizerServiceImpl) publishGrid(sessionID string, state *GridState) {
	if s.publisher != nil {
		s.publisher.PublishGrid(sessionID, state)
	}
}

func (s *visualizerServiceImpl) sessionInfo(session *Session, layoutName string) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		LayoutName:     layoutName,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt(),
		Grid:           gridState(session),
	}
}

// gridState snapshots a session's board
func gridState(session *Session) *GridState {
	start, end := session.Finder.Start(), session.Finder.End()
	return &GridState{
		SessionID:    session.ID,
		Rows:         session.Board.Rows(),
		Cols:         session.Board.Cols(),
		Start:        start,
		End:          end,
		Render:       session.Board.Render(start, end),
		Obstacles:    session.Board.Obstacles(),
		VisitedCount: session.Board.CountVisited(),
		Running:      session.Busy(),
		LastResult:   session.LastResult(),
	}
}
