// Package service is the reference move service: it validates a submitted
// position, detects finished games, and answers with an agent move.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"chessbot/internal/core"
	"chessbot/internal/rules"
	"chessbot/internal/server/agent"
	"chessbot/internal/server/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	RetentionJobInterval = 1 * time.Hour
	DefaultRetention     = 7 * 24 * time.Hour
)

// Error is a failed move request with the HTTP status it maps to
type Error struct {
	Status  int
	Code    string
	Err     string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Message)
}

// Service answers move requests. It keeps the last position it saw for
// /api/status.
type Service struct {
	agents       map[string]agent.Agent
	defaultAgent string
	store        *storage.Store
	log          zerolog.Logger
	requests     atomic.Uint64

	mu         sync.RWMutex
	currentFEN string
}

// New creates a service with every built-in agent plus extra, which may
// override a built-in by name. store may be nil.
func New(store *storage.Store, defaultAgent string, seed uint64, log zerolog.Logger, extra ...agent.Agent) (*Service, error) {
	agents := make(map[string]agent.Agent)
	for i, name := range agent.Names() {
		a, err := agent.New(name, seed+uint64(i))
		if err != nil {
			return nil, err
		}
		agents[name] = a
	}
	for _, a := range extra {
		agents[a.Name()] = a
	}
	if _, ok := agents[defaultAgent]; !ok {
		return nil, fmt.Errorf("unknown default agent %q", defaultAgent)
	}

	return &Service{
		agents:       agents,
		defaultAgent: defaultAgent,
		store:        store,
		log:          log.With().Str("component", "service").Logger(),
		currentFEN:   rules.Initial().FEN(),
	}, nil
}

// ProcessMove handles one /api/move submission. Returned errors are *Error.
func (s *Service) ProcessMove(req *core.MoveRequest) (*core.MoveResponse, error) {
	start := time.Now()
	n := s.requests.Add(1)
	rec := storage.RequestRecord{
		RequestID:  uuid.NewString(),
		ReceivedAt: start.UTC(),
		FEN:        req.FEN,
		MoveFrom:   req.MoveFrom,
		MoveTo:     req.MoveTo,
	}
	if req.Promotion != nil {
		rec.Promotion = *req.Promotion
	}

	resp, err := s.processMove(req, n, &rec)

	rec.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		rec.Outcome = storage.OutcomeError
		rec.Message = err.Error()
	} else {
		rec.Message = resp.Message
		rec.NewFEN = resp.NewFEN
		rec.Outcome = storage.OutcomeMove
		if resp.GameOver {
			rec.Outcome = storage.OutcomeGameOver
		}
	}
	if s.store != nil {
		s.store.RecordRequest(rec)
	}
	return resp, err
}

func (s *Service) processMove(req *core.MoveRequest, n uint64, rec *storage.RequestRecord) (*core.MoveResponse, error) {
	s.log.Info().
		Uint64("request", n).
		Str("from", req.MoveFrom).
		Str("to", req.MoveTo).
		Str("fen", req.FEN).
		Bool("check", req.IsCheck).
		Bool("checkmate", req.IsCheckmate).
		Bool("stalemate", req.IsStalemate).
		Msg("move request")

	pos, err := rules.ParsePosition(req.FEN)
	if err != nil {
		return nil, &Error{
			Status:  http.StatusBadRequest,
			Code:    core.ErrCodeInvalidFEN,
			Err:     "Invalid FEN string",
			Message: "Failed to update board state",
		}
	}
	s.setFEN(pos.FEN())

	if req.MoveFrom == "" && req.MoveTo == "" {
		s.log.Debug().Uint64("request", n).Msg("opening request, engine moves first")
	}

	if req.IsCheckmate || req.IsStalemate {
		return &core.MoveResponse{Message: "Game is over", GameOver: true}, nil
	}

	if pos.IsCheckmate() || pos.IsStalemate() {
		result := pos.Result()
		return &core.MoveResponse{
			Message:  result,
			GameOver: true,
			GameState: &core.GameState{
				IsCheckmate: pos.IsCheckmate(),
				IsStalemate: pos.IsStalemate(),
				Result:      &result,
			},
		}, nil
	}

	a := s.pickAgent(req.Agent)
	rec.Agent = a.Name()

	uci, ok, err := a.SelectMove(pos.FEN())
	if err != nil {
		return nil, &Error{
			Status:  http.StatusInternalServerError,
			Code:    core.ErrCodeInternalError,
			Err:     "Move processing failed",
			Message: err.Error(),
		}
	}
	if !ok {
		return nil, &Error{
			Status:  http.StatusBadRequest,
			Code:    core.ErrCodeNoLegalMoves,
			Err:     "No legal moves available",
			Message: "AI cannot make a move",
		}
	}

	m, err := parseUCI(uci)
	if err == nil {
		var next rules.Position
		next, err = pos.Apply(m)
		if err == nil {
			rec.Reply = uci
			s.setFEN(next.FEN())
			return s.moveResponse(next, m, a.Name(), n), nil
		}
	}
	s.log.Error().Err(err).Str("move", uci).Msg("illegal move generated")
	return nil, &Error{
		Status:  http.StatusInternalServerError,
		Code:    core.ErrCodeIllegalMove,
		Err:     "Illegal move generated",
		Message: "AI generated an invalid move",
	}
}

// moveResponse reports the position after the agent's move. is_game_over is
// left unset so clients still apply a mating or stalemating reply; they detect
// the finished game on their own board.
func (s *Service) moveResponse(next rules.Position, m core.Move, agentName string, n uint64) *core.MoveResponse {
	state := &core.GameState{
		IsCheck:     next.IsCheck(),
		IsCheckmate: next.IsCheckmate(),
		IsStalemate: next.IsStalemate(),
		Turn:        next.Turn().Name(),
	}
	if r := next.Result(); r != "" {
		state.Result = &r
	}

	nm := &core.NextMove{From: m.From, To: m.To}
	if m.Promotion != core.NoPiece {
		p := m.Promotion.String()
		nm.Promotion = &p
	}

	ev := s.log.Info().Str("agent", agentName).Str("move", m.UCI()).Str("turn", state.Turn)
	switch {
	case state.Result != nil:
		ev.Str("result", *state.Result).Msg("agent move ends the game")
	case state.IsCheck:
		ev.Msg("agent move gives check")
	default:
		ev.Msg("agent move")
	}

	return &core.MoveResponse{
		Message:   fmt.Sprintf("AI move successful (%d)", n),
		NextMove:  nm,
		GameState: state,
		Success:   true,
		AgentUsed: agentName,
		NewFEN:    next.FEN(),
	}
}

// pickAgent falls back to the default for empty or unknown names
func (s *Service) pickAgent(name string) agent.Agent {
	if a, ok := s.agents[name]; ok {
		return a
	}
	if name != "" {
		s.log.Warn().Str("agent", name).Str("default", s.defaultAgent).Msg("unknown agent requested, using default")
	}
	return s.agents[s.defaultAgent]
}

func parseUCI(uci string) (core.Move, error) {
	if len(uci) != 4 && len(uci) != 5 {
		return core.Move{}, fmt.Errorf("bad UCI move %q", uci)
	}
	m := core.Move{From: uci[:2], To: uci[2:4], Origin: core.OriginRemote}
	if len(uci) == 5 {
		kind, err := core.ParsePieceKind(uci[4:])
		if err != nil {
			return core.Move{}, err
		}
		m.Promotion = kind
	}
	return m, nil
}

func (s *Service) setFEN(fen string) {
	s.mu.Lock()
	s.currentFEN = fen
	s.mu.Unlock()
}

// Reset puts the shared board back to the starting position
func (s *Service) Reset() *core.ResetResponse {
	fen := rules.Initial().FEN()
	s.setFEN(fen)
	s.log.Info().Msg("game reset")
	return &core.ResetResponse{Message: "Game reset successfully", FEN: fen}
}

func (s *Service) Status() *core.StatusResponse {
	s.mu.RLock()
	fen := s.currentFEN
	s.mu.RUnlock()
	return &core.StatusResponse{
		Status:     "running",
		Message:    "Chess bot server is active",
		CurrentFEN: fen,
		Requests:   s.requests.Load(),
		Storage:    s.GetStorageHealth(),
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	return s.store.Health()
}

// Agents lists the agent names the service accepts
func (s *Service) Agents() []string {
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunRetentionJob periodically purges audit records older than maxAge
func (s *Service) RunRetentionJob(ctx context.Context, interval, maxAge time.Duration) {
	if s.store == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-maxAge)
			s.store.PurgeBefore(cutoff)
			s.log.Debug().Time("cutoff", cutoff).Msg("purged old audit records")
		}
	}
}

// Shutdown stops external agents and closes the storage, flushing queued
// writes
func (s *Service) Shutdown() error {
	var errs []error
	for name, a := range s.agents {
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("agent %s: %w", name, err))
			}
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
