// Package session is the client-side game core. A Session owns the local
// position, gates gestures by turn, and keeps the board in step with the
// remote move service. Presentation layers drive it through AttemptMove and
// friends and read it back through RenderState.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"chessbot/internal/core"
	"chessbot/internal/gesture"
	"chessbot/internal/rules"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Mover submits a move snapshot to the remote opponent
type Mover interface {
	RequestMove(ctx context.Context, req *core.MoveRequest) (*core.MoveResponse, error)
}

type Config struct {
	PlayerColor core.Color
	Mover       Mover
	// Agent is forwarded to the move service; empty lets the service choose
	Agent   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Outcome is the result of a gesture
type Outcome int

const (
	Rejected Outcome = iota
	Accepted
	PromotionPending
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case PromotionPending:
		return "promotion pending"
	default:
		return "rejected"
	}
}

// RenderState is everything a presentation layer needs to draw the game
type RenderState struct {
	Seq              uint64                    `json:"seq"`
	SessionID        string                    `json:"session_id"`
	FEN              string                    `json:"fen"`
	Turn             string                    `json:"turn"`
	PlayerColor      string                    `json:"player_color"`
	IsCheck          bool                      `json:"is_check"`
	IsCheckmate      bool                      `json:"is_checkmate"`
	IsStalemate      bool                      `json:"is_stalemate"`
	Loading          bool                      `json:"loading"`
	Error            string                    `json:"error,omitempty"`
	PendingPromotion *gesture.PendingPromotion `json:"pending_promotion,omitempty"`
	GameOver         bool                      `json:"game_over"`
	Result           string                    `json:"result,omitempty"`
	Message          string                    `json:"message,omitempty"`
	CanRetry         bool                      `json:"can_retry"`
}

type Session struct {
	mover   Mover
	agent   string
	timeout time.Duration
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu               sync.Mutex
	id               string
	seq              uint64
	position         rules.Position
	playerColor      core.Color
	openingRequested bool
	status           core.RequestStatus
	errMsg           string
	pending          *gesture.PendingPromotion
	gameOver         bool
	message          string
	lastFailed       *core.MoveRequest
	listeners        []func(RenderState)
	closed           bool
}

// New creates a session at the initial position. Nothing is sent until Start.
func New(cfg Config) (*Session, error) {
	if cfg.Mover == nil {
		return nil, errors.New("session: mover is required")
	}
	color := cfg.PlayerColor
	if color == 0 {
		color = core.ColorWhite
	}
	if color != core.ColorWhite && color != core.ColorBlack {
		return nil, errors.New("session: invalid player color")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		mover:       cfg.Mover,
		agent:       cfg.Agent,
		timeout:     timeout,
		ctx:         ctx,
		cancel:      cancel,
		id:          uuid.NewString(),
		position:    rules.Initial(),
		playerColor: color,
	}
	s.log = cfg.Logger.With().Str("component", "session").Logger()
	return s, nil
}

// OnChange registers fn to be called with a fresh RenderState after every
// state change. Calls may arrive from request goroutines; use Seq to order them.
func (s *Session) OnChange(fn func(RenderState)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Start sends the opening request when the human plays black. It is safe to
// call more than once; the request goes out at most once per game.
func (s *Session) Start() {
	s.mu.Lock()
	if !s.startLocked() {
		s.mu.Unlock()
		return
	}
	s.unlockAndNotify()
}

// AttemptMove is the drop handler. Illegal and out-of-turn gestures are
// rejected without touching state.
func (s *Session) AttemptMove(from, to string) (Outcome, error) {
	s.mu.Lock()
	if err := s.gestureAllowedLocked(); err != nil {
		s.mu.Unlock()
		return Rejected, err
	}

	res, err := gesture.Resolve(s.position, from, to)
	if err != nil {
		s.mu.Unlock()
		return Rejected, err
	}

	if res.Pending != nil {
		s.pending = res.Pending
		s.unlockAndNotify()
		return PromotionPending, nil
	}

	if err := s.commitLocked(*res.Move); err != nil {
		s.mu.Unlock()
		return Rejected, err
	}
	s.unlockAndNotify()
	return Accepted, nil
}

// ResolvePromotion completes a pending promotion with kind. An invalid kind
// leaves the promotion pending.
func (s *Session) ResolvePromotion(kind core.PieceKind) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrSessionClosed
	}
	if s.pending == nil {
		s.mu.Unlock()
		return core.ErrNoPendingPromotion
	}

	m, err := gesture.ResolvePromotion(s.position, *s.pending, kind)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.commitLocked(m); err != nil {
		s.mu.Unlock()
		return err
	}
	s.pending = nil
	s.unlockAndNotify()
	return nil
}

// CancelPromotion drops a pending promotion; the piece snaps back
func (s *Session) CancelPromotion() {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.unlockAndNotify()
}

// Reset starts a new game with the same player color
func (s *Session) Reset() {
	s.mu.Lock()
	s.resetLocked(s.playerColor)
	s.unlockAndNotify()
}

// ResetAs starts a new game with the human playing color
func (s *Session) ResetAs(color core.Color) error {
	if color != core.ColorWhite && color != core.ColorBlack {
		return errors.New("session: invalid player color")
	}
	s.mu.Lock()
	s.resetLocked(color)
	s.unlockAndNotify()
	return nil
}

func (s *Session) resetLocked(color core.Color) {
	old := s.id
	s.id = uuid.NewString()
	s.position = rules.Initial()
	s.playerColor = color
	s.openingRequested = false
	s.status = core.StatusIdle
	s.errMsg = ""
	s.pending = nil
	s.gameOver = false
	s.message = ""
	s.lastFailed = nil
	s.log.Info().Str("old_id", old).Str("new_id", s.id).Str("color", color.Name()).Msg("session reset")
	s.startLocked()
}

// Retry resends the last failed request. It never happens on its own.
func (s *Session) Retry() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrSessionClosed
	}
	if s.status == core.StatusLoading {
		s.mu.Unlock()
		return core.ErrRequestInFlight
	}
	if s.lastFailed == nil || s.status != core.StatusError {
		s.mu.Unlock()
		return core.ErrNoRetry
	}
	req := s.lastFailed
	s.log.Info().Str("move_from", req.MoveFrom).Str("move_to", req.MoveTo).Msg("retrying move request")
	s.launchLocked(req)
	s.unlockAndNotify()
	return nil
}

// Wait blocks until no request is in flight
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels any in-flight request and waits for it to finish
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) Position() rules.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *Session) PlayerColor() core.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerColor
}

func (s *Session) Status() core.RequestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// RenderState projects the current state for drawing. It has no side effects.
func (s *Session) RenderState() RenderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

func (s *Session) renderLocked() RenderState {
	pos := s.position
	rs := RenderState{
		Seq:         s.seq,
		SessionID:   s.id,
		FEN:         pos.FEN(),
		Turn:        pos.Turn().Name(),
		PlayerColor: s.playerColor.Name(),
		IsCheck:     pos.IsCheck(),
		IsCheckmate: pos.IsCheckmate(),
		IsStalemate: pos.IsStalemate(),
		Loading:     s.status == core.StatusLoading,
		GameOver:    s.gameOver,
		Result:      pos.Result(),
		Message:     s.message,
		CanRetry:    s.status == core.StatusError && s.lastFailed != nil,
	}
	if s.status == core.StatusError {
		rs.Error = s.errMsg
	}
	if s.pending != nil {
		p := *s.pending
		rs.PendingPromotion = &p
	}
	return rs
}

func (s *Session) gestureAllowedLocked() error {
	switch {
	case s.closed:
		return core.ErrSessionClosed
	case s.gameOver:
		return core.ErrGameOver
	case s.pending != nil:
		return core.ErrPromotionPending
	case !IsPlayersTurn(s.playerColor, s.position.Turn()):
		return core.ErrNotPlayersTurn
	case s.status == core.StatusLoading:
		return core.ErrRequestInFlight
	}
	return nil
}

// unlockAndNotify bumps the sequence, snapshots state under the lock, then
// calls listeners after releasing it.
func (s *Session) unlockAndNotify() {
	s.seq++
	rs := s.renderLocked()
	listeners := make([]func(RenderState), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(rs)
	}
}
