package session

import (
	"context"
	"errors"
	"fmt"

	"chessbot/internal/board"
	"chessbot/internal/core"
	"chessbot/internal/rules"
)

// startLocked sends the opening request for a black human. It reports whether
// anything changed.
func (s *Session) startLocked() bool {
	if s.closed || s.gameOver || s.openingRequested || s.status == core.StatusLoading {
		return false
	}
	if s.playerColor != core.ColorBlack || IsPlayersTurn(s.playerColor, s.position.Turn()) {
		return false
	}
	s.openingRequested = true
	s.log.Debug().Str("session", s.id).Msg("requesting opening move")
	s.launchLocked(s.buildRequest(s.position, nil))
	return true
}

// commitLocked applies a finalized human move and submits the result
func (s *Session) commitLocked(m core.Move) error {
	if m.Origin != core.OriginHuman {
		return fmt.Errorf("%w: only human moves are committed locally", core.ErrIllegalMove)
	}
	next, err := s.position.Apply(m)
	if err != nil {
		return err
	}
	s.position = next
	s.message = ""
	s.log.Debug().Str("session", s.id).Str("move", m.UCI()).Msg("human move applied")
	s.launchLocked(s.buildRequest(next, &m))
	return nil
}

// buildRequest snapshots pos for the move service. m is nil for the opening
// request.
func (s *Session) buildRequest(pos rules.Position, m *core.Move) *core.MoveRequest {
	req := &core.MoveRequest{
		FEN:         pos.FEN(),
		ValidMoves:  pos.ValidMoveSANs(),
		IsCheck:     pos.IsCheck(),
		IsCheckmate: pos.IsCheckmate(),
		IsStalemate: pos.IsStalemate(),
		Agent:       s.agent,
	}
	if req.ValidMoves == nil {
		req.ValidMoves = []string{}
	}
	if m != nil {
		req.MoveFrom = m.From
		req.MoveTo = m.To
		if m.Promotion != core.NoPiece {
			p := m.Promotion.String()
			req.Promotion = &p
		}
	}
	return req
}

// launchLocked marks the session loading and runs the request on its own
// goroutine. The network call never holds the lock.
func (s *Session) launchLocked(req *core.MoveRequest) {
	s.status = core.StatusLoading
	s.errMsg = ""
	s.lastFailed = nil
	id := s.id
	s.wg.Add(1)
	go s.run(id, req)
}

func (s *Session) run(id string, req *core.MoveRequest) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	resp, err := s.mover.RequestMove(ctx, req)

	s.mu.Lock()
	if id != s.id {
		s.log.Info().Str("stale", id).Str("session", s.id).Msg("discarding response for a previous game")
		s.mu.Unlock()
		return
	}
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.handleResponseLocked(req, resp, err)
	s.unlockAndNotify()
}

func (s *Session) handleResponseLocked(req *core.MoveRequest, resp *core.MoveResponse, err error) {
	if err == nil && resp == nil {
		err = errors.New("empty response from move service")
	}
	if err != nil {
		s.status = core.StatusError
		s.errMsg = err.Error()
		s.lastFailed = req
		s.log.Warn().Err(err).Str("session", s.id).Msg("move request failed")
		return
	}

	s.message = resp.Message
	if resp.Terminal() {
		s.status = core.StatusIdle
		s.gameOver = true
		s.log.Info().Str("session", s.id).Str("message", resp.Message).Msg("move service reports game over")
		return
	}

	if resp.NextMove == nil {
		s.status = core.StatusIdle
		return
	}
	m, ok := parseNextMove(resp.NextMove)
	if !ok {
		s.status = core.StatusIdle
		s.log.Warn().
			Str("session", s.id).
			Str("from", resp.NextMove.From).
			Str("to", resp.NextMove.To).
			Msg("ignoring malformed next_move")
		return
	}

	next, err := s.position.Apply(m)
	if err != nil {
		s.status = core.StatusError
		s.errMsg = fmt.Sprintf("move service returned an illegal move %s", m.UCI())
		s.lastFailed = req
		s.log.Warn().Err(err).Str("session", s.id).Msg("remote move rejected")
		return
	}

	s.position = next
	s.status = core.StatusIdle
	if next.IsGameOver() {
		s.gameOver = true
	}
	s.log.Debug().Str("session", s.id).Str("move", m.UCI()).Bool("game_over", s.gameOver).Msg("remote move applied")
}

// parseNextMove converts the wire move; anything unusable is malformed
func parseNextMove(nm *core.NextMove) (core.Move, bool) {
	if nm.Malformed || !board.ValidSquare(nm.From) || !board.ValidSquare(nm.To) {
		return core.Move{}, false
	}
	m := core.Move{From: nm.From, To: nm.To, Origin: core.OriginRemote}
	if nm.Promotion != nil && *nm.Promotion != "" {
		kind, err := core.ParsePieceKind(*nm.Promotion)
		if err != nil {
			return core.Move{}, false
		}
		m.Promotion = kind
	}
	return m, true
}
