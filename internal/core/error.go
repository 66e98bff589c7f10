package core

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrCodeInvalidFEN        = "INVALID_FEN"
	ErrCodeNoLegalMoves      = "NO_LEGAL_MOVES"
	ErrCodeIllegalMove       = "ILLEGAL_MOVE"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

var (
	// ErrIllegalMove means a gesture or move does not match any legal move.
	// Recovered locally: the drop is undone and nothing is sent.
	ErrIllegalMove = errors.New("illegal move")

	ErrNotPlayersTurn     = errors.New("not the player's turn")
	ErrPromotionPending   = errors.New("promotion choice pending")
	ErrNoPendingPromotion = errors.New("no promotion pending")
	ErrRequestInFlight    = errors.New("move request in flight")
	ErrGameOver           = errors.New("game over")
	ErrInvalidPiece       = errors.New("invalid promotion piece")
	ErrNoRetry            = errors.New("no failed request to retry")
	ErrSessionClosed      = errors.New("session closed")
)

// TransportError covers network failures and non-success HTTP statuses.
// StatusCode is zero when the request never got a response.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("move service returned %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("move service returned %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("move service unreachable: %v", e.Err)
	default:
		return "move service request failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
