package session

import "chessbot/internal/core"

// IsPlayersTurn reports whether the human may move in a position where
// currentTurn is to move.
func IsPlayersTurn(playerColor, currentTurn core.Color) bool {
	return playerColor == currentTurn
}
