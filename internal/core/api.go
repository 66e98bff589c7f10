package core

import "encoding/json"

// Request types

// MoveRequest is the snapshot submitted after every human move, built from the
// position that results from that move. The opening request sent on behalf of
// a black human leaves MoveFrom and MoveTo empty.
type MoveRequest struct {
	FEN         string   `json:"fen" validate:"required,max=100"`
	MoveFrom    string   `json:"move_from" validate:"omitempty,len=2"`
	MoveTo      string   `json:"move_to" validate:"omitempty,len=2"`
	Promotion   *string  `json:"promotion" validate:"omitempty,oneof=q r b n"`
	ValidMoves  []string `json:"valid_moves"`
	IsCheck     bool     `json:"is_check"`
	IsCheckmate bool     `json:"is_checkmate"`
	IsStalemate bool     `json:"is_stalemate"`
	Agent       string   `json:"agent,omitempty" validate:"omitempty,max=32"`
}

// Response types

type MoveResponse struct {
	Message   string     `json:"message"`
	NextMove  *NextMove  `json:"next_move"`
	GameOver  bool       `json:"game_over,omitempty"`
	GameState *GameState `json:"game_state,omitempty"`
	Success   bool       `json:"success,omitempty"`
	AgentUsed string     `json:"agent_used,omitempty"`
	NewFEN    string     `json:"new_fen,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Terminal reports whether the response ends synchronization for the game
func (r *MoveResponse) Terminal() bool {
	if r == nil {
		return false
	}
	return r.GameOver || (r.GameState != nil && r.GameState.IsGameOver)
}

type NextMove struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Promotion *string `json:"promotion"`
	// Malformed is set when next_move was present but not a move object
	Malformed bool `json:"-"`
}

// UnmarshalJSON never fails: a next_move of the wrong shape must not spoil the
// rest of the response, so it decodes as Malformed instead.
func (n *NextMove) UnmarshalJSON(data []byte) error {
	type wire NextMove
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		*n = NextMove{Malformed: true}
		return nil
	}
	*n = NextMove(w)
	return nil
}

type GameState struct {
	IsCheck     bool    `json:"is_check"`
	IsCheckmate bool    `json:"is_checkmate"`
	IsStalemate bool    `json:"is_stalemate"`
	IsGameOver  bool    `json:"is_game_over,omitempty"`
	Result      *string `json:"result,omitempty"`
	Turn        string  `json:"turn,omitempty"` // "white" or "black"
}

type ResetResponse struct {
	Message string `json:"message"`
	FEN     string `json:"fen"`
}

type StatusResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	CurrentFEN string `json:"current_fen"`
	Requests   uint64 `json:"requests"`
	Storage    string `json:"storage,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}
