package storage

import "time"

// RequestRecord is one processed /api/move call
type RequestRecord struct {
	RequestID  string    `db:"request_id"`
	ReceivedAt time.Time `db:"received_at"`
	FEN        string    `db:"fen"`
	MoveFrom   string    `db:"move_from"`
	MoveTo     string    `db:"move_to"`
	Promotion  string    `db:"promotion"`
	Agent      string    `db:"agent"`
	Reply      string    `db:"reply"`   // UCI, empty when no move was returned
	Outcome    string    `db:"outcome"` // "move", "game_over" or "error"
	NewFEN     string    `db:"new_fen"`
	Message    string    `db:"message"`
	LatencyMS  int64     `db:"latency_ms"`
}

const (
	OutcomeMove     = "move"
	OutcomeGameOver = "game_over"
	OutcomeError    = "error"
)

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS requests (
	request_id TEXT PRIMARY KEY,
	received_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	fen TEXT NOT NULL,
	move_from TEXT NOT NULL DEFAULT '',
	move_to TEXT NOT NULL DEFAULT '',
	promotion TEXT NOT NULL DEFAULT '',
	agent TEXT NOT NULL DEFAULT '',
	reply TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL CHECK(outcome IN ('move', 'game_over', 'error')),
	new_fen TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	latency_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_requests_received_at ON requests(received_at);
CREATE INDEX IF NOT EXISTS idx_requests_agent ON requests(agent);
`
