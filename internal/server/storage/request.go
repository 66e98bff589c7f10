package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordRequest asynchronously appends a request to the audit log
func (s *Store) RecordRequest(record RequestRecord) {
	s.enqueue("request", func(tx *sql.Tx) error {
		query := `INSERT INTO requests (
			request_id, received_at, fen, move_from, move_to, promotion,
			agent, reply, outcome, new_fen, message, latency_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.RequestID, record.ReceivedAt, record.FEN,
			record.MoveFrom, record.MoveTo, record.Promotion,
			record.Agent, record.Reply, record.Outcome,
			record.NewFEN, record.Message, record.LatencyMS,
		)
		return err
	})
}

// PurgeBefore asynchronously removes records received before t
func (s *Store) PurgeBefore(t time.Time) {
	s.enqueue("purge", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM requests WHERE received_at < ?`, t)
		return err
	})
}

// QueryRequests returns the newest records first. Empty or "*" filters match
// everything; limit <= 0 means no limit.
func (s *Store) QueryRequests(requestID, agent string, limit int) ([]RequestRecord, error) {
	query := `SELECT
		request_id, received_at, fen, move_from, move_to, promotion,
		agent, reply, outcome, new_fen, message, latency_ms
	FROM requests WHERE 1=1`

	var args []any

	if requestID != "" && requestID != "*" {
		query += " AND request_id = ?"
		args = append(args, requestID)
	}
	if agent != "" && agent != "*" {
		query += " AND agent = ?"
		args = append(args, agent)
	}

	query += " ORDER BY received_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []RequestRecord
	for rows.Next() {
		var r RequestRecord
		err := rows.Scan(
			&r.RequestID, &r.ReceivedAt, &r.FEN,
			&r.MoveFrom, &r.MoveTo, &r.Promotion,
			&r.Agent, &r.Reply, &r.Outcome,
			&r.NewFEN, &r.Message, &r.LatencyMS,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return records, nil
}
