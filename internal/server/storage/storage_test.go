package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := NewStore(path, false, zerolog.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("init db: %v", err)
	}
	return s, path
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestRecordAndQueryRequests(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.RecordRequest(RequestRecord{
		RequestID: "r1", ReceivedAt: base, FEN: "f1", MoveFrom: "e2", MoveTo: "e4",
		Agent: "random", Reply: "e7e5", Outcome: OutcomeMove, NewFEN: "f2", LatencyMS: 3,
	})
	s.RecordRequest(RequestRecord{
		RequestID: "r2", ReceivedAt: base.Add(time.Minute), FEN: "f3",
		Agent: "greedy", Outcome: OutcomeGameOver, Message: "Game is over",
	})
	flush(t, s)

	all, err := s.QueryRequests("*", "", 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 2 || all[0].RequestID != "r2" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	byAgent, err := s.QueryRequests("", "random", 0)
	if err != nil || len(byAgent) != 1 {
		t.Fatalf("agent filter: %v %d", err, len(byAgent))
	}
	r := byAgent[0]
	if r.Reply != "e7e5" || r.MoveFrom != "e2" || r.Outcome != OutcomeMove || r.LatencyMS != 3 {
		t.Fatalf("round trip mismatch: %+v", r)
	}

	limited, err := s.QueryRequests("", "", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit: %v %d", err, len(limited))
	}

	s.PurgeBefore(base.Add(30 * time.Second))
	flush(t, s)
	left, _ := s.QueryRequests("", "", 0)
	if len(left) != 1 || left[0].RequestID != "r2" {
		t.Fatalf("purge left %+v", left)
	}
	if !s.IsHealthy() || s.Health() != "ok" {
		t.Fatalf("store should be healthy")
	}
}

func TestFailedWriteDegrades(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	// Invalid outcome violates the CHECK constraint
	s.RecordRequest(RequestRecord{RequestID: "bad", FEN: "f", Outcome: "nope"})
	deadline := time.Now().Add(5 * time.Second)
	for s.IsHealthy() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsHealthy() || s.Health() != "degraded" {
		t.Fatalf("expected degraded store")
	}

	// Dropped silently once degraded
	s.RecordRequest(RequestRecord{RequestID: "ok", FEN: "f", Outcome: OutcomeMove})
	if err := s.Flush(context.Background()); err == nil {
		t.Fatalf("flush on a degraded store should fail")
	}
}

func TestNilStoreHealth(t *testing.T) {
	var s *Store
	if s.Health() != "disabled" {
		t.Fatalf("nil store should report disabled")
	}
}

func TestDeleteDB(t *testing.T) {
	s, path := openStore(t)
	if err := s.DeleteDB(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("database file still present: %v", err)
	}
}
