// Package cli implements the "db" maintenance subcommands of chess-server
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"chessbot/internal/server/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	return run(os.Stdout, args)
}

func run(out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, purge")
	}

	switch args[0] {
	case "init":
		return runInit(out, args[1:])
	case "delete":
		return runDelete(out, args[1:])
	case "query":
		return runQuery(out, args[1:])
	case "purge":
		return runPurge(out, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func openStore(path string) (*storage.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	store, err := storage.NewStore(path, false, zerolog.Nop())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", *path)
	return nil
}

func runDelete(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", *path)
	return nil
}

func runQuery(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	requestID := fs.String("requestId", "", "Request ID to filter (optional, * for all)")
	agentName := fs.String("agent", "", "Agent to filter (optional, * for all)")
	limit := fs.Int("limit", 50, "Maximum rows, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *requestID != "" && *requestID != "*" {
		if _, err := uuid.Parse(*requestID); err != nil {
			return fmt.Errorf("invalid request ID %q: %w", *requestID, err)
		}
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.QueryRequests(*requestID, *agentName, *limit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No requests found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Request ID\tReceived\tMove\tAgent\tReply\tOutcome\tLatency")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, r := range records {
		move := "(opening)"
		if r.MoveFrom != "" {
			move = r.MoveFrom + r.MoveTo + r.Promotion
		}
		reply := r.Reply
		if reply == "" {
			reply = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%dms\n",
			shortID(r.RequestID),
			r.ReceivedAt.Format("2006-01-02 15:04:05"),
			move,
			r.Agent,
			reply,
			r.Outcome,
			r.LatencyMS,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d request(s)\n", len(records))
	return nil
}

func runPurge(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	olderThan := fs.Duration("older-than", 7*24*time.Hour, "Remove records older than this")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *olderThan < 0 {
		return fmt.Errorf("older-than must not be negative")
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	cutoff := time.Now().UTC().Add(-*olderThan)
	store.PurgeBefore(cutoff)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Flush(ctx); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	fmt.Fprintf(out, "Purged requests received before %s\n", cutoff.Format(time.RFC3339))
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
