// Package main runs the reference move service: an HTTP/JSON server that
// answers each submitted position with a move from a built-in agent.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessbot/cmd/chess-server/cli"
	"chessbot/internal/config"
	"chessbot/internal/server/agent"
	"chessbot/internal/server/http"
	"chessbot/internal/server/service"
	"chessbot/internal/server/storage"

	"github.com/rs/zerolog"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg := config.Server{}
	flag.StringVar(&cfg.Host, "host", "localhost", "Listen host")
	flag.IntVar(&cfg.Port, "port", config.GetenvInt(config.EnvPort, config.DefaultPort), "Listen port")
	flag.StringVar(&cfg.StoragePath, "storage-path", "", "Path to SQLite audit database (disables persistence if empty)")
	flag.StringVar(&cfg.PIDPath, "pid", "", "Optional path to write PID file")
	flag.BoolVar(&cfg.PIDLock, "pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	flag.StringVar(&cfg.Agent, "agent", config.DefaultAgent, "Default agent (random, greedy, minimax, minimax-1, engine)")
	flag.StringVar(&cfg.EnginePath, "engine", "", "UCI engine binary served as the engine agent (e.g. stockfish)")
	moveTime := flag.Duration("movetime", 200*time.Millisecond, "Engine search time per move")
	flag.BoolVar(&cfg.Dev, "dev", false, "Development mode (relaxed rate limits, debug logging)")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Agent random seed")
	retention := flag.Duration("retention", service.DefaultRetention, "Audit record retention")
	flag.Parse()

	level := zerolog.InfoLevel
	if cfg.Dev {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	if cfg.PIDPath != "" {
		pid, err := writePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to manage PID file")
		}
		defer pid.Release()
		log.Info().Str("path", cfg.PIDPath).Bool("lock", cfg.PIDLock).Msg("PID file created")
	}

	var store *storage.Store
	if cfg.StoragePath != "" {
		var err error
		store, err = storage.NewStore(cfg.StoragePath, cfg.Dev, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize storage")
		}
		if err := store.InitDB(); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize schema")
		}
		log.Info().Str("path", cfg.StoragePath).Msg("request audit enabled")
	} else {
		log.Info().Msg("persistent storage disabled (use -storage-path to enable)")
	}

	var extra []agent.Agent
	if cfg.EnginePath != "" {
		eng, err := agent.NewUCI(cfg.EnginePath, *moveTime)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.EnginePath).Msg("failed to start engine")
		}
		extra = append(extra, eng)
		log.Info().Str("path", cfg.EnginePath).Dur("movetime", *moveTime).Msg("engine agent enabled")
	}

	svc, err := service.New(store, cfg.Agent, *seed, log, extra...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize service")
	}

	retentionCtx, retentionCancel := context.WithCancel(context.Background())
	go svc.RunRetentionJob(retentionCtx, service.RetentionJobInterval, *retention)

	app := http.NewFiberApp(svc, cfg.Dev)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	go func() {
		log.Info().
			Str("addr", "http://"+addr).
			Str("agent", cfg.Agent).
			Strs("agents", svc.Agents()).
			Bool("dev", cfg.Dev).
			Msg("move service starting")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}

	retentionCancel()

	if err := svc.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("service shutdown error")
	}

	log.Info().Msg("server exited")
}
