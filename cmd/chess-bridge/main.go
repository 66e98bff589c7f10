// Package main runs the websocket bridge: browser boards connect to /ws and
// each gets a game session against the remote move service.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chessbot/internal/bridge"
	"chessbot/internal/config"
	"chessbot/internal/core"
	"chessbot/internal/remote"

	"github.com/rs/zerolog"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Bridge{}
	flag.StringVar(&cfg.Listen, "listen", "localhost:8090", "Bridge listen address")
	flag.StringVar(&cfg.ServerURL, "url", config.Getenv(config.EnvServerURL, config.DefaultServerURL), "Move service base URL")
	flag.StringVar(&cfg.PlayerColor, "color", "white", "Default color for new boards (white or black)")
	flag.StringVar(&cfg.Agent, "agent", "", "Agent requested from the move service (random, greedy, minimax, minimax-1, engine)")
	flag.DurationVar(&cfg.Timeout, "timeout", remote.DefaultTimeout, "Move request timeout")
	flag.BoolVar(&cfg.Verbose, "v", false, "Debug logging")
	origins := flag.String("origins", "", "Comma-separated origin host patterns allowed besides the bridge host, e.g. example.com,*.example.com")
	flag.Parse()

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	color, _ := core.ParseColor(cfg.PlayerColor)

	client := remote.New(cfg.ServerURL, log)
	client.HTTPClient.Timeout = cfg.Timeout

	b := bridge.New(bridge.Config{
		Mover:        client,
		Agent:        cfg.Agent,
		Timeout:      cfg.Timeout,
		PlayerColor:  color,
		AllowOrigins: strings.Split(*origins, ","),
		Logger:       log,
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Listen).Str("upstream", cfg.ServerURL).Msg("bridge starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Int("connections", b.Connections()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("bridge forced to shutdown")
	}
	b.Close()

	log.Info().Msg("bridge exited")
}
