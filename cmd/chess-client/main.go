// Package main is the terminal client: a human plays one color against the
// remote move service through a readline prompt.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"chessbot/internal/client/commands"
	"chessbot/internal/client/display"
	"chessbot/internal/config"
	"chessbot/internal/core"
	"chessbot/internal/remote"
	"chessbot/internal/session"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Client{}
	flag.StringVar(&cfg.ServerURL, "url", config.Getenv(config.EnvServerURL, config.DefaultServerURL), "Move service base URL")
	flag.StringVar(&cfg.PlayerColor, "color", "white", "Color played by the human (white or black)")
	flag.StringVar(&cfg.Agent, "agent", "", "Agent requested from the move service (random, greedy, minimax, minimax-1, engine)")
	flag.DurationVar(&cfg.Timeout, "timeout", remote.DefaultTimeout, "Move request timeout")
	flag.BoolVar(&cfg.Verbose, "v", false, "Log transport activity to stderr")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	color, _ := core.ParseColor(cfg.PlayerColor)

	if *noColor {
		display.DisableColors()
	} else {
		display.AutoColors(int(os.Stdout.Fd()))
	}

	level := zerolog.WarnLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	client := remote.New(cfg.ServerURL, logger)
	client.HTTPClient.Timeout = cfg.Timeout

	game, err := session.New(session.Config{
		PlayerColor: color,
		Mover:       client,
		Agent:       cfg.Agent,
		Timeout:     cfg.Timeout,
		Logger:      logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer game.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     ".chessbot_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	out := rl.Stdout()
	fmt.Fprintf(out, "%sChess Client%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(out, "%sAPI: %s%s\n", display.Cyan, cfg.ServerURL, display.Reset)
	fmt.Fprintf(out, "Type 'help' for commands\n\n")

	env := &commands.Env{
		Game:    game,
		Client:  client,
		Out:     out,
		Timeout: cfg.Timeout,
	}
	registry := commands.NewRegistry(env)

	game.Start()
	game.Wait()
	registry.Execute("show")

	for {
		rl.SetPrompt(buildPrompt(game.RenderState()))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" {
			break
		}

		if strings.HasSuffix(line, " -v") {
			env.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			env.Verbose = false
		}

		if !registry.Execute(line) {
			break
		}
	}
}

func buildPrompt(rs session.RenderState) string {
	prompt := "chess" + display.Yellow + " [" + display.Reset +
		display.ColorForTurn(rs.PlayerColor) + display.Yellow + "]" + display.Reset

	switch {
	case rs.GameOver:
		prompt += " - " + display.Green + "over" + display.Reset
	case rs.PendingPromotion != nil:
		prompt += " - " + display.Yellow + "promote" + display.Reset
	case rs.Error != "":
		prompt += " - " + display.Red + "error" + display.Reset
	default:
		prompt += " - Turn:" + display.ColorForTurn(rs.Turn)
	}
	return display.Prompt(prompt)
}
