package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"chessbot/internal/client/display"
	"chessbot/internal/remote"
	"chessbot/internal/session"
)

// ErrExit is returned by the exit command
var ErrExit = errors.New("exit")

// Env is what command handlers work on
type Env struct {
	Game    *session.Session
	Client  *remote.Client
	Out     io.Writer
	Verbose bool
	// Timeout bounds the utility requests (health, status)
	Timeout time.Duration
}

func (e *Env) context() (context.Context, context.CancelFunc) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = remote.DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*Env, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	env      *Env
	commands map[string]*Command
}

func NewRegistry(env *Env) *Registry {
	r := &Registry{
		env:      env,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. It returns false once the user asked to exit.
func (r *Registry) Execute(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmdName := parts[0]
	args := parts[1:]
	out := r.env.Out

	cmd, exists := r.commands[cmdName]
	if !exists {
		fmt.Fprintf(out, "%sUnknown command: %s%s\n", display.Red, cmdName, display.Reset)
		fmt.Fprintf(out, "Type 'help' for available commands\n")
		return true
	}

	if r.env.Client != nil {
		r.env.Client.SetVerbose(r.env.Verbose)
	}

	if err := cmd.Handler(r.env, args); err != nil {
		if errors.Is(err, ErrExit) {
			return false
		}
		fmt.Fprintf(out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return true
}

func (r *Registry) helpHandler(e *Env, args []string) error {
	out := e.Out
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	gameCommands := []string{"move", "promote", "cancel", "new", "retry", "show", "moves", "state"}
	utilCommands := []string{"health", "status", "url", "clear", "help", "exit"}

	printCommandGroup := func(title string, names []string) {
		fmt.Fprintf(out, "%s%s:%s\n", display.Yellow, title, display.Reset)
		for _, name := range names {
			cmd, exists := r.commands[name]
			if !exists {
				continue
			}
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			fmt.Fprintf(out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	printCommandGroup("Game Commands", gameCommands)
	fmt.Fprintln(out)
	printCommandGroup("Utility Commands", utilCommands)

	fmt.Fprintf(out, "\nType 'help <command>' for detailed usage\n")
	fmt.Fprintf(out, "Add '-v' to any command for verbose output\n")
	return nil
}

func exitHandler(e *Env, args []string) error {
	fmt.Fprintf(e.Out, "%sGoodbye!%s\n", display.Cyan, display.Reset)
	return ErrExit
}
