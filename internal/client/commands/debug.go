package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"chessbot/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check move service health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "status",
		ShortName:   "i",
		Description: "Show move service status",
		Usage:       "status",
		Handler:     statusHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set the move service URL",
		Usage:       "url [apiUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func healthHandler(e *Env, args []string) error {
	ctx, cancel := e.context()
	defer cancel()
	resp, err := e.Client.Health(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.Out, "%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(e.Out, "  Status:  %s\n", resp.Status)
	t := time.Unix(resp.Time, 0)
	fmt.Fprintf(e.Out, "  Time:    %s\n", t.Format("2006-01-02 15:04:05"))
	if resp.Storage != "" {
		fmt.Fprintf(e.Out, "  Storage: %s\n", resp.Storage)
	}
	return nil
}

func statusHandler(e *Env, args []string) error {
	ctx, cancel := e.context()
	defer cancel()
	resp, err := e.Client.Status(ctx)
	if err != nil {
		return err
	}
	if e.Verbose {
		display.PrettyPrintJSON(e.Out, resp)
		return nil
	}

	fmt.Fprintf(e.Out, "%sServer Status:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(e.Out, "  Status:   %s\n", resp.Status)
	fmt.Fprintf(e.Out, "  Message:  %s\n", resp.Message)
	fmt.Fprintf(e.Out, "  Requests: %d\n", resp.Requests)
	fmt.Fprintf(e.Out, "  FEN:      %s\n", resp.CurrentFEN)
	return nil
}

func urlHandler(e *Env, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(e.Out, "Current API URL: %s\n", e.Client.BaseURL)
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	e.Client.SetBaseURL(url)

	fmt.Fprintf(e.Out, "%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func clearHandler(e *Env, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
