package commands

import (
	"fmt"
	"sort"
	"strings"

	"chessbot/internal/client/display"
	"chessbot/internal/core"
	"chessbot/internal/session"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Drop a piece (king onto rook castles)",
		Usage:       "move <from><to> | move <from> <to>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "promote",
		ShortName:   "p",
		Description: "Choose the piece for a pending promotion",
		Usage:       "promote <q|r|b|n>",
		Handler:     promoteHandler,
	})

	r.Register(&Command{
		Name:        "cancel",
		ShortName:   "c",
		Description: "Cancel a pending promotion",
		Usage:       "cancel",
		Handler:     cancelHandler,
	})

	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a new game",
		Usage:       "new [white|black]",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "retry",
		ShortName:   "r",
		Description: "Resend the last failed move request",
		Usage:       "retry",
		Handler:     retryHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "moves",
		ShortName:   "l",
		Description: "List legal moves",
		Usage:       "moves",
		Handler:     movesHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw render state JSON",
		Usage:       "state",
		Handler:     gameStateHandler,
	})
}

func moveHandler(e *Env, args []string) error {
	var from, to string
	switch {
	case len(args) == 1 && len(args[0]) == 4:
		from, to = args[0][:2], args[0][2:]
	case len(args) == 2:
		from, to = args[0], args[1]
	default:
		return fmt.Errorf("usage: move <from><to>")
	}

	out, err := e.Game.AttemptMove(strings.ToLower(from), strings.ToLower(to))
	if err != nil {
		return err
	}
	if out == session.PromotionPending {
		fmt.Fprintf(e.Out, "%sPromotion: choose q, r, b or n (promote <piece>, cancel to take back)%s\n", display.Yellow, display.Reset)
		return nil
	}

	fmt.Fprintf(e.Out, "%sWaiting for opponent...%s\n", display.Cyan, display.Reset)
	e.Game.Wait()
	return showBoardHandler(e, nil)
}

func promoteHandler(e *Env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: promote <q|r|b|n>")
	}
	kind, err := core.ParsePieceKind(strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	if err := e.Game.ResolvePromotion(kind); err != nil {
		return err
	}
	e.Game.Wait()
	return showBoardHandler(e, nil)
}

func cancelHandler(e *Env, args []string) error {
	e.Game.CancelPromotion()
	return showBoardHandler(e, nil)
}

func newGameHandler(e *Env, args []string) error {
	if len(args) == 0 {
		e.Game.Reset()
	} else {
		color, err := core.ParseColor(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		if err := e.Game.ResetAs(color); err != nil {
			return err
		}
	}
	fmt.Fprintf(e.Out, "%sNew game started%s\n", display.Cyan, display.Reset)
	e.Game.Wait()
	return showBoardHandler(e, nil)
}

func retryHandler(e *Env, args []string) error {
	if err := e.Game.Retry(); err != nil {
		return err
	}
	e.Game.Wait()
	return showBoardHandler(e, nil)
}

func showBoardHandler(e *Env, args []string) error {
	rs := e.Game.RenderState()
	b := e.Game.Position().Board()
	if b == nil {
		return fmt.Errorf("position unavailable")
	}

	fmt.Fprintln(e.Out)
	display.RenderBoard(e.Out, b.ToASCII(e.Game.PlayerColor() == core.ColorBlack))
	fmt.Fprintln(e.Out)
	display.RenderStatus(e.Out, rs)
	if e.Verbose {
		fmt.Fprintf(e.Out, "FEN: %s\n", rs.FEN)
	}
	return nil
}

func movesHandler(e *Env, args []string) error {
	pos := e.Game.Position()
	legal := pos.LegalMoves()
	if len(legal) == 0 {
		fmt.Fprintln(e.Out, "No legal moves")
		return nil
	}

	moves := make([]string, 0, len(legal))
	for _, lm := range legal {
		moves = append(moves, fmt.Sprintf("%s(%s%s)", lm.SAN, lm.From, lm.To))
	}
	sort.Strings(moves)
	fmt.Fprintf(e.Out, "%s%s to move:%s %s\n", display.Cyan, pos.Turn().Name(), display.Reset, strings.Join(moves, " "))
	return nil
}

func gameStateHandler(e *Env, args []string) error {
	display.PrettyPrintJSON(e.Out, e.Game.RenderState())
	return nil
}
