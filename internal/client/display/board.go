package display

import (
	"fmt"
	"io"
	"strings"

	"chessbot/internal/session"
)

// RenderBoard renders an ASCII board with colored pieces
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		isFileLine := (i == 0) || (i == 9)

		for _, char := range line {
			switch {
			case char >= 'a' && char <= 'h' && isFileLine:
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			case char >= 'A' && char <= 'Z':
				// White pieces
				fmt.Fprintf(w, "%s%c%s", Blue, char, Reset)
			case char >= 'a' && char <= 'z' && !isFileLine:
				// Black pieces
				fmt.Fprintf(w, "%s%c%s", Red, char, Reset)
			case char >= '1' && char <= '8':
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			default:
				fmt.Fprintf(w, "%c", char)
			}
		}
		fmt.Fprintln(w)
	}
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn string) string {
	if turn == "w" || turn == "white" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

// RenderStatus prints the status line under the board
func RenderStatus(w io.Writer, rs session.RenderState) {
	fmt.Fprintf(w, "You: %s  Turn: %s", ColorForTurn(rs.PlayerColor), ColorForTurn(rs.Turn))
	switch {
	case rs.Loading:
		fmt.Fprintf(w, "  %sthinking...%s", Yellow, Reset)
	case rs.IsCheck && !rs.IsCheckmate:
		fmt.Fprintf(w, "  %scheck%s", Magenta, Reset)
	}
	fmt.Fprintln(w)

	if rs.PendingPromotion != nil {
		fmt.Fprintf(w, "%sPromotion %s%s pending: choose q, r, b or n (promote <piece>)%s\n",
			Yellow, rs.PendingPromotion.From, rs.PendingPromotion.To, Reset)
	}
	if rs.Error != "" {
		fmt.Fprintf(w, "%sError: %s%s\n", Red, rs.Error, Reset)
		if rs.CanRetry {
			fmt.Fprintf(w, "Type 'retry' to resend the last move\n")
		}
	}
	if rs.Result != "" {
		fmt.Fprintf(w, "%s%s%s\n", Green, rs.Result, Reset)
	} else if rs.GameOver {
		fmt.Fprintf(w, "%sGame over%s\n", Green, Reset)
	}
	if rs.Message != "" && rs.Error == "" {
		fmt.Fprintf(w, "%s%s%s\n", Cyan, rs.Message, Reset)
	}
}
