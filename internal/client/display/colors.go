package display

import "golang.org/x/term"

// Terminal color codes. Cleared by DisableColors.
var (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// DisableColors turns every color code into an empty string
func DisableColors() {
	Reset, Red, Green, Yellow, Blue, Magenta, Cyan, White = "", "", "", "", "", "", "", ""
}

// AutoColors keeps colors only when fd is a terminal
func AutoColors(fd int) {
	if !term.IsTerminal(fd) {
		DisableColors()
	}
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + Yellow + " > " + Reset
}
