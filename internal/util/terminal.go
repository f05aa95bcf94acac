package util

import "golang.org/x/term"

// defaultTerminalWidth is assumed when the width cannot be queried
const defaultTerminalWidth = 80

// IsTerminal checks if the given file descriptor is a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// TerminalWidth returns the column count of the terminal behind fd,
// or 80 when fd is not a terminal
func TerminalWidth(fd uintptr) int {
	width, _, err := term.GetSize(int(fd))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}
