// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides helpers for the interactive terminal: TTY
// detection and erasing text printed earlier.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const defaultWidth = 80

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the width of the terminal on f, or 80 when unknown.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// LinesUsed returns how many terminal rows text occupies at the given width,
// counting wrapped lines. A trailing newline leaves the cursor on a new row,
// which is not counted.
func LinesUsed(text string, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	text = strings.TrimSuffix(text, "\n")
	total := 0
	for _, line := range strings.Split(text, "\n") {
		n := runewidth.StringWidth(line)
		rows := (n + width - 1) / width
		if rows < 1 {
			rows = 1
		}
		total += rows
	}
	return total
}

// ClearPreviousLines erases the last n rows above the cursor and leaves the
// cursor at the start of the topmost erased row.
func ClearPreviousLines(w io.Writer, n int) {
	fmt.Fprint(w, "\r\x1b[2K")
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\x1b[1A\x1b[2K")
	}
}
