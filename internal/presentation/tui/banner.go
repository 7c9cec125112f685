package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the sensact banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"  ___  ___ _ __  ___  __ _  ___| |_", "#2dd4bf"},
		{" / __|/ _ \\ '_ \\/ __|/ _` |/ __| __|", "#22d3ee"},
		{" \\__ \\  __/ | | \\__ \\ (_| | (__| |_", "#38bdf8"},
		{" |___/\\___|_| |_|___/\\__,_|\\___|\\__|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
