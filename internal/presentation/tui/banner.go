package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the itemtree banner to w, colored when the terminal supports it.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text, color string
	}{
		{" _ _                 _                 ", "#818cf8"},
		{"(_) |_ ___ _ __ ___ | |_ _ __ ___  ___ ", "#a78bfa"},
		{"| | __/ _ \\ '_ ` _ \\| __| '__/ _ \\/ _ \\", "#c084fc"},
		{"| | ||  __/ | | | | | |_| | |  __/  __/", "#e879f9"},
		{"|_|\\__\\___|_| |_| |_|\\__|_|  \\___|\\___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
