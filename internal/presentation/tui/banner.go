package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the HiyaDrive banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` _   _ _             ____       _           `, "#34d399"},
		{`| | | (_)_   _  __ _|  _ \ _ __(_)_   _____ `, "#2dd4bf"},
		{`| |_| | | | | |/ _' | | | | '__| \ \ / / _ \`, "#22d3ee"},
		{`|  _  | | |_| | (_| | |_| | |  | |\ V /  __/`, "#38bdf8"},
		{`|_| |_|_|\__, |\__,_|____/|_|  |_| \_/ \___|`, "#60a5fa"},
		{`         |___/                              `, "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
