package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the verdant banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	// Leaf-green gradient.
	lines := []struct {
		text  string
		color string
	}{
		{`                     _             _   `, "#bbf7d0"},
		{` __   _____ _ __ __| | __ _ _ __ | |_ `, "#86efac"},
		{` \ \ / / _ \ '__/ _' |/ _' | '_ \| __|`, "#4ade80"},
		{`  \ V /  __/ | | (_| | (_| | | | | |_ `, "#22c55e"},
		{`   \_/ \___|_|  \__,_|\__,_|_| |_|\__|`, "#16a34a"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("   v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
