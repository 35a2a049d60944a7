// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// ParseColorMode converts the --color flag values auto, always and never.
func ParseColorMode(s string) (ColorMode, bool) {
	switch s {
	case "auto", "":
		return ColorAuto, true
	case "always":
		return ColorAlways, true
	case "never":
		return ColorNever, true
	}
	return ColorAuto, false
}

// Enabled resolves the mode for output written to w.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(w)
}

// IsTerminal reports whether w is a file connected to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type paint func(a ...interface{}) string

// palette holds the styles used for one rendering.
type palette struct {
	bold    paint
	err     paint
	warning paint
	note    paint
	gutter  paint
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) paint {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		bold:    mk(color.Bold),
		err:     mk(color.Bold, color.FgRed),
		warning: mk(color.Bold, color.FgYellow),
		note:    mk(color.Bold, color.FgCyan),
		gutter:  mk(color.Bold, color.FgBlue),
	}
}

func (p palette) severity(s Severity) paint {
	switch s {
	case SeverityWarning:
		return p.warning
	case SeverityNote:
		return p.note
	}
	return p.err
}
