// Copyright © 2024 The ELPS authors

package formatter

import "strings"

// Config holds formatting configuration.
type Config struct {
	IndentSize    int  // spaces per indent level (default: 2)
	UseTabs       bool // indent with one tab per level instead of spaces
	MaxBlankLines int  // max consecutive blank lines (default: 1)

	// IndentCaseBodies indents statements under a case label one level
	// deeper than the label.
	IndentCaseBodies bool
}

// DefaultConfig returns the default formatting configuration.
func DefaultConfig() *Config {
	return &Config{
		IndentSize:       2,
		MaxBlankLines:    1,
		IndentCaseBodies: true,
	}
}

func (c *Config) indent(level int) string {
	if level <= 0 {
		return ""
	}
	if c.UseTabs {
		return strings.Repeat("\t", level/c.step())
	}
	return strings.Repeat(" ", level)
}

// step is the width of one indent level in columns.
func (c *Config) step() int {
	if c.IndentSize <= 0 {
		return 2
	}
	return c.IndentSize
}

// continuationPrefixes start lines that continue the expression of the
// previous line and get one extra level.
var continuationPrefixes = []string{"?.", "??", "&&", "||", "?", ":"}

func isContinuation(line string) bool {
	if strings.HasPrefix(line, ".") {
		return !strings.HasPrefix(line, "...")
	}
	for _, p := range continuationPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// isCaseLabel reports whether line starts a case or default clause.
func isCaseLabel(line string) bool {
	for _, kw := range []string{"case", "default"} {
		if rest, ok := strings.CutPrefix(line, kw); ok {
			if rest == "" || !isWordByte(rest[0]) {
				return true
			}
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
