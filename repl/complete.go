// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/jsscope/semantic"
)

// symbolCompleter implements readline.AutoCompleter with the colon
// commands and the names visible at the end of the program.
type symbolCompleter struct {
	s *session
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed.
	start := pos
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	if start == 1 && line[0] == ':' {
		start = 0
	}
	prefix := string(line[start:pos])

	var candidates []string
	switch {
	case strings.HasPrefix(prefix, ":"):
		candidates = commandNames(prefix)
	case prefix == "":
		return nil, 0
	default:
		candidates = c.collectSymbols(prefix)
	}
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, name := range candidates {
		result = append(result, []rune(name[len(prefix):]))
	}
	return result, len([]rune(prefix))
}

func isWordRune(r rune) bool {
	return r == '_' || r == '$' || r == '#' ||
		r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r > 0x7f
}

// collectSymbols returns the root scope bindings and predefined globals
// that start with prefix.
func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	if sem := c.s.sem; sem != nil {
		for name := range sem.RootScope().Bindings() {
			add(name)
		}
	}
	globals, _ := semantic.Globals()
	for name := range globals {
		add(name)
	}

	sort.Strings(result)
	return result
}
