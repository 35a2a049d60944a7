// Copyright © 2024 The ELPS authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	used := make(map[string]bool)
	for tok := Type(0); tok < numTokenTypes; tok++ {
		str := tok.String()
		if str == "" {
			t.Errorf("token type %x has empty string value", tok)
			continue
		}
		if used[str] {
			t.Errorf("token type string used twice: %v", tok)
		}
		used[str] = true
	}
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, FUNCTION, Keywords["function"])
	assert.Equal(t, WITH, Keywords["with"])
	_, ok := Keywords["let"]
	assert.False(t, ok, "let is contextual, not reserved")
	assert.True(t, VAR.IsKeyword())
	assert.False(t, IDENT.IsKeyword())
	assert.True(t, NULLISH_ASSIGN.IsAssign())
	assert.False(t, ARROW.IsAssign())
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "a.js", (&Location{File: "a.js", Pos: -1}).String())
	assert.Equal(t, "a.js[4]", (&Location{File: "a.js", Pos: 4}).String())
	assert.Equal(t, "a.js:2", (&Location{File: "a.js", Pos: 4, Line: 2}).String())
	assert.Equal(t, "a.js:2:3", (&Location{File: "a.js", Pos: 4, Line: 2, Col: 3}).String())
}
