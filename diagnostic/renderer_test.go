// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"strings"
	"testing"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, &fakeErr{name}
			}
			return []byte(s), nil
		},
	}
}

type fakeErr struct{ name string }

func (e *fakeErr) Error() string { return "not found: " + e.name }

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"app.js": "const limit = 1\nlimit = 2\n",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Code:     "no-const-assign",
		Message:  "'limit' is a constant and cannot be reassigned",
		Spans: []Span{
			{File: "app.js", Line: 2, Col: 1, EndCol: 6, Label: "assigned here"},
		},
	})
	want := `error[no-const-assign]: 'limit' is a constant and cannot be reassigned
  --> app.js:2:1
   |
 2 |  limit = 2
   |  ^^^^^ assigned here
   |
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"app.js": "function f() {\n\tlet unused\n}",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "'unused' is defined but never used",
		Spans:    []Span{{File: "app.js", Line: 2, Col: 6, EndCol: 12}},
	})
	assertContains(t, got, "warning: 'unused' is defined but never used")
	assertContains(t, got, "--> app.js:2:6")
	assertContains(t, got, " 2 |      let unused\n")
	// tab expands to four columns, then "let "
	assertContains(t, got, "   |          ^^^^^^\n")
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans:    []Span{{File: "<stdin>", Line: 5, Col: 3}},
	})
	assertContains(t, got, "error: some error")
	assertContains(t, got, "--> <stdin>:5:3")
	assertContains(t, got, "|")
	assertNotContains(t, got, "^")
}

func TestRenderLineOutOfRange(t *testing.T) {
	r := testRenderer(map[string]string{"a.js": "x"})
	got := render(t, r, Diagnostic{Message: "m", Spans: []Span{{File: "a.js", Line: 9, Col: 1}}})
	assertNotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"a.js": "var a = 1\nvar a = 2",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "'a' is already defined",
		Spans:    []Span{{File: "a.js", Line: 2, Col: 5, EndCol: 6}},
		Notes:    []string{"first declared on line 1"},
	})
	assertContains(t, got, "= note: first declared on line 1")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	tests := []struct {
		source string
		col    int
		want   string
	}{
		{"if (userName) {}", 5, "    ^^^^^^^^\n"},
		{"this.#count++", 6, "     ^^^^^^\n"},
		{"a + b", 3, "  ^\n"},
		{"ünï = 1", 1, "^^^\n"},
	}
	for _, test := range tests {
		r := testRenderer(map[string]string{"t.js": test.source})
		got := render(t, r, Diagnostic{Message: "m", Spans: []Span{{File: "t.js", Line: 1, Col: test.col}}})
		assertContains(t, got, "   |  "+test.want)
	}
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"a.js": "x\ny\n",
	})
	var calls int
	inner := r.SourceReader
	r.SourceReader = func(name string) ([]byte, error) {
		calls++
		return inner(name)
	}
	diags := []Diagnostic{
		{Message: "'x' is not defined", Spans: []Span{{File: "a.js", Line: 1, Col: 1}}},
		{Message: "'y' is not defined", Spans: []Span{{File: "a.js", Line: 2, Col: 1}}},
	}
	var buf bytes.Buffer
	if err := r.RenderAll(&buf, diags); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if parts := strings.Split(got, "\n\n"); len(parts) < 2 {
		t.Errorf("expected diagnostics separated by blank line, got:\n%s", got)
	}
	assertContains(t, got, "'x' is not defined")
	assertContains(t, got, "'y' is not defined")
	if calls != 1 {
		t.Errorf("source read %d times, want 1", calls)
	}
}

func TestRenderNoSpans(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityNote,
		Message:  "3 files checked",
	})
	if got != "note: 3 files checked\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(map[string]string{"a.js": "x"})
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Message: "m", Spans: []Span{{File: "a.js", Line: 1, Col: 1}}})
	assertContains(t, got, "\x1b[")
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "always": ColorAlways, "never": ColorNever} {
		got, ok := ParseColorMode(in)
		if !ok || got != want {
			t.Errorf("ParseColorMode(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseColorMode("sometimes"); ok {
		t.Error("expected invalid mode")
	}
	var buf bytes.Buffer
	if ColorAuto.Enabled(&buf) {
		t.Error("a buffer is not a terminal")
	}
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func assertNotContains(t *testing.T, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("output unexpectedly contains %q:\n%s", unwanted, got)
	}
}
