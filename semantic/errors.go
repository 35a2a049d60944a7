// Copyright © 2024 The ELPS authors

package semantic

import "fmt"

// InvariantError reports a broken internal invariant of the semantic
// tables: an id that was never issued, a scope stack underflow, a parent
// scope that does not exist yet. It never describes a property of the
// analyzed program. The tables panic with an *InvariantError and Analyze
// turns that panic into a returned error.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("semantic: %s: %s", e.Op, e.Msg)
}

func invariantf(op string, format string, v ...interface{}) {
	panic(&InvariantError{Op: op, Msg: fmt.Sprintf(format, v...)})
}
