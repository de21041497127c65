// Package diag implements the single diagnostic channel shared by the
// tokenizer, parser, analyzer, IR emitter, and backends.
package diag

import (
	"fmt"
	"strings"
)

// Pos is a source position used to tag every diagnostic.
type Pos struct {
	Line   int
	Column int
}

// Error is one compiler diagnostic: file, line, column, and message.
// Internal is set for invariant violations ("member index out of
// bounds", "resolved flag not set") so tests can tell them apart from
// ordinary user-facing errors.
type Error struct {
	File     string
	Pos      Pos
	Message  string
	Internal bool
}

// Error implements the error interface, producing the one-line
// "<file>:<line>:<col>: <message>" diagnostic.
func (e *Error) Error() string {
	prefix := ""
	if e.Internal {
		prefix = "internal: "
	}
	if e.Pos.Line == 0 {
		return prefix + e.Message
	}
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s%s", file, e.Pos.Line, e.Pos.Column, prefix, e.Message)
}

// New creates a user-facing diagnostic at pos.
func New(file string, pos Pos, format string, args ...any) *Error {
	return &Error{File: file, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal-invariant diagnostic at pos.
func Internal(file string, pos Pos, format string, args ...any) *Error {
	return &Error{File: file, Pos: pos, Message: fmt.Sprintf(format, args...), Internal: true}
}

// List collects every diagnostic produced by a single stage.
// Compilation aborts on the first error; List exists so a stage can
// still report the first error it hit alongside anything gathered
// before it gave up.
type List []*Error

func (l List) Error() string {
	if len(l) == 0 {
		return "no errors"
	}
	if len(l) == 1 {
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (and %d more error", l[0].Error(), len(l)-1)
	if len(l) > 2 {
		sb.WriteString("s")
	}
	sb.WriteString(")")
	return sb.String()
}

// First returns the first diagnostic, or nil if the list is empty.
func (l List) First() *Error {
	if len(l) == 0 {
		return nil
	}
	return l[0]
}
