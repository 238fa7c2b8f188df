package errors

import (
	stderrors "errors"
	"fmt"
)

// QuillError is the interface implemented by all compiler errors.
type QuillError interface {
	error
	Pos() Position
	Kind() string // "Lex", "Syntax", "Type", "Transpile"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error
}

// LexError reports malformed input found while tokenizing: a bad character,
// an unterminated string or an indentation mismatch.
type LexError struct {
	Position
	Msg   string
	Cause error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("Lex Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *LexError) Pos() Position   { return e.Position }
func (e *LexError) Kind() string    { return "Lex" }
func (e *LexError) Message() string { return e.Msg }
func (e *LexError) Unwrap() error   { return e.Cause }
func (e *LexError) CausedBy(cause error) *LexError {
	e.Cause = cause
	return e
}

// SyntaxError is the parse error. Expected and Found describe the unmet
// expectation; Msg overrides the generated message when set.
type SyntaxError struct {
	Position
	Expected string
	Found    string
	Msg      string
	Cause    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Message())
}
func (e *SyntaxError) Pos() Position { return e.Position }
func (e *SyntaxError) Kind() string  { return "Syntax" }
func (e *SyntaxError) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
}
func (e *SyntaxError) Unwrap() error { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// TypeError represents an advisory (or, in check mode, blocking) type problem.
type TypeError struct {
	Position
	Msg   string
	Cause error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Type Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *TypeError) Pos() Position   { return e.Position }
func (e *TypeError) Kind() string    { return "Type" }
func (e *TypeError) Message() string { return e.Msg }
func (e *TypeError) Unwrap() error   { return e.Cause }
func (e *TypeError) CausedBy(cause error) *TypeError {
	e.Cause = cause
	return e
}

// TranspileError is reserved for emission failures that cannot degrade to a
// placeholder, such as an unknown target.
type TranspileError struct {
	Position
	Msg   string
	Cause error
}

func (e *TranspileError) Error() string {
	if !e.IsValid() {
		return fmt.Sprintf("Transpile Error: %s", e.Msg)
	}
	return fmt.Sprintf("Transpile Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *TranspileError) Pos() Position   { return e.Position }
func (e *TranspileError) Kind() string    { return "Transpile" }
func (e *TranspileError) Message() string { return e.Msg }
func (e *TranspileError) Unwrap() error   { return e.Cause }
func (e *TranspileError) CausedBy(cause error) *TranspileError {
	e.Cause = cause
	return e
}

// AsQuillError extracts the first QuillError from err's tree, including
// errors joined with errors.Join.
func AsQuillError(err error) (QuillError, bool) {
	var qe QuillError
	if stderrors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
