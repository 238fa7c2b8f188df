package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/pkg/source"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		err  QuillError
		want string
	}{
		{&LexError{Position: Position{Line: 2, Column: 5}, Msg: "unterminated string"},
			"Lex Error at 2:5: unterminated string"},
		{&SyntaxError{Position: Position{Line: 1, Column: 3}, Expected: "':'", Found: "NEWLINE"},
			"Syntax Error at 1:3: expected ':', found NEWLINE"},
		{&SyntaxError{Position: Position{Line: 1, Column: 3}, Msg: "invalid assignment target"},
			"Syntax Error at 1:3: invalid assignment target"},
		{&TypeError{Position: Position{Line: 4, Column: 1}, Msg: "cannot add int and str"},
			"Type Error at 4:1: cannot add int and str"},
		{&TranspileError{Msg: "unknown target \"amd\""}, "Transpile Error: unknown target \"amd\""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestAsQuillError(t *testing.T) {
	inner := &SyntaxError{Position: Position{Line: 1, Column: 1}, Msg: "boom"}
	wrapped := fmt.Errorf("compiling main.ql: %w", inner)

	qe, ok := AsQuillError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Syntax", qe.Kind())

	var se *SyntaxError
	assert.True(t, stderrors.As(wrapped, &se))

	joined := fmt.Errorf("main.ql: %w", stderrors.Join(&TypeError{Msg: "first"}, &TypeError{Msg: "second"}))
	qe, ok = AsQuillError(joined)
	require.True(t, ok)
	assert.Equal(t, "first", qe.Message())

	_, ok = AsQuillError(stderrors.New("plain"))
	assert.False(t, ok)

	cause := stderrors.New("root")
	te := (&TypeError{Msg: "x"}).CausedBy(cause)
	assert.ErrorIs(t, te, cause)
}

func TestPrinterShowsCaret(t *testing.T) {
	src := source.NewSourceFile("main.ql", "", "x = 1\ny = $\n")
	var buf bytes.Buffer
	p := NewPrinter(&buf, termenv.WithProfile(termenv.Ascii))
	p.Print(src, []QuillError{
		&LexError{Position: Position{Line: 2, Column: 5}, Msg: "unexpected character '$'"},
	})
	out := buf.String()
	assert.Contains(t, out, "main.ql:2:5: Lex Error: unexpected character '$'")
	assert.Contains(t, out, "  y = $\n")
	assert.Contains(t, out, "      ^\n")
}

func TestPrinterWithoutPosition(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, termenv.WithProfile(termenv.Ascii))
	p.Print(nil, []QuillError{&TranspileError{Msg: "unknown target"}})
	assert.Equal(t, "Transpile Error: unknown target\n", buf.String())
}
