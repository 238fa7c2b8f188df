package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/quill-lang/quill/pkg/source"
)

// Printer renders errors with the offending source line and a caret marker.
// Colors follow the terminal profile of the output.
type Printer struct {
	out *termenv.Output
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{out: termenv.NewOutput(w, opts...)}
}

// DisplayErrors prints errs for src to w in a user-friendly format.
func DisplayErrors(w io.Writer, src *source.SourceFile, errs []QuillError) {
	NewPrinter(w).Print(src, errs)
}

// Print writes each error. src may be nil, in which case the position's own
// source (if any) is used.
func (p *Printer) Print(src *source.SourceFile, errs []QuillError) {
	for _, err := range errs {
		p.printOne(src, err)
	}
}

func (p *Printer) printOne(src *source.SourceFile, err QuillError) {
	pos := err.Pos()
	if pos.Source != nil {
		src = pos.Source
	}
	label := p.out.String(err.Kind() + " Error").Foreground(p.out.Color("1")).Bold()

	where := ""
	if src != nil {
		where = src.DisplayPath() + ":"
	}
	if !pos.IsValid() || src == nil || pos.Line > len(src.Lines()) {
		fmt.Fprintf(p.out, "%s%s: %s\n", where, label, err.Message())
		return
	}

	fmt.Fprintf(p.out, "%s%d:%d: %s: %s\n", where, pos.Line, pos.Column, label, err.Message())
	line := strings.TrimRight(src.Line(pos.Line), "\t ")
	fmt.Fprintf(p.out, "  %s\n", line)

	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	width := 1
	if pos.EndPos > pos.StartPos {
		width = pos.EndPos - pos.StartPos
	}
	marker := p.out.String("^" + strings.Repeat("~", width-1)).Foreground(p.out.Color("2"))
	fmt.Fprintf(p.out, "  %s%s\n\n", strings.Repeat(" ", col), marker)
}
