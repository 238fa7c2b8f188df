package errors

import "github.com/quill-lang/quill/pkg/source"

// Position represents a specific location in the source code.
// It includes line and column numbers (1-based) for human-readability,
// and byte offsets (0-based) for tooling.
type Position struct {
	Line     int                // 1-based line number
	Column   int                // 1-based column number (rune index within the line)
	StartPos int                // 0-based offset of the start of the token/error span
	EndPos   int                // 0-based offset of the end of the span (exclusive)
	Source   *source.SourceFile // Source file, nil when the error came from a bare string
}

// IsValid reports whether the position points at a real line.
func (p Position) IsValid() bool { return p.Line > 0 }
