package checker

import (
	"fmt"

	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/parser"
)

// positionOf returns the source position of a node's first token.
func positionOf(node parser.Node) errors.Position {
	if node == nil {
		return errors.Position{}
	}
	tok := node.Start()
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
	}
}

func (in *Inferrer) addError(node parser.Node, format string, args ...any) {
	in.errs = append(in.errs, &errors.TypeError{
		Position: positionOf(node),
		Msg:      fmt.Sprintf(format, args...),
	})
}
