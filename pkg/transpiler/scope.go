package transpiler

import (
	"github.com/quill-lang/quill/pkg/parser"
)

// scope is the declaration state of one function body (or the module).
// Python binds names per function while JavaScript binds them per block, so
// the first assignment at function level becomes a `let` and names first
// assigned inside a nested block are hoisted to a `let a, b;` line at the
// top of the function.
type scope struct {
	parent   *scope
	declared map[string]bool
	hoisted  []string
	depth    int // block nesting inside the function body

	self   string // receiver parameter emitted as `this`, "" outside methods
	method bool   // nested defs become arrow functions to keep `this`
	yields bool   // the body contains yield, so it is emitted as a generator
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, declared: map[string]bool{}}
}

// newArrowScope is the scope of a lambda or nested def inside a method:
// `this` keeps meaning the enclosing receiver.
func newArrowScope(parent *scope) *scope {
	s := newScope(parent)
	if parent != nil {
		s.self = parent.self
		s.method = parent.method
	}
	return s
}

func (s *scope) declare(names ...string) {
	for _, n := range names {
		s.declared[n] = true
	}
}

// visible reports whether name is declared here or in an enclosing scope.
func (s *scope) visible(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.declared[name] {
			return true
		}
	}
	return false
}

// bind records an assignment to name and returns the keyword that must
// introduce it: "let " for a first assignment at function level, "" for a
// reassignment or a hoisted name.
func (s *scope) bind(name string) string {
	if s.declared[name] {
		return ""
	}
	s.declared[name] = true
	if s.depth == 0 {
		return "let "
	}
	s.hoisted = append(s.hoisted, name)
	return ""
}

// hoist declares name at the top of the function regardless of depth, for
// bindings made inside expressions.
func (s *scope) hoist(name string) {
	if s.declared[name] {
		return
	}
	s.declared[name] = true
	s.hoisted = append(s.hoisted, name)
}

// shadow declares block-local names (loop targets, exception aliases) and
// returns a func restoring the previous state.
func (s *scope) shadow(names ...string) func() {
	saved := make(map[string]bool, len(names))
	for _, n := range names {
		saved[n] = s.declared[n]
		s.declared[n] = true
	}
	return func() {
		for n, was := range saved {
			if !was {
				delete(s.declared, n)
			}
		}
	}
}

// assignedIn reports whether any statement in stmts assigns name, looking
// through nested blocks but not into nested functions or classes.
func assignedIn(stmts []parser.Statement, name string) bool {
	found := false
	walkBlocks(stmts, func(s parser.Statement) {
		switch n := s.(type) {
		case *parser.AssignStatement:
			if id, ok := n.Target.(*parser.Identifier); ok && id.Value == name {
				found = true
			}
		case *parser.DestructuringAssignment:
			for _, p := range parser.PatternNames(n.Pattern) {
				if p == name {
					found = true
				}
			}
		}
	})
	return found
}

// containsBreak reports whether a break in stmts would leave an enclosing
// loop, that is one not nested in a loop of its own.
func containsBreak(stmts []parser.Statement) bool {
	for _, s := range stmts {
		switch n := s.(type) {
		case *parser.BreakStatement:
			return true
		case *parser.IfStatement:
			if containsBreak(n.Consequence.Statements) {
				return true
			}
			if n.Alternative != nil && containsBreak([]parser.Statement{n.Alternative}) {
				return true
			}
		case *parser.BlockStatement:
			if containsBreak(n.Statements) {
				return true
			}
		case *parser.TryStatement:
			if containsBreak(blockStatements(n.Body, n.Else, n.Finally)) {
				return true
			}
			for _, h := range n.Handlers {
				if containsBreak(h.Body.Statements) {
					return true
				}
			}
		case *parser.WithStatement:
			if containsBreak(n.Body.Statements) {
				return true
			}
		case *parser.MatchStatement:
			for _, c := range n.Cases {
				if containsBreak(c.Body.Statements) {
					return true
				}
			}
		}
	}
	return false
}

// walkBlocks calls fn for every statement in stmts and in the blocks nested
// under them, skipping function and class bodies.
func walkBlocks(stmts []parser.Statement, fn func(parser.Statement)) {
	for _, s := range stmts {
		fn(s)
		switch n := s.(type) {
		case *parser.BlockStatement:
			walkBlocks(n.Statements, fn)
		case *parser.IfStatement:
			walkBlocks(n.Consequence.Statements, fn)
			if n.Alternative != nil {
				walkBlocks([]parser.Statement{n.Alternative}, fn)
			}
		case *parser.WhileStatement:
			walkBlocks(n.Body.Statements, fn)
		case *parser.ForStatement:
			walkBlocks(n.Body.Statements, fn)
		case *parser.TryStatement:
			walkBlocks(blockStatements(n.Body, n.Else, n.Finally), fn)
			for _, h := range n.Handlers {
				walkBlocks(h.Body.Statements, fn)
			}
		case *parser.WithStatement:
			walkBlocks(n.Body.Statements, fn)
		case *parser.MatchStatement:
			for _, c := range n.Cases {
				walkBlocks(c.Body.Statements, fn)
			}
		case *parser.ExportDeclaration:
			if n.Declaration != nil {
				walkBlocks([]parser.Statement{n.Declaration}, fn)
			}
		}
	}
}

func blockStatements(blocks ...*parser.BlockStatement) []parser.Statement {
	var out []parser.Statement
	for _, b := range blocks {
		if b != nil {
			out = append(out, b.Statements...)
		}
	}
	return out
}
