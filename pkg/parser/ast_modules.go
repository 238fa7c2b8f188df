package parser

import (
	"strconv"
	"strings"

	"github.com/quill-lang/quill/pkg/lexer"
)

// ImportKind distinguishes the six import forms.
type ImportKind int

const (
	ImportDefault    ImportKind = iota // import x from "m"
	ImportNamed                        // import {a, b as c} from "m"
	ImportNamespace                    // import * as ns from "m"
	ImportSideEffect                   // import "m"
	ImportModule                       // import a.b [as c]
	ImportFrom                         // from m import a, b as c | from m import *
)

var importKindNames = [...]string{"default", "named", "namespace", "side-effect", "module", "from"}

func (k ImportKind) String() string { return importKindNames[k] }

// ImportSpecifier is `name [as alias]`.
type ImportSpecifier struct {
	Name  *Identifier
	Alias *Identifier
}

// Local returns the name bound in the importing module.
func (s *ImportSpecifier) Local() string {
	if s.Alias != nil {
		return s.Alias.Value
	}
	return s.Name.Value
}

func (s *ImportSpecifier) String() string {
	if s.Alias != nil {
		return s.Name.Value + " as " + s.Alias.Value
	}
	return s.Name.Value
}

// ImportDeclaration is any of the import forms. Source is the module path
// as written (dotted for bare-module and from-imports, quoted otherwise).
type ImportDeclaration struct {
	Token      lexer.Token // IMPORT or FROM
	Kind       ImportKind
	Source     string
	Default    *Identifier        // ImportDefault
	Namespace  *Identifier        // ImportNamespace, ImportModule alias
	Specifiers []*ImportSpecifier // ImportNamed, ImportFrom
	Wildcard   bool               // from m import *
}

func (id *ImportDeclaration) statementNode()       {}
func (id *ImportDeclaration) TokenLiteral() string { return id.Token.Literal }
func (id *ImportDeclaration) Start() lexer.Token   { return id.Token }
func (id *ImportDeclaration) String() string {
	src := strconv.Quote(id.Source)
	switch id.Kind {
	case ImportDefault:
		return "import " + id.Default.Value + " from " + src
	case ImportNamed:
		return "import {" + specifierList(id.Specifiers) + "} from " + src
	case ImportNamespace:
		return "import * as " + id.Namespace.Value + " from " + src
	case ImportSideEffect:
		return "import " + src
	case ImportModule:
		if id.Namespace != nil {
			return "import " + id.Source + " as " + id.Namespace.Value
		}
		return "import " + id.Source
	}
	if id.Wildcard {
		return "from " + id.Source + " import *"
	}
	return "from " + id.Source + " import " + specifierList(id.Specifiers)
}

// LocalName is the binding a bare-module import introduces: the alias, or
// the last segment of the dotted path.
func (id *ImportDeclaration) LocalName() string {
	if id.Namespace != nil {
		return id.Namespace.Value
	}
	if i := strings.LastIndexAny(id.Source, "./"); i >= 0 {
		return id.Source[i+1:]
	}
	return id.Source
}

// ExportKind distinguishes the export forms.
type ExportKind int

const (
	ExportNamed       ExportKind = iota // export {a, b as c} [from "m"]
	ExportAll                           // export * [as ns] from "m"
	ExportDefault                       // export default expr
	ExportDecl                          // export def|class|let|const|assignment
)

var exportKindNames = [...]string{"named", "all", "default", "declaration"}

func (k ExportKind) String() string { return exportKindNames[k] }

// ExportDeclaration is any of the export forms.
type ExportDeclaration struct {
	Token       lexer.Token // EXPORT
	Kind        ExportKind
	Specifiers  []*ImportSpecifier // ExportNamed: Name is local, Alias exported
	Source      string             // re-export source, "" when local
	Namespace   *Identifier        // export * as ns from "m"
	Value       Expression         // ExportDefault expression form
	Declaration Statement          // ExportDecl, or ExportDefault of a def/class
}

func (ed *ExportDeclaration) statementNode()       {}
func (ed *ExportDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *ExportDeclaration) Start() lexer.Token   { return ed.Token }
func (ed *ExportDeclaration) String() string {
	from := ""
	if ed.Source != "" {
		from = " from " + strconv.Quote(ed.Source)
	}
	switch ed.Kind {
	case ExportNamed:
		return "export {" + specifierList(ed.Specifiers) + "}" + from
	case ExportAll:
		if ed.Namespace != nil {
			return "export * as " + ed.Namespace.Value + from
		}
		return "export *" + from
	case ExportDefault:
		if ed.Declaration != nil {
			return "export default " + ed.Declaration.String()
		}
		return "export default " + ed.Value.String()
	}
	return "export " + ed.Declaration.String()
}

// DeclaredNames returns the names an ExportDeclaration statement declares.
func (ed *ExportDeclaration) DeclaredNames() []string {
	switch d := ed.Declaration.(type) {
	case *FunctionDef:
		return []string{d.Name.Value}
	case *ClassDef:
		return []string{d.Name.Value}
	case *LetStatement:
		return []string{d.Name.Value}
	case *AssignStatement:
		if id, ok := d.Target.(*Identifier); ok {
			return []string{id.Value}
		}
	case *DestructuringAssignment:
		return PatternNames(d.Pattern)
	}
	return nil
}

func specifierList(specs []*ImportSpecifier) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
