package parser

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/quill-lang/quill/pkg/lexer"
)

// --- Literals ---

// Identifier is a name reference.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Start() lexer.Token   { return i.Token }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral is an int literal; Raw keeps the source spelling.
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Start() lexer.Token   { return il.Token }
func (il *IntegerLiteral) String() string       { return strconv.FormatInt(il.Value, 10) }

// FloatLiteral is a float literal.
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) Start() lexer.Token   { return fl.Token }
func (fl *FloatLiteral) String() string       { return strings.ReplaceAll(fl.Token.Literal, "_", "") }

// StringLiteral holds an already unescaped string value.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Start() lexer.Token   { return sl.Token }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// BooleanLiteral is True/False.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Start() lexer.Token   { return bl.Token }
func (bl *BooleanLiteral) String() string {
	if bl.Value {
		return "True"
	}
	return "False"
}

// NoneLiteral is None (also spelled null).
type NoneLiteral struct{ Token lexer.Token }

func (nl *NoneLiteral) expressionNode()      {}
func (nl *NoneLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NoneLiteral) Start() lexer.Token   { return nl.Token }
func (nl *NoneLiteral) String() string       { return "None" }

// --- F-strings ---

// FStringPart is one piece of an f-string.
type FStringPart interface {
	fstringPart()
	String() string
}

// FStringText is literal text.
type FStringText struct{ Value string }

// FStringExpr is a bare `{expr}` interpolation.
type FStringExpr struct {
	Expression Expression
	Conversion string // "r", "s", "a" or ""
}

// FStringFormatted is `{expr:spec}`.
type FStringFormatted struct {
	Expression Expression
	Spec       string
}

func (*FStringText) fstringPart()      {}
func (*FStringExpr) fstringPart()      {}
func (*FStringFormatted) fstringPart() {}

func (t *FStringText) String() string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(t.Value)
}
func (e *FStringExpr) String() string {
	if e.Conversion != "" {
		return "{" + e.Expression.String() + "!" + e.Conversion + "}"
	}
	return "{" + e.Expression.String() + "}"
}
func (f *FStringFormatted) String() string {
	return "{" + f.Expression.String() + ":" + f.Spec + "}"
}

// FStringLiteral is an f-string decomposed into parts.
type FStringLiteral struct {
	Token lexer.Token
	Parts []FStringPart
}

func (fs *FStringLiteral) expressionNode()      {}
func (fs *FStringLiteral) TokenLiteral() string { return fs.Token.Literal }
func (fs *FStringLiteral) Start() lexer.Token   { return fs.Token }
func (fs *FStringLiteral) String() string {
	var out bytes.Buffer
	out.WriteString(`f"`)
	for _, p := range fs.Parts {
		out.WriteString(p.String())
	}
	out.WriteString(`"`)
	return out.String()
}

// --- Operators ---

// BinaryExpression is `Left Operator Right`. Operators keep their source
// spelling ("and", "not in", "is not", "//", "**", ...), with && and ||
// normalized to "and" and "or".
type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Start() lexer.Token   { return be.Left.Start() }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}

// UnaryExpression is `Operator Operand` for -, +, !, not and await.
type UnaryExpression struct {
	Token    lexer.Token
	Operator string
	Operand  Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) Start() lexer.Token   { return ue.Token }
func (ue *UnaryExpression) String() string {
	if ue.Operator == "not" || ue.Operator == "await" {
		return "(" + ue.Operator + " " + ue.Operand.String() + ")"
	}
	return "(" + ue.Operator + ue.Operand.String() + ")"
}

// ConditionalExpression is `Condition ? Consequence : Alternative` or
// `Consequence if Condition else Alternative`.
type ConditionalExpression struct {
	Token       lexer.Token // '?' or 'if'
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (ce *ConditionalExpression) expressionNode()      {}
func (ce *ConditionalExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ConditionalExpression) Start() lexer.Token {
	if ce.Token.Type == lexer.IF {
		return ce.Consequence.Start()
	}
	return ce.Condition.Start()
}
func (ce *ConditionalExpression) String() string {
	return "(" + ce.Condition.String() + " ? " + ce.Consequence.String() + " : " + ce.Alternative.String() + ")"
}

// AssignmentExpression is `name := value`.
type AssignmentExpression struct {
	Token  lexer.Token // ':='
	Target *Identifier
	Value  Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) Start() lexer.Token   { return ae.Target.Token }
func (ae *AssignmentExpression) String() string {
	return "(" + ae.Target.Value + " := " + ae.Value.String() + ")"
}

// --- Access and calls ---

// KeywordArgument is `name=value` in a call.
type KeywordArgument struct {
	Token lexer.Token
	Name  *Identifier
	Value Expression
}

func (ka *KeywordArgument) expressionNode()      {}
func (ka *KeywordArgument) TokenLiteral() string { return ka.Token.Literal }
func (ka *KeywordArgument) Start() lexer.Token   { return ka.Token }
func (ka *KeywordArgument) String() string       { return ka.Name.Value + "=" + ka.Value.String() }

// SpreadElement is `*expr` / `...expr`, or `**expr` when Double is set.
type SpreadElement struct {
	Token    lexer.Token
	Argument Expression
	Double   bool
}

func (se *SpreadElement) expressionNode()      {}
func (se *SpreadElement) TokenLiteral() string { return se.Token.Literal }
func (se *SpreadElement) Start() lexer.Token   { return se.Token }
func (se *SpreadElement) String() string {
	if se.Double {
		return "**" + se.Argument.String()
	}
	return "*" + se.Argument.String()
}

// CallExpression is `Function(Arguments...)`. Arguments may contain
// *KeywordArgument and *SpreadElement nodes.
type CallExpression struct {
	Token     lexer.Token // '('
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Start() lexer.Token   { return ce.Function.Start() }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + exprList(ce.Arguments) + ")"
}

// MemberExpression is `Object.Property` or `Object?.Property`.
type MemberExpression struct {
	Token    lexer.Token // '.' or '?.'
	Object   Expression
	Property *Identifier
	Optional bool
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) Start() lexer.Token   { return me.Object.Start() }
func (me *MemberExpression) String() string {
	if me.Optional {
		return me.Object.String() + "?." + me.Property.Value
	}
	return me.Object.String() + "." + me.Property.Value
}

// IndexExpression is `Left[Index]`.
type IndexExpression struct {
	Token lexer.Token // '['
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Start() lexer.Token   { return ie.Left.Start() }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

// SliceExpression is `Left[Lower:Upper:Step]`; any bound may be nil.
type SliceExpression struct {
	Token lexer.Token
	Left  Expression
	Lower Expression
	Upper Expression
	Step  Expression
}

func (se *SliceExpression) expressionNode()      {}
func (se *SliceExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SliceExpression) Start() lexer.Token   { return se.Left.Start() }
func (se *SliceExpression) String() string {
	part := func(e Expression) string {
		if e == nil {
			return ""
		}
		return e.String()
	}
	s := se.Left.String() + "[" + part(se.Lower) + ":" + part(se.Upper)
	if se.Step != nil {
		s += ":" + se.Step.String()
	}
	return s + "]"
}

// NewExpression is `new Callee(args)`.
type NewExpression struct {
	Token     lexer.Token
	Callee    Expression
	Arguments []Expression
}

func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) Start() lexer.Token   { return ne.Token }
func (ne *NewExpression) String() string {
	return "new " + ne.Callee.String() + "(" + exprList(ne.Arguments) + ")"
}

// --- Collections ---

// ListLiteral is `[a, b, *c]`.
type ListLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) Start() lexer.Token   { return ll.Token }
func (ll *ListLiteral) String() string       { return "[" + exprList(ll.Elements) + "]" }

// TupleLiteral is `(a, b)` or a bare `a, b`.
type TupleLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (tl *TupleLiteral) expressionNode()      {}
func (tl *TupleLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TupleLiteral) Start() lexer.Token   { return tl.Token }
func (tl *TupleLiteral) String() string {
	if len(tl.Elements) == 1 {
		return "(" + tl.Elements[0].String() + ",)"
	}
	return "(" + exprList(tl.Elements) + ")"
}

// SetLiteral is `{a, b}`.
type SetLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (sl *SetLiteral) expressionNode()      {}
func (sl *SetLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *SetLiteral) Start() lexer.Token   { return sl.Token }
func (sl *SetLiteral) String() string       { return "{" + exprList(sl.Elements) + "}" }

// DictEntry is `key: value`, or `**spread` when Key is nil.
type DictEntry struct {
	Key    Expression
	Value  Expression
	Spread bool
}

// DictLiteral is `{k: v, **d}`.
type DictLiteral struct {
	Token   lexer.Token
	Entries []*DictEntry
}

func (dl *DictLiteral) expressionNode()      {}
func (dl *DictLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DictLiteral) Start() lexer.Token   { return dl.Token }
func (dl *DictLiteral) String() string {
	parts := make([]string, len(dl.Entries))
	for i, e := range dl.Entries {
		if e.Spread {
			parts[i] = "**" + e.Value.String()
		} else {
			parts[i] = e.Key.String() + ": " + e.Value.String()
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ComprehensionClause is `for Target in Iterable` followed by its `if` filters.
type ComprehensionClause struct {
	Token      lexer.Token // FOR
	Target     Expression  // *Identifier or Pattern
	Iterable   Expression
	Conditions []Expression
	IsAsync    bool
}

func (cc *ComprehensionClause) String() string {
	s := "for " + cc.Target.String() + " in " + cc.Iterable.String()
	for _, c := range cc.Conditions {
		s += " if " + c.String()
	}
	return s
}

// ComprehensionKind selects the container a comprehension builds.
type ComprehensionKind int

const (
	ListComp ComprehensionKind = iota
	SetComp
	DictComp
)

func (k ComprehensionKind) String() string {
	switch k {
	case SetComp:
		return "set"
	case DictComp:
		return "dict"
	}
	return "list"
}

// Comprehension is a list, set or dict comprehension. Key is set only for
// dict comprehensions. Generator expressions parse as list comprehensions.
type Comprehension struct {
	Token   lexer.Token // '[' , '{' or '('
	Kind    ComprehensionKind
	Key     Expression
	Element Expression
	Clauses []*ComprehensionClause
}

func (c *Comprehension) expressionNode()      {}
func (c *Comprehension) TokenLiteral() string { return c.Token.Literal }
func (c *Comprehension) Start() lexer.Token   { return c.Token }
func (c *Comprehension) String() string {
	var out bytes.Buffer
	open, close := "[", "]"
	if c.Kind != ListComp {
		open, close = "{", "}"
	}
	out.WriteString(open)
	if c.Kind == DictComp {
		out.WriteString(c.Key.String() + ": ")
	}
	out.WriteString(c.Element.String())
	for _, cl := range c.Clauses {
		out.WriteString(" " + cl.String())
	}
	out.WriteString(close)
	return out.String()
}

// Filters returns the number of `if` filters across all clauses.
func (c *Comprehension) Filters() int {
	n := 0
	for _, cl := range c.Clauses {
		n += len(cl.Conditions)
	}
	return n
}

// --- Functions ---

// ArrowFunction is `(params) => body`, `x => body` or `lambda params: body`.
// Body is an Expression or a *BlockStatement.
type ArrowFunction struct {
	Token      lexer.Token
	Parameters []*Parameter
	Body       Node
	IsAsync    bool
	IsLambda   bool
}

func (af *ArrowFunction) expressionNode()      {}
func (af *ArrowFunction) TokenLiteral() string { return af.Token.Literal }
func (af *ArrowFunction) Start() lexer.Token   { return af.Token }
func (af *ArrowFunction) String() string {
	prefix := ""
	if af.IsAsync {
		prefix = "async "
	}
	if af.IsLambda {
		return "(" + prefix + "lambda " + paramsString(af.Parameters) + ": " + af.Body.String() + ")"
	}
	return prefix + "(" + paramsString(af.Parameters) + ") => " + af.Body.String()
}

// YieldExpression is `yield [value]`.
type YieldExpression struct {
	Token lexer.Token
	Value Expression
}

func (ye *YieldExpression) expressionNode()      {}
func (ye *YieldExpression) TokenLiteral() string { return ye.Token.Literal }
func (ye *YieldExpression) Start() lexer.Token   { return ye.Token }
func (ye *YieldExpression) String() string {
	if ye.Value == nil {
		return "yield"
	}
	return "(yield " + ye.Value.String() + ")"
}

// --- Markup ---

// JSXAttribute is `name="text"`, `name={expr}`, a bare `name` (Value nil),
// or `{...expr}` when Spread is set.
type JSXAttribute struct {
	Name   string
	Value  Expression
	Spread bool
}

// JSXText is verbatim text between tags.
type JSXText struct {
	Token lexer.Token
	Value string
}

func (jt *JSXText) expressionNode()      {}
func (jt *JSXText) TokenLiteral() string { return jt.Token.Literal }
func (jt *JSXText) Start() lexer.Token   { return jt.Token }
func (jt *JSXText) String() string       { return jt.Value }

// JSXElement is a markup element. Children are *JSXText, *JSXElement or
// arbitrary expressions from `{expr}` containers.
type JSXElement struct {
	Token       lexer.Token // '<'
	Tag         string
	Attributes  []*JSXAttribute
	Children    []Expression
	SelfClosing bool
}

func (je *JSXElement) expressionNode()      {}
func (je *JSXElement) TokenLiteral() string { return je.Token.Literal }
func (je *JSXElement) Start() lexer.Token   { return je.Token }
func (je *JSXElement) String() string {
	var out bytes.Buffer
	out.WriteString("<" + je.Tag)
	for _, a := range je.Attributes {
		switch {
		case a.Spread:
			out.WriteString(" {..." + a.Value.String() + "}")
		case a.Value == nil:
			out.WriteString(" " + a.Name)
		case isStringLiteral(a.Value):
			out.WriteString(" " + a.Name + "=" + a.Value.String())
		default:
			out.WriteString(" " + a.Name + "={" + a.Value.String() + "}")
		}
	}
	if je.SelfClosing {
		out.WriteString(" />")
		return out.String()
	}
	out.WriteString(">")
	for _, c := range je.Children {
		switch c.(type) {
		case *JSXText, *JSXElement:
			out.WriteString(c.String())
		default:
			out.WriteString("{" + c.String() + "}")
		}
	}
	out.WriteString("</" + je.Tag + ">")
	return out.String()
}

func isStringLiteral(e Expression) bool {
	_, ok := e.(*StringLiteral)
	return ok
}
