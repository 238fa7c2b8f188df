package checker

import (
	"fmt"
	"strings"

	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

// ResolveAnnotation turns a parsed annotation into a type. Unknown names are
// an error; the caller decides whether to report it.
func ResolveAnnotation(env *Environment, expr parser.TypeExpression) (types.Type, error) {
	r := &annotationResolver{env: env}
	t := r.resolve(expr)
	if r.err != nil {
		return types.Unknown, r.err
	}
	return t, nil
}

type annotationResolver struct {
	env *Environment
	err error
}

func (r *annotationResolver) fail(format string, args ...any) types.Type {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
	return types.Unknown
}

func (r *annotationResolver) resolveAll(exprs []parser.TypeExpression) []types.Type {
	out := make([]types.Type, len(exprs))
	for i, e := range exprs {
		out[i] = r.resolve(e)
	}
	return out
}

func (r *annotationResolver) resolve(expr parser.TypeExpression) types.Type {
	switch node := expr.(type) {
	case nil:
		return types.Any
	case *parser.TypeName:
		return r.resolveName(node)
	case *parser.UnionTypeExpr:
		return types.NewUnion(r.resolveAll(node.Types)...)
	case *parser.IntersectionTypeExpr:
		return types.NewIntersection(r.resolveAll(node.Types)...)
	case *parser.TypeListExpr:
		return &types.TupleType{Elems: r.resolveAll(node.Types)}
	case *parser.LiteralTypeExpr:
		return r.resolveLiteral(node.Value)
	}
	return r.fail("unsupported annotation %s", expr.String())
}

func (r *annotationResolver) resolveLiteral(value parser.Expression) types.Type {
	switch v := value.(type) {
	case *parser.StringLiteral:
		// "Node" names a class declared later
		if alias, ok := r.env.ResolveType(v.Value); ok {
			return alias
		}
		return &types.LiteralType{Value: v.Value}
	case *parser.IntegerLiteral:
		return &types.LiteralType{Value: v.Value}
	case *parser.FloatLiteral:
		return &types.LiteralType{Value: v.Value}
	case *parser.BooleanLiteral:
		return &types.LiteralType{Value: v.Value}
	case *parser.NoneLiteral:
		return types.None
	case *parser.UnaryExpression:
		if v.Operator == "-" {
			switch n := v.Operand.(type) {
			case *parser.IntegerLiteral:
				return &types.LiteralType{Value: -n.Value}
			case *parser.FloatLiteral:
				return &types.LiteralType{Value: -n.Value}
			}
		}
	}
	return r.fail("invalid literal type %s", value.String())
}

func (r *annotationResolver) arity(node *parser.TypeName, min, max int) bool {
	n := len(node.Args)
	if n < min || (max >= 0 && n > max) {
		switch {
		case min == max:
			r.fail("%s expects %d type argument(s), got %d", node.Name, min, n)
		case max < 0:
			r.fail("%s expects at least %d type argument(s), got %d", node.Name, min, n)
		default:
			r.fail("%s expects %d to %d type arguments, got %d", node.Name, min, max, n)
		}
		return false
	}
	return true
}

func (r *annotationResolver) resolveName(node *parser.TypeName) types.Type {
	name := node.Name
	if tp, ok := r.env.ResolveTypeParameter(name); ok && len(node.Args) == 0 {
		return tp.Ref()
	}
	if types.IsUtility(name) {
		t, err := types.ApplyUtility(name, r.resolveAll(node.Args)...)
		if err != nil {
			return r.fail("%v", err)
		}
		return t
	}

	switch name {
	case "list", "List", "Sequence", "Iterable", "Iterator", "Generator":
		if len(node.Args) == 0 {
			return &types.ListType{Elem: types.Any}
		}
		return &types.ListType{Elem: r.resolve(node.Args[0])}
	case "Array":
		if !r.arity(node, 1, 1) {
			return types.Unknown
		}
		return &types.ArrayType{Elem: r.resolve(node.Args[0])}
	case "set", "Set", "frozenset", "FrozenSet":
		if len(node.Args) == 0 {
			return &types.SetType{Elem: types.Any}
		}
		if !r.arity(node, 1, 1) {
			return types.Unknown
		}
		return &types.SetType{Elem: r.resolve(node.Args[0])}
	case "dict", "Dict", "Mapping":
		if len(node.Args) == 0 {
			return &types.DictType{Key: types.Any, Value: types.Any}
		}
		if !r.arity(node, 2, 2) {
			return types.Unknown
		}
		return &types.DictType{Key: r.resolve(node.Args[0]), Value: r.resolve(node.Args[1])}
	case "tuple", "Tuple":
		return &types.TupleType{Elems: r.resolveAll(node.Args)}
	case "Optional":
		if !r.arity(node, 1, 1) {
			return types.Unknown
		}
		return types.Optional(r.resolve(node.Args[0]))
	case "Union":
		return types.NewUnion(r.resolveAll(node.Args)...)
	case "Literal":
		if !r.arity(node, 1, -1) {
			return types.Unknown
		}
		return types.NewUnion(r.resolveAll(node.Args)...)
	case "Promise", "Awaitable", "Coroutine":
		if len(node.Args) == 0 {
			return types.Promise(types.Any)
		}
		return types.Promise(r.resolve(node.Args[len(node.Args)-1]))
	case "Map":
		if !r.arity(node, 2, 2) {
			return types.Unknown
		}
		inst, err := types.MapGeneric.Instantiate(r.resolveAll(node.Args)...)
		if err != nil {
			return r.fail("%v", err)
		}
		return inst
	case "Callable":
		return r.resolveCallable(node)
	case "object", "type":
		return types.Any
	}

	if len(node.Args) == 0 {
		if alias, ok := r.env.ResolveType(name); ok {
			return alias
		}
		if p, ok := types.LookupPrimitive(name); ok {
			return p
		}
	}
	if strings.Contains(name, ".") {
		// qualified names come from modules the checker does not load
		return types.Any
	}
	return r.fail("unknown type '%s'", name)
}

// resolveCallable handles Callable[[A, B], R] and bare Callable.
func (r *annotationResolver) resolveCallable(node *parser.TypeName) types.Type {
	if len(node.Args) == 0 {
		return &types.FunctionType{Rest: types.Any, Return: types.Any}
	}
	if !r.arity(node, 2, 2) {
		return types.Unknown
	}
	ret := r.resolve(node.Args[1])
	if params, ok := node.Args[0].(*parser.TypeListExpr); ok {
		return types.NewSimpleFunction(r.resolveAll(params.Types), ret)
	}
	return r.fail("Callable expects a parameter list, got %s", node.Args[0].String())
}
