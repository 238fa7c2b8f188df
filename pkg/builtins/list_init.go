package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// ListInitializer declares the list methods.
type ListInitializer struct{}

func (l *ListInitializer) Name() string {
	return "list"
}

func (l *ListInitializer) Priority() int {
	return PriorityList
}

func (l *ListInitializer) InitTypes(ctx *TypeContext) error {
	return nil
}

// ElementType returns the element type of an iterable type, or Unknown.
func ElementType(t types.Type) types.Type {
	switch tt := t.(type) {
	case *types.ListType:
		return tt.Elem
	case *types.ArrayType:
		return tt.Elem
	case *types.SetType:
		return tt.Elem
	case *types.TupleType:
		return types.CommonTypeOf(tt.Elems)
	case *types.DictType:
		return tt.Key
	case *types.ObjectType:
		if tt.Name == "" {
			return types.Str
		}
	case *types.IndexSignatureType:
		return tt.Key
	case *types.InstantiatedType:
		if len(tt.TypeArguments) > 0 {
			return tt.TypeArguments[0]
		}
	case *types.Primitive:
		if tt == types.Str {
			return types.Str
		}
		if tt == types.Any {
			return types.Any
		}
	case *types.LiteralType:
		return ElementType(tt.Base())
	}
	return types.Unknown
}

func (l *ListInitializer) InitMappings(ctx *MappingContext) error {
	none := returns(types.None)
	integer := returns(types.Int)

	methods := []Method{
		{Name: "append", Form: MethodRename, JS: "push", Params: []string{"item"}, Returns: none},
		{Name: "extend", Form: MethodTemplate, Template: "$r.push(...$0)", Params: []string{"iterable"}, Returns: none},
		{Name: "insert", Form: MethodTemplate, Template: "$r.splice($0, 0, $1)", Params: []string{"index", "item"}, Returns: none},
		{Name: "pop", Form: MethodHelper, JS: "__pop", Params: []string{"index"}, Returns: ElementType},
		{Name: "remove", Form: MethodHelper, JS: "__remove", Params: []string{"item"}, Returns: none},
		{Name: "index", Form: MethodRename, JS: "indexOf", Params: []string{"item"}, Returns: integer},
		{Name: "count", Form: MethodHelper, JS: "__count", Params: []string{"item"}, Returns: integer},
		{Name: "sort", Form: MethodHelper, JS: "__sort", Params: []string{"key", "reverse"}, Returns: none},
		{Name: "reverse", Form: MethodRename, JS: "reverse", Returns: none},
		{Name: "copy", Form: MethodTemplate, Template: "$r.slice()", Returns: sameAsReceiver},
		{Name: "clear", Form: MethodTemplate, Template: "$r.splice(0)", Returns: none},
	}
	for _, m := range methods {
		m.Receiver = ReceiverList
		if err := ctx.DefineMethod(m); err != nil {
			return err
		}
	}
	for name, src := range listHelpers {
		if err := ctx.DefineHelper(name, src); err != nil {
			return err
		}
	}
	return nil
}

var listHelpers = map[string]string{
	"__pop": `function __pop(xs, i) {
  if (i === undefined) return xs.pop();
  return xs.splice(i, 1)[0];
}`,
	"__remove": `function __remove(xs, x) {
  const i = xs.indexOf(x);
  if (i < 0) throw new Error("list.remove(x): x not in list");
  xs.splice(i, 1);
}`,
	"__sort": `function __sort(xs, key, reverse) {
  const k = key ?? ((x) => x);
  xs.sort((a, b) => {
    const ka = k(a), kb = k(b);
    return ka < kb ? -1 : ka > kb ? 1 : 0;
  });
  if (reverse) xs.reverse();
}`,
	"__slice": `function __slice(xs, start, stop, step) {
  const n = xs.length;
  step = step ?? 1;
  const norm = (i, d) => (i === undefined || i === null ? d : i < 0 ? Math.max(n + i, step < 0 ? -1 : 0) : Math.min(i, step < 0 ? n - 1 : n));
  const out = [];
  if (step > 0) { for (let i = norm(start, 0); i < norm(stop, n); i += step) out.push(xs[i]); }
  else { for (let i = norm(start, n - 1); i > norm(stop, -1); i += step) out.push(xs[i]); }
  return typeof xs === "string" ? out.join("") : out;
}`,
	"__in": `function __in(x, container) {
  if (container === null || container === undefined) return false;
  if (typeof container === "string" || Array.isArray(container)) return container.includes(x);
  if (container instanceof Set || container instanceof Map) return container.has(x);
  return Object.prototype.hasOwnProperty.call(container, x);
}`,
	"__len": `function __len(x) {
  if (x instanceof Map || x instanceof Set) return x.size;
  if (typeof x === "string" || Array.isArray(x)) return x.length;
  return Object.keys(x).length;
}`,
}
