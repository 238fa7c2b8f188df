package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// GlobalsInitializer declares the Python builtin functions.
type GlobalsInitializer struct{}

func (g *GlobalsInitializer) Name() string {
	return "globals"
}

func (g *GlobalsInitializer) Priority() int {
	return PriorityGlobals
}

func (g *GlobalsInitializer) InitTypes(ctx *TypeContext) error {
	t := types.NewTypeParameter("T", 0, nil)
	tRef := t.Ref()
	listOfT := &types.ListType{Elem: tRef}
	number := types.NewUnion(types.Int, types.Float)
	anyList := &types.ListType{Elem: types.Any}
	n := types.NewTypeParameter("N", 0, number)

	globals := map[string]types.Type{
		"print":      types.NewVariadicFunction(nil, types.Any, types.None),
		"len":        types.NewSimpleFunction([]types.Type{types.Any}, types.Int),
		"range":      types.NewOptionalFunction([]types.Type{types.Int}, []types.Type{types.Int, types.Int}, &types.ListType{Elem: types.Int}),
		"str":        types.NewOptionalFunction(nil, []types.Type{types.Any}, types.Str),
		"repr":       types.NewSimpleFunction([]types.Type{types.Any}, types.Str),
		"int":        types.NewOptionalFunction(nil, []types.Type{types.Any, types.Int}, types.Int),
		"float":      types.NewOptionalFunction(nil, []types.Type{types.Any}, types.Float),
		"bool":       types.NewOptionalFunction(nil, []types.Type{types.Any}, types.Bool),
		"abs":        types.NewGenericFunction([]*types.TypeParameter{n}, types.NewSimpleFunction([]types.Type{n.Ref()}, n.Ref())),
		"round":      types.NewOptionalFunction([]types.Type{types.Float}, []types.Type{types.Int}, types.Float),
		"min":        types.NewVariadicFunction(nil, types.Any, types.Any),
		"max":        types.NewVariadicFunction(nil, types.Any, types.Any),
		"sum":        types.NewGenericFunction([]*types.TypeParameter{t}, types.NewOptionalFunction([]types.Type{listOfT}, []types.Type{tRef}, tRef)),
		"sorted":     types.NewGenericFunction([]*types.TypeParameter{t}, types.NewOptionalFunction([]types.Type{listOfT}, []types.Type{types.Any, types.Bool}, listOfT)),
		"reversed":   types.NewGenericFunction([]*types.TypeParameter{t}, types.NewSimpleFunction([]types.Type{listOfT}, listOfT)),
		"enumerate":  types.NewGenericFunction([]*types.TypeParameter{t}, types.NewOptionalFunction([]types.Type{listOfT}, []types.Type{types.Int}, &types.ListType{Elem: &types.TupleType{Elems: []types.Type{types.Int, tRef}}})),
		"zip":        types.NewVariadicFunction(nil, types.Any, &types.ListType{Elem: anyList}),
		"map":        types.NewSimpleFunction([]types.Type{types.Any, types.Any}, anyList),
		"filter":     types.NewGenericFunction([]*types.TypeParameter{t}, types.NewSimpleFunction([]types.Type{types.Any, listOfT}, listOfT)),
		"any":        types.NewSimpleFunction([]types.Type{types.Any}, types.Bool),
		"all":        types.NewSimpleFunction([]types.Type{types.Any}, types.Bool),
		"list":       types.NewGenericFunction([]*types.TypeParameter{t}, types.NewOptionalFunction(nil, []types.Type{listOfT}, listOfT)),
		"tuple":      types.NewOptionalFunction(nil, []types.Type{types.Any}, anyList),
		"dict":       types.NewOptionalFunction(nil, []types.Type{types.Any}, &types.DictType{Key: types.Any, Value: types.Any}),
		"set":        types.NewGenericFunction([]*types.TypeParameter{t}, types.NewOptionalFunction(nil, []types.Type{listOfT}, &types.SetType{Elem: tRef})),
		"ord":        types.NewSimpleFunction([]types.Type{types.Str}, types.Int),
		"chr":        types.NewSimpleFunction([]types.Type{types.Int}, types.Str),
		"hex":        types.NewSimpleFunction([]types.Type{types.Int}, types.Str),
		"bin":        types.NewSimpleFunction([]types.Type{types.Int}, types.Str),
		"oct":        types.NewSimpleFunction([]types.Type{types.Int}, types.Str),
		"divmod":     types.NewSimpleFunction([]types.Type{number, number}, &types.TupleType{Elems: []types.Type{types.Int, types.Int}}),
		"pow":        types.NewSimpleFunction([]types.Type{number, number}, types.Float),
		"input":      types.NewOptionalFunction(nil, []types.Type{types.Str}, types.Str),
		"type":       types.NewSimpleFunction([]types.Type{types.Any}, types.Any),
		"isinstance": types.NewSimpleFunction([]types.Type{types.Any, types.Any}, types.Bool),
		"hasattr":    types.NewSimpleFunction([]types.Type{types.Any, types.Str}, types.Bool),
		"getattr":    types.NewOptionalFunction([]types.Type{types.Any, types.Str}, []types.Type{types.Any}, types.Any),
		"setattr":    types.NewSimpleFunction([]types.Type{types.Any, types.Str, types.Any}, types.None),
		"callable":   types.NewSimpleFunction([]types.Type{types.Any}, types.Bool),
		"deepcopy":   types.NewGenericFunction([]*types.TypeParameter{t}, types.NewSimpleFunction([]types.Type{tRef}, tRef)),
		"uuid4":      types.NewSimpleFunction(nil, types.Str),
	}
	for name, typ := range globals {
		if err := ctx.DefineGlobal(name, typ); err != nil {
			return err
		}
	}

	aliases := map[string]types.Type{
		"List":     &types.ListType{Elem: types.Any},
		"Dict":     &types.DictType{Key: types.Any, Value: types.Any},
		"Set":      &types.SetType{Elem: types.Any},
		"Tuple":    &types.TupleType{},
		"Callable": &types.FunctionType{Rest: types.Any, Return: types.Any},
	}
	for name, typ := range aliases {
		if err := ctx.DefineTypeAlias(name, typ); err != nil {
			return err
		}
	}
	return nil
}

func (g *GlobalsInitializer) InitMappings(ctx *MappingContext) error {
	mappings := []Mapping{
		{Name: "print", JSEquivalent: "console.log"},
		{Name: "len", JSEquivalent: "length", IsMethodStyle: true, IsProperty: true},
		{Name: "str", JSEquivalent: "String"},
		{Name: "float", JSEquivalent: "parseFloat"},
		{Name: "bool", JSEquivalent: "__bool", RequiresHelper: "__bool"},
		{Name: "int", JSEquivalent: "__int", Params: []string{"x", "base"}, RequiresHelper: "__int"},
		{Name: "repr", JSEquivalent: "__repr", RequiresHelper: "__repr"},
		{Name: "abs", JSEquivalent: "Math.abs"},
		{Name: "round", JSEquivalent: "__round", Params: []string{"number", "ndigits"}, RequiresHelper: "__round"},
		{Name: "pow", JSEquivalent: "Math.pow"},
		{Name: "min", JSEquivalent: "__min", RequiresHelper: "__min"},
		{Name: "max", JSEquivalent: "__max", RequiresHelper: "__max"},
		{Name: "sum", JSEquivalent: "__sum", Params: []string{"iterable", "start"}, RequiresHelper: "__sum"},
		{Name: "range", JSEquivalent: "__range", Params: []string{"start", "stop", "step"}, RequiresHelper: "__range"},
		{Name: "sorted", JSEquivalent: "__sorted", Params: []string{"iterable", "key", "reverse"}, RequiresHelper: "__sorted"},
		{Name: "reversed", JSEquivalent: "__reversed", RequiresHelper: "__reversed"},
		{Name: "enumerate", JSEquivalent: "__enumerate", Params: []string{"iterable", "start"}, RequiresHelper: "__enumerate"},
		{Name: "zip", JSEquivalent: "__zip", RequiresHelper: "__zip"},
		{Name: "map", JSEquivalent: "__map", RequiresHelper: "__map"},
		{Name: "filter", JSEquivalent: "__filter", RequiresHelper: "__filter"},
		{Name: "any", JSEquivalent: "__any", RequiresHelper: "__any"},
		{Name: "all", JSEquivalent: "__all", RequiresHelper: "__all"},
		{Name: "list", JSEquivalent: "Array.from"},
		{Name: "tuple", JSEquivalent: "Array.from"},
		{Name: "dict", JSEquivalent: "__dict", RequiresHelper: "__dict"},
		{Name: "set", JSEquivalent: "new Set"},
		{Name: "ord", JSEquivalent: "codePointAt", IsMethodStyle: true},
		{Name: "chr", JSEquivalent: "String.fromCodePoint"},
		{Name: "hex", JSEquivalent: "__hex", RequiresHelper: "__hex"},
		{Name: "bin", JSEquivalent: "__bin", RequiresHelper: "__bin"},
		{Name: "oct", JSEquivalent: "__oct", RequiresHelper: "__oct"},
		{Name: "divmod", JSEquivalent: "__divmod", RequiresHelper: "__divmod"},
		{Name: "input", JSEquivalent: "prompt"},
		{Name: "type", JSEquivalent: "__type", RequiresHelper: "__type"},
		{Name: "getattr", JSEquivalent: "__getattr", Params: []string{"obj", "name", "default"}, RequiresHelper: "__getattr"},
		{Name: "setattr", JSEquivalent: "Reflect.set"},
		{Name: "callable", JSEquivalent: "__callable", RequiresHelper: "__callable"},
		{Name: "deepcopy", JSEquivalent: "structuredClone"},
		{Name: "uuid4", JSEquivalent: "randomUUID", RequiresImport: &Import{Names: []string{"randomUUID"}, Source: "node:crypto"}},
	}
	for name, src := range globalHelpers {
		if err := ctx.DefineHelper(name, src); err != nil {
			return err
		}
	}
	for _, m := range mappings {
		if err := ctx.Define(m); err != nil {
			return err
		}
	}
	return nil
}

var globalHelpers = map[string]string{
	"__bool": `function __bool(x) {
  if (Array.isArray(x) || typeof x === "string") return x.length > 0;
  if (x instanceof Map || x instanceof Set) return x.size > 0;
  if (x !== null && typeof x === "object") return Object.keys(x).length > 0;
  return Boolean(x);
}`,
	"__int": `function __int(x, base) {
  if (typeof x === "string") return parseInt(x, base ?? 10);
  return Math.trunc(Number(x ?? 0));
}`,
	"__repr": `function __repr(x) {
  if (typeof x === "string") return "'" + x.replace(/'/g, "\\'") + "'";
  if (x === null || x === undefined) return "None";
  if (x === true) return "True";
  if (x === false) return "False";
  if (Array.isArray(x)) return "[" + x.map(__repr).join(", ") + "]";
  if (typeof x === "object" && x.constructor === Object) {
    return "{" + Object.entries(x).map(([k, v]) => __repr(k) + ": " + __repr(v)).join(", ") + "}";
  }
  return String(x);
}`,
	"__round": `function __round(x, n) {
  const f = Math.pow(10, n ?? 0);
  return Math.round(x * f) / f;
}`,
	"__min": `function __min(...args) {
  const xs = args.length === 1 ? Array.from(args[0]) : args;
  return xs.reduce((a, b) => (b < a ? b : a));
}`,
	"__max": `function __max(...args) {
  const xs = args.length === 1 ? Array.from(args[0]) : args;
  return xs.reduce((a, b) => (b > a ? b : a));
}`,
	"__sum": `function __sum(xs, start) {
  let total = start ?? 0;
  for (const x of xs) total += x;
  return total;
}`,
	"__range": `function __range(start, stop, step) {
  if (stop === undefined) { stop = start; start = 0; }
  step = step ?? 1;
  const out = [];
  if (step > 0) { for (let i = start; i < stop; i += step) out.push(i); }
  else { for (let i = start; i > stop; i += step) out.push(i); }
  return out;
}`,
	"__sorted": `function __sorted(xs, key, reverse) {
  const k = key ?? ((x) => x);
  const out = Array.from(xs).sort((a, b) => {
    const ka = k(a), kb = k(b);
    return ka < kb ? -1 : ka > kb ? 1 : 0;
  });
  return reverse ? out.reverse() : out;
}`,
	"__reversed": `function __reversed(xs) {
  return Array.from(xs).reverse();
}`,
	"__enumerate": `function __enumerate(xs, start) {
  return Array.from(xs, (x, i) => [i + (start ?? 0), x]);
}`,
	"__zip": `function __zip(...xss) {
  const arrays = xss.map((xs) => Array.from(xs));
  const n = Math.min(...arrays.map((a) => a.length));
  return Array.from({ length: n }, (_, i) => arrays.map((a) => a[i]));
}`,
	"__map": `function __map(fn, xs) {
  return Array.from(xs, (x) => fn(x));
}`,
	"__filter": `function __filter(fn, xs) {
  return Array.from(xs).filter((x) => (fn === null ? x : fn(x)));
}`,
	"__any": `function __any(xs) {
  for (const x of xs) if (x) return true;
  return false;
}`,
	"__all": `function __all(xs) {
  for (const x of xs) if (!x) return false;
  return true;
}`,
	"__dict": `function __dict(x) {
  if (x === undefined) return {};
  if (Array.isArray(x)) return Object.fromEntries(x);
  if (x instanceof Map) return Object.fromEntries(x.entries());
  return { ...x };
}`,
	"__hex": `function __hex(n) {
  return (n < 0 ? "-0x" : "0x") + Math.abs(n).toString(16);
}`,
	"__bin": `function __bin(n) {
  return (n < 0 ? "-0b" : "0b") + Math.abs(n).toString(2);
}`,
	"__oct": `function __oct(n) {
  return (n < 0 ? "-0o" : "0o") + Math.abs(n).toString(8);
}`,
	"__divmod": `function __divmod(a, b) {
  const q = Math.floor(a / b);
  return [q, a - q * b];
}`,
	"__type": `function __type(x) {
  if (x === null || x === undefined) return "NoneType";
  return x.constructor ? x.constructor.name : typeof x;
}`,
	"__getattr": `function __getattr(obj, name, fallback) {
  if (obj !== null && obj !== undefined && name in Object(obj)) return obj[name];
  if (arguments.length > 2) return fallback;
  throw new TypeError("object has no attribute '" + name + "'");
}`,
	"__callable": `function __callable(x) {
  return typeof x === "function";
}`,
}
