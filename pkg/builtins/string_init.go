package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// StringInitializer declares the str methods.
type StringInitializer struct{}

func (s *StringInitializer) Name() string {
	return "str"
}

func (s *StringInitializer) Priority() int {
	return PriorityString
}

func (s *StringInitializer) InitTypes(ctx *TypeContext) error {
	return nil
}

func returns(t types.Type) func(types.Type) types.Type {
	return func(types.Type) types.Type { return t }
}

func sameAsReceiver(recv types.Type) types.Type {
	return types.Widen(recv)
}

func (s *StringInitializer) InitMappings(ctx *MappingContext) error {
	str := returns(types.Str)
	boolean := returns(types.Bool)
	integer := returns(types.Int)
	strList := returns(&types.ListType{Elem: types.Str})

	methods := []Method{
		{Name: "upper", Form: MethodRename, JS: "toUpperCase", Returns: str},
		{Name: "lower", Form: MethodRename, JS: "toLowerCase", Returns: str},
		{Name: "strip", Form: MethodRename, JS: "trim", Returns: str},
		{Name: "lstrip", Form: MethodRename, JS: "trimStart", Returns: str},
		{Name: "rstrip", Form: MethodRename, JS: "trimEnd", Returns: str},
		{Name: "startswith", Form: MethodRename, JS: "startsWith", Params: []string{"prefix", "start"}, Returns: boolean},
		{Name: "endswith", Form: MethodRename, JS: "endsWith", Params: []string{"suffix"}, Returns: boolean},
		{Name: "find", Form: MethodRename, JS: "indexOf", Params: []string{"sub", "start"}, Returns: integer},
		{Name: "rfind", Form: MethodRename, JS: "lastIndexOf", Params: []string{"sub"}, Returns: integer},
		{Name: "index", Form: MethodRename, JS: "indexOf", Params: []string{"sub", "start"}, Returns: integer},
		{Name: "replace", Form: MethodRename, JS: "replaceAll", Params: []string{"old", "new"}, Returns: str},
		{Name: "split", Form: MethodHelper, JS: "__split", Params: []string{"sep", "maxsplit"}, Returns: strList},
		{Name: "splitlines", Form: MethodTemplate, Template: `$r.split(/\r?\n/)`, Returns: strList},
		{Name: "join", Form: MethodTemplate, Template: "Array.from($0).join($r)", Params: []string{"iterable"}, Returns: str},
		{Name: "zfill", Form: MethodTemplate, Template: `$r.padStart($0, "0")`, Params: []string{"width"}, Returns: str},
		{Name: "ljust", Form: MethodRename, JS: "padEnd", Params: []string{"width", "fillchar"}, Returns: str},
		{Name: "rjust", Form: MethodRename, JS: "padStart", Params: []string{"width", "fillchar"}, Returns: str},
		{Name: "center", Form: MethodHelper, JS: "__center", Params: []string{"width", "fillchar"}, Returns: str},
		{Name: "count", Form: MethodHelper, JS: "__count", Params: []string{"sub"}, Returns: integer},
		{Name: "title", Form: MethodHelper, JS: "__title", Returns: str},
		{Name: "capitalize", Form: MethodHelper, JS: "__capitalize", Returns: str},
		{Name: "format", Form: MethodHelper, JS: "__format", Returns: str},
		{Name: "isdigit", Form: MethodTemplate, Template: `/^[0-9]+$/.test($r)`, Returns: boolean},
		{Name: "isalpha", Form: MethodTemplate, Template: `/^[\p{L}]+$/u.test($r)`, Returns: boolean},
		{Name: "isspace", Form: MethodTemplate, Template: `/^\s+$/.test($r)`, Returns: boolean},
		{Name: "isupper", Form: MethodTemplate, Template: `($r === $r.toUpperCase() && $r !== $r.toLowerCase())`, Returns: boolean},
		{Name: "islower", Form: MethodTemplate, Template: `($r === $r.toLowerCase() && $r !== $r.toUpperCase())`, Returns: boolean},
		{Name: "encode", Form: MethodTemplate, Template: "new TextEncoder().encode($r)", Returns: returns(types.Any)},
	}
	for _, m := range methods {
		m.Receiver = ReceiverStr
		if err := ctx.DefineMethod(m); err != nil {
			return err
		}
	}
	for name, src := range stringHelpers {
		if err := ctx.DefineHelper(name, src); err != nil {
			return err
		}
	}
	return nil
}

var stringHelpers = map[string]string{
	"__split": `function __split(s, sep, maxsplit) {
  let parts = sep === undefined || sep === null ? s.trim().split(/\s+/).filter((p) => p !== "") : s.split(sep);
  if (maxsplit !== undefined && maxsplit >= 0 && parts.length > maxsplit + 1) {
    const joiner = sep === undefined || sep === null ? " " : sep;
    parts = parts.slice(0, maxsplit).concat([parts.slice(maxsplit).join(joiner)]);
  }
  return parts;
}`,
	"__center": `function __center(s, width, fill) {
  s = String(s);
  fill = fill ?? " ";
  const total = Math.max(0, width - s.length);
  const left = Math.floor(total / 2);
  return fill.repeat(left) + s + fill.repeat(total - left);
}`,
	"__count": `function __count(container, x) {
  if (typeof container === "string") return x === "" ? container.length + 1 : container.split(x).length - 1;
  let n = 0;
  for (const item of container) if (item === x) n++;
  return n;
}`,
	"__title": `function __title(s) {
  return s.toLowerCase().replace(/(^|[^a-zA-Z])([a-z])/g, (_, p, c) => p + c.toUpperCase());
}`,
	"__capitalize": `function __capitalize(s) {
  return s.length === 0 ? s : s[0].toUpperCase() + s.slice(1).toLowerCase();
}`,
	"__format": `function __format(s, ...args) {
  let next = 0;
  return s.replace(/\{(\d*)\}/g, (_, i) => String(args[i === "" ? next++ : Number(i)]));
}`,
}
