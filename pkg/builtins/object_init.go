package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// DictInitializer declares the dict methods. Dicts are plain objects in the
// emitted JavaScript.
type DictInitializer struct{}

func (d *DictInitializer) Name() string {
	return "dict"
}

func (d *DictInitializer) Priority() int {
	return PriorityDict
}

func (d *DictInitializer) InitTypes(ctx *TypeContext) error {
	return nil
}

// KeyValueTypes returns the key and value types of a mapping type.
func KeyValueTypes(t types.Type) (types.Type, types.Type) {
	switch tt := t.(type) {
	case *types.DictType:
		return tt.Key, tt.Value
	case *types.IndexSignatureType:
		return tt.Key, tt.Value
	case *types.ObjectType:
		values := make([]types.Type, 0, len(tt.Fields))
		for _, k := range tt.Keys() {
			values = append(values, tt.Fields[k])
		}
		return types.Str, types.CommonTypeOf(values)
	}
	return types.Any, types.Any
}

func (d *DictInitializer) InitMappings(ctx *MappingContext) error {
	keys := func(recv types.Type) types.Type {
		k, _ := KeyValueTypes(recv)
		return &types.ListType{Elem: k}
	}
	values := func(recv types.Type) types.Type {
		_, v := KeyValueTypes(recv)
		return &types.ListType{Elem: v}
	}
	items := func(recv types.Type) types.Type {
		k, v := KeyValueTypes(recv)
		return &types.ListType{Elem: &types.TupleType{Elems: []types.Type{k, v}}}
	}
	value := func(recv types.Type) types.Type {
		_, v := KeyValueTypes(recv)
		return v
	}
	optionalValue := func(recv types.Type) types.Type {
		return types.Optional(value(recv))
	}

	methods := []Method{
		{Name: "keys", Form: MethodStatic, JS: "Object.keys", Returns: keys},
		{Name: "values", Form: MethodStatic, JS: "Object.values", Returns: values},
		{Name: "items", Form: MethodStatic, JS: "Object.entries", Returns: items},
		{Name: "get", Form: MethodHelper, JS: "__dictGet", Params: []string{"key", "default"}, Returns: optionalValue},
		{Name: "pop", Form: MethodHelper, JS: "__dictPop", Params: []string{"key", "default"}, Returns: value},
		{Name: "setdefault", Form: MethodHelper, JS: "__setdefault", Params: []string{"key", "default"}, Returns: value},
		{Name: "update", Form: MethodStatic, JS: "Object.assign", Params: []string{"other"}, Returns: returns(types.None)},
		{Name: "copy", Form: MethodTemplate, Template: "({ ...$r })", Returns: sameAsReceiver},
		{Name: "clear", Form: MethodHelper, JS: "__dictClear", Returns: returns(types.None)},
	}
	for _, m := range methods {
		m.Receiver = ReceiverDict
		if err := ctx.DefineMethod(m); err != nil {
			return err
		}
	}
	for name, src := range dictHelpers {
		if err := ctx.DefineHelper(name, src); err != nil {
			return err
		}
	}
	return nil
}

var dictHelpers = map[string]string{
	"__dictGet": `function __dictGet(d, k, fallback) {
  if (d instanceof Map) return d.has(k) ? d.get(k) : (fallback ?? null);
  return Object.prototype.hasOwnProperty.call(d, k) ? d[k] : (fallback ?? null);
}`,
	"__dictPop": `function __dictPop(d, k, fallback) {
  if (!Object.prototype.hasOwnProperty.call(d, k)) {
    if (arguments.length > 2) return fallback;
    throw new Error("KeyError: " + String(k));
  }
  const v = d[k];
  delete d[k];
  return v;
}`,
	"__setdefault": `function __setdefault(d, k, fallback) {
  if (!Object.prototype.hasOwnProperty.call(d, k)) d[k] = fallback ?? null;
  return d[k];
}`,
	"__dictClear": `function __dictClear(d) {
  for (const k of Object.keys(d)) delete d[k];
}`,
}
