package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// SetInitializer declares the set methods on top of JavaScript's Set.
type SetInitializer struct{}

func (s *SetInitializer) Name() string {
	return "set"
}

func (s *SetInitializer) Priority() int {
	return PrioritySet
}

func (s *SetInitializer) InitTypes(ctx *TypeContext) error {
	return nil
}

func (s *SetInitializer) InitMappings(ctx *MappingContext) error {
	none := returns(types.None)
	methods := []Method{
		{Name: "add", Form: MethodRename, JS: "add", Params: []string{"elem"}, Returns: none},
		{Name: "remove", Form: MethodRename, JS: "delete", Params: []string{"elem"}, Returns: none},
		{Name: "discard", Form: MethodRename, JS: "delete", Params: []string{"elem"}, Returns: none},
		{Name: "clear", Form: MethodRename, JS: "clear", Returns: none},
		{Name: "copy", Form: MethodTemplate, Template: "new Set($r)", Returns: sameAsReceiver},
		{Name: "union", Form: MethodTemplate, Template: "new Set([...$r, ...$0])", Params: []string{"other"}, Returns: sameAsReceiver},
		{Name: "intersection", Form: MethodHelper, JS: "__intersection", Params: []string{"other"}, Returns: sameAsReceiver},
		{Name: "difference", Form: MethodHelper, JS: "__difference", Params: []string{"other"}, Returns: sameAsReceiver},
		{Name: "issubset", Form: MethodTemplate, Template: "[...$r].every((x) => new Set($0).has(x))", Params: []string{"other"}, Returns: returns(types.Bool)},
	}
	for _, m := range methods {
		m.Receiver = ReceiverSet
		if err := ctx.DefineMethod(m); err != nil {
			return err
		}
	}
	for name, src := range setHelpers {
		if err := ctx.DefineHelper(name, src); err != nil {
			return err
		}
	}
	return nil
}

var setHelpers = map[string]string{
	"__intersection": `function __intersection(a, b) {
  const other = new Set(b);
  return new Set([...a].filter((x) => other.has(x)));
}`,
	"__difference": `function __difference(a, b) {
  const other = new Set(b);
  return new Set([...a].filter((x) => !other.has(x)));
}`,
}
