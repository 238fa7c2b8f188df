package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// JSONInitializer declares the host JSON object and the json module.
type JSONInitializer struct{}

func (j *JSONInitializer) Name() string {
	return "json"
}

func (j *JSONInitializer) Priority() int {
	return PriorityJSON
}

func (j *JSONInitializer) InitTypes(ctx *TypeContext) error {
	host := types.NewObject(map[string]types.Type{
		"stringify": types.NewOptionalFunction([]types.Type{types.Any}, []types.Type{types.Any, types.Any}, types.Str),
		"parse":     types.NewOptionalFunction([]types.Type{types.Str}, []types.Type{types.Any}, types.Any),
	}).Named("JSON")
	if err := ctx.DefineGlobal("JSON", host); err != nil {
		return err
	}

	dumps := &types.FunctionType{
		Params:     []types.Type{types.Any, types.Any},
		ParamNames: []string{"obj", "indent"},
		Optional:   []bool{false, true},
		Return:     types.Str,
	}
	module := types.NewObject(map[string]types.Type{
		"dumps": dumps,
		"loads": types.NewSimpleFunction([]types.Type{types.Str}, types.Any),
	}).Named("json")
	return ctx.DefineModule("json", module)
}

const jsonShim = `{
  dumps: (obj, indent) => JSON.stringify(obj, null, indent),
  loads: (s) => JSON.parse(s),
}`

func (j *JSONInitializer) InitMappings(ctx *MappingContext) error {
	return ctx.DefineModule("json", jsonShim)
}
