package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// MathInitializer declares the host Math object and the importable math
// module, which is shimmed onto Math.
type MathInitializer struct{}

func (m *MathInitializer) Name() string {
	return "math"
}

func (m *MathInitializer) Priority() int {
	return PriorityMath
}

func mathFields() map[string]types.Type {
	number := types.NewUnion(types.Int, types.Float)
	unary := types.NewSimpleFunction([]types.Type{number}, types.Float)
	binary := types.NewSimpleFunction([]types.Type{number, number}, types.Float)
	rounding := types.NewSimpleFunction([]types.Type{number}, types.Int)
	return map[string]types.Type{
		"sqrt":  unary,
		"sin":   unary,
		"cos":   unary,
		"tan":   unary,
		"asin":  unary,
		"acos":  unary,
		"atan":  unary,
		"exp":   unary,
		"log2":  unary,
		"log10": unary,
		"atan2": binary,
		"pow":   binary,
		"floor": rounding,
		"ceil":  rounding,
		"trunc": rounding,
		"abs":   types.NewSimpleFunction([]types.Type{number}, number),
		"log":   types.NewOptionalFunction([]types.Type{number}, []types.Type{number}, types.Float),
		"min":   types.NewVariadicFunction(nil, number, types.Float),
		"max":   types.NewVariadicFunction(nil, number, types.Float),
		"hypot": types.NewVariadicFunction(nil, number, types.Float),
		"pi":    types.Float,
		"e":     types.Float,
	}
}

func (m *MathInitializer) InitTypes(ctx *TypeContext) error {
	host := mathFields()
	host["random"] = types.NewSimpleFunction(nil, types.Float)
	host["round"] = types.NewSimpleFunction([]types.Type{types.Float}, types.Int)
	host["PI"] = types.Float
	host["E"] = types.Float
	delete(host, "pi")
	delete(host, "e")
	if err := ctx.DefineGlobal("Math", types.NewObject(host).Named("Math")); err != nil {
		return err
	}

	module := mathFields()
	module["inf"] = types.Float
	module["nan"] = types.Float
	module["tau"] = types.Float
	module["isnan"] = types.NewSimpleFunction([]types.Type{types.Float}, types.Bool)
	module["isinf"] = types.NewSimpleFunction([]types.Type{types.Float}, types.Bool)
	module["factorial"] = types.NewSimpleFunction([]types.Type{types.Int}, types.Int)
	module["gcd"] = types.NewSimpleFunction([]types.Type{types.Int, types.Int}, types.Int)
	return ctx.DefineModule("math", types.NewObject(module).Named("math"))
}

const mathShim = `{
  ...Object.fromEntries(Object.getOwnPropertyNames(Math).map((k) => [k, Math[k]])),
  pi: Math.PI,
  e: Math.E,
  tau: 2 * Math.PI,
  inf: Infinity,
  nan: NaN,
  isnan: Number.isNaN,
  isinf: (x) => x === Infinity || x === -Infinity,
  factorial: (n) => { let r = 1; for (let i = 2; i <= n; i++) r *= i; return r; },
  gcd: (a, b) => { a = Math.abs(a); b = Math.abs(b); while (b) [a, b] = [b, a % b]; return a; },
}`

func (m *MathInitializer) InitMappings(ctx *MappingContext) error {
	return ctx.DefineModule("math", mathShim)
}
