package builtins

import (
	"fmt"

	"github.com/quill-lang/quill/pkg/types"
)

// ErrorInitializer declares the exception classes. JavaScript's own Error and
// TypeError are reused; the rest become small Error subclasses.
type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string {
	return "exceptions"
}

func (e *ErrorInitializer) Priority() int {
	return PriorityExceptions
}

// nativeErrors map straight onto JavaScript constructors.
var nativeErrors = map[string]string{
	"Exception":     "Error",
	"BaseException": "Error",
	"TypeError":     "TypeError",
	"RangeError":    "RangeError",
}

// derivedErrors are emitted as helper classes extending Error.
var derivedErrors = []string{
	"ValueError",
	"KeyError",
	"IndexError",
	"AttributeError",
	"RuntimeError",
	"NotImplementedError",
	"ZeroDivisionError",
	"StopIteration",
	"AssertionError",
	"LookupError",
	"OSError",
	"FileNotFoundError",
	"TimeoutError",
}

// ExceptionType is the instance type shared by all exception classes.
func ExceptionType(name string) *types.ObjectType {
	return types.NewObjectType().
		WithProperty("message", types.Str).
		WithProperty("name", types.Str).
		WithOptionalProperty("stack", types.Str).
		Named(name)
}

func (e *ErrorInitializer) InitTypes(ctx *TypeContext) error {
	define := func(name string) error {
		ctor := types.NewOptionalFunction(nil, []types.Type{types.Any}, ExceptionType(name))
		ctor.ParamNames = []string{"message"}
		return ctx.DefineGlobal(name, ctor)
	}
	for name := range nativeErrors {
		if err := define(name); err != nil {
			return err
		}
	}
	for _, name := range derivedErrors {
		if err := define(name); err != nil {
			return err
		}
	}
	return nil
}

func (e *ErrorInitializer) InitMappings(ctx *MappingContext) error {
	for name, js := range nativeErrors {
		if err := ctx.Define(Mapping{Name: name, JSEquivalent: js, IsConstructor: true}); err != nil {
			return err
		}
	}
	for _, name := range derivedErrors {
		src := fmt.Sprintf(`class %[1]s extends Error {
  constructor(message) {
    super(message);
    this.name = "%[1]s";
  }
}`, name)
		if err := ctx.DefineHelper(name, src); err != nil {
			return err
		}
		if err := ctx.Define(Mapping{Name: name, JSEquivalent: name, RequiresHelper: name, IsConstructor: true}); err != nil {
			return err
		}
	}
	return nil
}
