package builtins

import (
	"github.com/quill-lang/quill/pkg/types"
)

// ConsoleInitializer declares console and the other host globals a program
// may reference without importing them.
type ConsoleInitializer struct{}

func (c *ConsoleInitializer) Name() string {
	return "console"
}

func (c *ConsoleInitializer) Priority() int {
	return PriorityConsole
}

// hostGlobals are typed as Any; the checker only needs to know they exist.
var hostGlobals = []string{
	"document", "window", "globalThis", "process", "require", "module",
	"exports", "React", "fetch", "setTimeout", "setInterval", "clearTimeout",
	"clearInterval", "Promise", "Object", "Array", "Number", "String",
	"Boolean", "Symbol", "Map", "WeakMap", "Date", "RegExp", "parseInt",
	"parseFloat", "isNaN", "NaN", "Infinity", "undefined", "URL",
	"TextEncoder", "TextDecoder", "structuredClone", "__name__",
}

func (c *ConsoleInitializer) InitTypes(ctx *TypeContext) error {
	logFn := types.NewVariadicFunction(nil, types.Any, types.None)
	console := types.NewObject(map[string]types.Type{
		"log":   logFn,
		"info":  logFn,
		"warn":  logFn,
		"error": logFn,
		"debug": logFn,
		"table": logFn,
	}).Named("console")
	if err := ctx.DefineGlobal("console", console); err != nil {
		return err
	}
	for _, name := range hostGlobals {
		if err := ctx.DefineGlobal(name, types.Any); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleInitializer) InitMappings(ctx *MappingContext) error {
	return ctx.Define(Mapping{Name: "__name__", JSEquivalent: `"__main__"`})
}
