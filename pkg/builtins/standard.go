package builtins

// GetStandardInitializers returns every initializer the default registry
// runs, ordered by priority.
func GetStandardInitializers() []BuiltinInitializer {
	return sortByPriority([]BuiltinInitializer{
		&GlobalsInitializer{},
		&ErrorInitializer{},
		&StringInitializer{},
		&ListInitializer{},
		&DictInitializer{},
		&SetInitializer{},
		&MathInitializer{},
		&JSONInitializer{},
		&ConsoleInitializer{},
	})
}
