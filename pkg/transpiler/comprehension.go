package transpiler

import (
	"strings"

	"github.com/quill-lang/quill/pkg/builtins"
	"github.com/quill-lang/quill/pkg/parser"
)

// comprehension emits an immediately invoked arrow function building the
// result with one for...of per clause and one if per filter. The arrow
// keeps `this`, and the clause targets stay local to it.
func (t *Transpiler) comprehension(c *parser.Comprehension) (string, int) {
	sc := newArrowScope(t.scope)
	saved := t.scope
	t.scope = sc
	defer func() { t.scope = saved }()

	init := "[]"
	switch c.Kind {
	case parser.SetComp:
		init = "new Set()"
	case parser.DictComp:
		init = "{}"
	}
	parts := []string{"const __result = " + init + ";"}

	async := false
	closing := 0
	for _, cl := range c.Clauses {
		iter := t.expr(cl.Iterable)
		if t.kindOf(cl.Iterable) == builtins.ReceiverDict {
			iter = "Object.keys(" + iter + ")"
		}
		sc.declare(parser.PatternNames(cl.Target)...)
		loop := "for ("
		if cl.IsAsync {
			async = true
			loop = "for await ("
		}
		parts = append(parts, loop+"const "+t.pattern(cl.Target)+" of "+iter+") {")
		closing++
		for _, cond := range cl.Conditions {
			parts = append(parts, "if ("+t.cond(cond)+") {")
			closing++
		}
	}

	switch c.Kind {
	case parser.ListComp:
		parts = append(parts, "__result.push("+t.expr(c.Element)+");")
	case parser.SetComp:
		parts = append(parts, "__result.add("+t.expr(c.Element)+");")
	case parser.DictComp:
		parts = append(parts, "__result["+t.expr(c.Key)+"] = "+t.expr(c.Element)+";")
	}
	for ; closing > 0; closing-- {
		parts = append(parts, "}")
	}
	parts = append(parts, "return __result;")
	if len(sc.hoisted) > 0 {
		parts = append([]string{"let " + strings.Join(sc.hoisted, ", ") + ";"}, parts...)
	}

	body := "{ " + strings.Join(parts, " ") + " }"
	if async {
		return "await (async () => " + body + ")()", precUnary
	}
	return "(() => " + body + ")()", precCall
}
