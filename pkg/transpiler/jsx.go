package transpiler

import (
	"strings"

	"github.com/quill-lang/quill/pkg/parser"
)

// jsxAttributeNames renames HTML attributes that are reserved words.
var jsxAttributeNames = map[string]string{
	"class": "className",
	"for":   "htmlFor",
}

// jsx emits markup as a runtime call: jsx(tag, props, ...children) with the
// automatic runtime, React.createElement otherwise.
func (t *Transpiler) jsx(n *parser.JSXElement) string {
	args := []string{t.jsxTag(n.Tag), t.jsxProps(n.Attributes)}
	for _, child := range n.Children {
		if text, ok := child.(*parser.JSXText); ok {
			collapsed := strings.Join(strings.Fields(text.Value), " ")
			if collapsed == "" {
				continue
			}
			args = append(args, jsString(collapsed))
			continue
		}
		args = append(args, t.operand(child, precAssign))
	}

	fn := "React.createElement"
	if t.opts.JSX {
		fn = "jsx"
		t.usesJSX = true
	}
	return fn + "(" + strings.Join(args, ", ") + ")"
}

// jsxTag quotes intrinsic elements; capitalized and dotted tags name
// components.
func (t *Transpiler) jsxTag(tag string) string {
	if startsUpper(tag) || strings.Contains(tag, ".") {
		return tag
	}
	return jsString(tag)
}

func (t *Transpiler) jsxProps(attrs []*parser.JSXAttribute) string {
	if len(attrs) == 0 {
		return "null"
	}
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		if a.Spread {
			parts[i] = "..." + t.operand(a.Value, precAssign)
			continue
		}
		key := a.Name
		if renamed, ok := jsxAttributeNames[key]; ok {
			key = renamed
		}
		if !isIdentifierName(key) {
			key = jsString(key)
		}
		value := "true"
		if a.Value != nil {
			value = t.operand(a.Value, precAssign)
		}
		parts[i] = key + ": " + value
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
