package transpiler

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/quill-lang/quill/pkg/parser"
	"github.com/quill-lang/quill/pkg/types"
)

// formatSpec is the format-spec mini-language:
// [[fill]align][sign][#][0][width][grouping][.precision][type]
var formatSpec = regexp2.MustCompile(
	`^(?:(?<fill>.)?(?<align>[<>^=]))?(?<sign>[-+ ])?(?<alt>#)?(?<zero>0)?(?<width>\d+)?(?<group>[,_])?(?:\.(?<precision>\d+))?(?<type>[bcdeEfFgGnosxX%])?$`,
	regexp2.None)

type spec struct {
	fill, align, sign string
	alt, zero         bool
	width, precision  int // -1 when absent
	group, kind       string
}

func parseSpec(s string) (spec, bool) {
	m, err := formatSpec.FindStringMatch(s)
	if err != nil || m == nil {
		return spec{}, false
	}
	group := func(name string) string {
		if g := m.GroupByName(name); g != nil {
			return g.String()
		}
		return ""
	}
	number := func(name string) int {
		n, err := strconv.Atoi(group(name))
		if err != nil {
			return -1
		}
		return n
	}
	return spec{
		fill:      group("fill"),
		align:     group("align"),
		sign:      group("sign"),
		alt:       group("alt") != "",
		zero:      group("zero") != "",
		width:     number("width"),
		precision: number("precision"),
		group:     group("group"),
		kind:      group("type"),
	}, true
}

// fstring emits a template literal.
func (t *Transpiler) fstring(n *parser.FStringLiteral) string {
	var b strings.Builder
	b.WriteByte('`')
	for _, part := range n.Parts {
		switch p := part.(type) {
		case *parser.FStringText:
			b.WriteString(escapeTemplate(p.Value))
		case *parser.FStringExpr:
			value := t.expr(p.Expression)
			switch p.Conversion {
			case "r", "a":
				t.useHelper("__repr")
				value = "__repr(" + value + ")"
			case "s":
				value = "String(" + value + ")"
			}
			b.WriteString("${" + value + "}")
		case *parser.FStringFormatted:
			b.WriteString("${" + t.formatted(p.Expression, p.Spec) + "}")
		}
	}
	b.WriteByte('`')
	return b.String()
}

func escapeTemplate(s string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`", "${", "\\${").Replace(s)
}

// formatted lowers `{value:spec}` to JavaScript number and string
// formatting. Specs outside the grammar interpolate the bare value.
func (t *Transpiler) formatted(e parser.Expression, raw string) string {
	sp, ok := parseSpec(raw)
	if !ok {
		return t.expr(e)
	}
	v := t.expr(e)
	num := "(" + v + ")"
	numeric := sp.kind != "" && sp.kind != "s" && sp.kind != "c"
	if sp.kind == "" {
		numeric = types.IsNumeric(types.Widen(t.typeOf(e)))
	}

	// s is the formatted text; simple marks it safe to call methods on.
	var s string
	simple := true
	precision := func(def int) string {
		if sp.precision < 0 {
			return strconv.Itoa(def)
		}
		return strconv.Itoa(sp.precision)
	}

	switch sp.kind {
	case "f", "F":
		if sp.group != "" {
			p := precision(6)
			s = num + `.toLocaleString("en-US", { minimumFractionDigits: ` + p + ", maximumFractionDigits: " + p + " })"
		} else {
			s = num + ".toFixed(" + precision(6) + ")"
		}
	case "d", "n":
		if sp.group != "" {
			s = num + `.toLocaleString("en-US")`
		} else {
			s = num + ".toString()"
		}
	case "x", "X", "o", "b":
		radix := map[string]string{"x": "16", "X": "16", "o": "8", "b": "2"}[sp.kind]
		s = num + ".toString(" + radix + ")"
		if sp.kind == "X" {
			s += ".toUpperCase()"
		}
		if sp.alt {
			prefix := map[string]string{"x": "0x", "X": "0X", "o": "0o", "b": "0b"}[sp.kind]
			s = "(" + jsString(prefix) + " + " + s + ")"
		}
	case "%":
		s = "(" + num + " * 100).toFixed(" + precision(6) + `) + "%"`
		simple = false
	case "e", "E":
		s = num + ".toExponential(" + precision(6) + ")"
		if sp.kind == "E" {
			s += ".toUpperCase()"
		}
	case "g", "G":
		if sp.precision >= 0 {
			s = "String(Number(" + num + ".toPrecision(" + precision(6) + ")))"
		} else {
			s = "String(" + v + ")"
		}
	case "c":
		s = "String.fromCodePoint(" + v + ")"
	case "s":
		s = "String(" + v + ")"
	default:
		switch {
		case sp.precision >= 0 && numeric:
			s = "String(Number(" + num + ".toPrecision(" + precision(6) + ")))"
		case sp.precision >= 0:
			s = "String(" + v + ").slice(0, " + precision(0) + ")"
		case sp.group != "":
			s = num + `.toLocaleString("en-US")`
		default:
			s = "String(" + v + ")"
		}
	}

	switch sp.sign {
	case "+":
		s = "(" + num + ` >= 0 ? "+" : "") + ` + s
		simple = false
	case " ":
		s = "(" + num + ` >= 0 ? " " : "") + ` + s
		simple = false
	}

	if sp.width < 0 {
		return s
	}
	if !simple {
		s = "(" + s + ")"
	}

	align, fill := sp.align, sp.fill
	if fill == "" {
		fill = " "
		if sp.zero && align == "" {
			fill, align = "0", "="
		}
	}
	if align == "" {
		align = "<"
		if numeric {
			align = ">"
		}
	}
	width := strconv.Itoa(sp.width)
	fillArg := ""
	if fill != " " {
		fillArg = ", " + jsString(fill)
	}
	switch align {
	case "<":
		return s + ".padEnd(" + width + fillArg + ")"
	case "^":
		t.useHelper("__center")
		return "__center(" + s + ", " + width + ", " + jsString(fill) + ")"
	}
	return s + ".padStart(" + width + fillArg + ")"
}
