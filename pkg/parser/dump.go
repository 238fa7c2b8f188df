package parser

import (
	"fmt"
	"reflect"
	"strconv"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/quill-lang/quill/pkg/lexer"
)

var tokenType = reflect.TypeOf(lexer.Token{})

// Dump renders an AST as YAML. Each node becomes a mapping headed by its
// node type; empty fields are omitted and tokens collapse to "line:col".
func Dump(n Node) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{dumpValue(reflect.ValueOf(n))}}
	return yaml.Marshal(doc)
}

func scalar(value, tag string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value, Tag: tag}
}

func dumpValue(v reflect.Value) *yaml.Node {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return scalar("null", "!!null")
		}
		return dumpValue(v.Elem())
	case reflect.Struct:
		if v.Type() == tokenType {
			tok := v.Interface().(lexer.Token)
			return scalar(fmt.Sprintf("%d:%d", tok.Line, tok.Column), "!!str")
		}
		m := &yaml.Node{Kind: yaml.MappingNode}
		m.Content = append(m.Content, scalar("node", "!!str"), scalar(v.Type().Name(), "!!str"))
		for i := range v.NumField() {
			f := v.Type().Field(i)
			fv := v.Field(i)
			if !f.IsExported() || (fv.IsZero() && f.Name != "Kind") {
				continue
			}
			key := lowerFirst(f.Name)
			if f.Name == "Token" {
				key = "pos"
			}
			m.Content = append(m.Content, scalar(key, "!!str"), dumpValue(fv))
		}
		return m
	case reflect.Slice:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for i := range v.Len() {
			seq.Content = append(seq.Content, dumpValue(v.Index(i)))
		}
		return seq
	case reflect.String:
		return scalar(v.String(), "!!str")
	case reflect.Bool:
		return scalar(strconv.FormatBool(v.Bool()), "!!bool")
	case reflect.Int, reflect.Int64:
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return scalar(s.String(), "!!str")
		}
		return scalar(strconv.FormatInt(v.Int(), 10), "!!int")
	case reflect.Float64:
		return scalar(strconv.FormatFloat(v.Float(), 'g', -1, 64), "!!float")
	}
	return scalar(fmt.Sprint(v.Interface()), "!!str")
}

func lowerFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
