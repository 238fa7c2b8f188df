package parser

import (
	"strings"

	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/lexer"
)

// parseFStringLiteral splits an FSTRING body into text and replacement
// fields. Each field's expression is tokenized and parsed on its own.
func (p *Parser) parseFStringLiteral() Expression {
	lit := &FStringLiteral{Token: p.curToken}
	body := []rune(p.curToken.Literal)
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			lit.Parts = append(lit.Parts, &FStringText{Value: lexer.Unescape(text.String())})
			text.Reset()
		}
	}

	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '{' && i+1 < len(body) && body[i+1] == '{':
			text.WriteRune('{')
			i++
		case ch == '}' && i+1 < len(body) && body[i+1] == '}':
			text.WriteRune('}')
			i++
		case ch == '}':
			p.fstringError(i, "single '}' is not allowed in an f-string")
		case ch == '{':
			field := scanReplacementField(body, i+1)
			if field.end < 0 {
				p.fstringError(i, "unterminated replacement field in f-string")
			}
			flush()
			lit.Parts = append(lit.Parts, p.parseReplacementField(field, i+1))
			i = field.end
		default:
			text.WriteRune(ch)
		}
	}
	flush()
	return lit
}

type replacementField struct {
	expr       string
	conversion string
	spec       string
	end        int // index of the closing '}', -1 when unterminated
}

// scanReplacementField reads `expr[!conv][:spec]}` starting after '{'.
// Brackets and quotes inside the expression are skipped over, so
// f"{d['k']}" and f"{f(a, b)}" work.
func scanReplacementField(body []rune, start int) replacementField {
	depth := 0
	var quote rune
	exprEnd := -1
	convStart, specStart := -1, -1

	for i := start; i < len(body); i++ {
		ch := body[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			if specStart < 0 {
				quote = ch
			}
		case '(', '[', '{':
			if specStart < 0 {
				depth++
			}
		case ')', ']':
			if specStart < 0 {
				depth--
			}
		case '!':
			if depth == 0 && specStart < 0 && convStart < 0 && i+1 < len(body) && body[i+1] != '=' {
				exprEnd = i
				convStart = i + 1
			}
		case ':':
			if depth == 0 && specStart < 0 && (i+1 >= len(body) || body[i+1] != '=') {
				if exprEnd < 0 {
					exprEnd = i
				}
				specStart = i + 1
			}
		case '}':
			if depth > 0 && specStart < 0 {
				depth--
				continue
			}
			if exprEnd < 0 {
				exprEnd = i
			}
			field := replacementField{expr: string(body[start:exprEnd]), end: i}
			if convStart >= 0 {
				convEnd := i
				if specStart >= 0 {
					convEnd = specStart - 1
				}
				field.conversion = string(body[convStart:convEnd])
			}
			if specStart >= 0 {
				field.spec = string(body[specStart:i])
			}
			return field
		}
	}
	return replacementField{end: -1}
}

func (p *Parser) parseReplacementField(field replacementField, offset int) FStringPart {
	src := strings.TrimSpace(field.expr)
	if src == "" {
		p.fstringError(offset, "empty expression in f-string")
	}
	switch field.conversion {
	case "", "r", "s", "a":
	default:
		p.fstringError(offset, "invalid f-string conversion '!"+field.conversion+"'")
	}

	expr := p.parseEmbeddedExpression(src, offset)
	if field.spec != "" {
		return &FStringFormatted{Expression: expr, Spec: field.spec}
	}
	return &FStringExpr{Expression: expr, Conversion: field.conversion}
}

// parseEmbeddedExpression parses an f-string field. Token positions are
// shifted so errors point into the enclosing string.
func (p *Parser) parseEmbeddedExpression(src string, offset int) Expression {
	host := p.curToken
	toks, err := lexer.Tokenize(src)
	if err != nil {
		if lexErr, ok := err.(*errors.LexError); ok {
			p.fstringError(offset+lexErr.Column-1, lexErr.Msg)
		}
		p.fstringError(offset, err.Error())
	}
	for i := range toks {
		if toks[i].Line == 1 {
			toks[i].Column += host.Column + 1 + offset
		}
		toks[i].Line += host.Line - 1
		toks[i].StartPos += host.StartPos + 2 + offset
		toks[i].EndPos += host.StartPos + 2 + offset
	}

	sub := New(toks).WithSource(p.source)
	expr, err := sub.parseStandaloneExpression()
	if err != nil {
		p.err = sub.err
		panic(bailout{})
	}
	return expr
}

// fstringError aborts with a position inside the current f-string body.
func (p *Parser) fstringError(offset int, msg string) {
	tok := p.curToken
	pos := p.position(tok)
	pos.Column += 2 + offset
	pos.StartPos += 2 + offset
	pos.EndPos = pos.StartPos + 1
	p.err = &errors.SyntaxError{Position: pos, Found: "f-string", Msg: msg}
	panic(bailout{})
}
