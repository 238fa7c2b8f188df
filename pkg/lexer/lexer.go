package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/quill-lang/quill/pkg/errors"
)

// Options tunes the scanner.
type Options struct {
	// LenientIndent rebuilds a ladder of 4-column levels when a dedent
	// matches no outer level and only the base level remains, instead of
	// reporting an indentation error.
	LenientIndent bool
	// TabWidth is the column multiple a tab advances to (default 4).
	TabWidth int
}

type lexMode int

const (
	modeNormal   lexMode = iota
	modeTag              // inside <tag ...> or </tag>
	modeChildren         // between an opening and a closing tag
	modeExpr             // inside a {...} container embedded in markup
)

type markupFrame struct {
	mode  lexMode
	depth int // bracket depth outside a modeExpr container
}

// Lexer holds the state of the scanner. A Lexer is used for exactly one
// source text; all of its stacks are local to the instance.
type Lexer struct {
	input        []rune
	position     int  // current position in input (rune offset of ch)
	readPosition int  // current reading position in input (after ch)
	ch           rune // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number

	opts     Options
	indents  []int  // indentation stack, always starts at [0]
	brackets []rune // open brackets; depth is len(brackets)
	modes    []markupFrame

	jsxDepth   int  // open markup elements
	jsxClosing bool // scanning a closing tag

	atLineStart   bool
	lineHasTokens bool
	last          TokenType
	pending       []Token
	done          bool
}

// New creates a Lexer with default options.
func New(input string) *Lexer {
	return NewWithOptions(input, Options{})
}

// NewWithOptions creates a Lexer for input.
func NewWithOptions(input string, opts Options) *Lexer {
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	l := &Lexer{
		input:       []rune(input),
		line:        1,
		opts:        opts,
		indents:     []int{0},
		atLineStart: true,
	}
	l.readChar()
	return l
}

// Tokenize scans src into a token slice ending with EOF.
func Tokenize(src string) ([]Token, error) {
	return TokenizeWithOptions(src, Options{})
}

// TokenizeWithOptions is Tokenize with explicit options.
func TokenizeWithOptions(src string, opts Options) ([]Token, error) {
	l := NewWithOptions(src, opts)
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

// IndentDepth returns the number of indentation levels above the base level.
func (l *Lexer) IndentDepth() int { return len(l.indents) - 1 }

// BracketDepth returns the current bracket nesting depth.
func (l *Lexer) BracketDepth() int { return len(l.brackets) }

// NextToken returns the next token, or a *errors.LexError. After EOF it keeps
// returning EOF.
func (l *Lexer) NextToken() (Token, error) {
	for len(l.pending) == 0 {
		if l.done {
			return l.token(EOF, "", l.line, l.column, l.position), nil
		}
		if err := l.scan(); err != nil {
			return Token{}, err
		}
	}
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok, nil
}

// readChar gives us the next character and advances our position in the input.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() rune { return l.peekAt(1) }

func (l *Lexer) peekAt(n int) rune {
	if l.position+n >= len(l.input) {
		return 0
	}
	return l.input[l.position+n]
}

func (l *Lexer) atEOF() bool { return l.position >= len(l.input) }

func (l *Lexer) hasPrefix(s string) bool {
	i := l.position
	for _, r := range s {
		if i >= len(l.input) || l.input[i] != r {
			return false
		}
		i++
	}
	return true
}

func (l *Lexer) token(tt TokenType, lit string, line, col, start int) Token {
	return Token{Type: tt, Literal: lit, Line: line, Column: col, StartPos: start, EndPos: l.position}
}

func (l *Lexer) emit(tok Token) {
	l.pending = append(l.pending, tok)
	l.last = tok.Type
	switch tok.Type {
	case NEWLINE:
		l.lineHasTokens = false
	case INDENT, DEDENT, EOF:
	default:
		l.lineHasTokens = true
	}
}

func (l *Lexer) errorAt(line, col, start int, format string, args ...any) error {
	return &errors.LexError{
		Position: errors.Position{Line: line, Column: col, StartPos: start, EndPos: l.position},
		Msg:      fmt.Sprintf(format, args...),
	}
}

func (l *Lexer) mode() lexMode {
	if len(l.modes) == 0 {
		return modeNormal
	}
	if m := l.modes[len(l.modes)-1].mode; m != modeExpr {
		return m
	}
	return modeNormal
}

func (l *Lexer) pushMode(m lexMode) {
	l.modes = append(l.modes, markupFrame{mode: m, depth: len(l.brackets)})
}

func (l *Lexer) popMode() {
	if len(l.modes) > 0 {
		l.modes = l.modes[:len(l.modes)-1]
	}
}

// scan queues zero or more tokens.
func (l *Lexer) scan() error {
	switch l.mode() {
	case modeTag:
		return l.scanTag()
	case modeChildren:
		return l.scanChildren()
	}

	if l.atLineStart {
		l.atLineStart = false
		if len(l.brackets) == 0 && len(l.modes) == 0 {
			if err := l.indentation(); err != nil {
				return err
			}
			if len(l.pending) > 0 {
				return nil
			}
		}
	}

	l.skipWhitespace()
	switch {
	case l.atEOF():
		return l.finish()
	case l.ch == '\n':
		l.newline()
		return nil
	}
	return l.scanToken()
}

// indentation measures the leading whitespace of the next non-blank line
// and queues INDENT/DEDENT markers.
func (l *Lexer) indentation() error {
	var col int
	for {
		col = 0
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\f' {
			switch l.ch {
			case '\t':
				col = (col/l.opts.TabWidth + 1) * l.opts.TabWidth
			case ' ':
				col++
			}
			l.readChar()
		}
		switch {
		case l.atEOF():
			return nil
		case l.ch == '\n':
			l.readChar()
			continue
		case l.ch == '#':
			l.skipComment()
			continue
		}
		break
	}

	line, column, start := l.line, l.column, l.position
	top := l.indents[len(l.indents)-1]
	switch {
	case col > top:
		l.indents = append(l.indents, col)
		l.emit(l.token(INDENT, "", line, column, start))
	case col < top:
		for len(l.indents) > 1 && col < l.indents[len(l.indents)-1] {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(l.token(DEDENT, "", line, column, start))
		}
		if col != l.indents[len(l.indents)-1] {
			if !l.opts.LenientIndent || len(l.indents) != 1 || col%4 != 0 {
				return l.errorAt(line, column, start, "unindent does not match any outer indentation level")
			}
			for lvl := 4; lvl <= col; lvl += 4 {
				l.indents = append(l.indents, lvl)
				l.emit(l.token(INDENT, "", line, column, start))
			}
		}
	}
	return nil
}

func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\f':
			l.readChar()
		case l.ch == '#':
			l.skipComment()
		case l.ch == '\\' && (l.peekChar() == '\n' || (l.peekChar() == '\r' && l.peekAt(2) == '\n')):
			l.readChar()
			if l.ch == '\r' {
				l.readChar()
			}
			l.readChar()
		default:
			return
		}
	}
}

func (l *Lexer) skipComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
}

// newline consumes '\n' and emits a line break where statements can end:
// at top level or directly inside braces, never inside (...) or [...].
func (l *Lexer) newline() {
	line, col, start := l.line, l.column, l.position
	l.readChar()
	l.atLineStart = true
	if len(l.modes) > 0 {
		return
	}
	if n := len(l.brackets); n > 0 && l.brackets[n-1] != '{' {
		return
	}
	if l.lineHasTokens && l.last != NEWLINE {
		l.emit(Token{Type: NEWLINE, Literal: "\n", Line: line, Column: col, StartPos: start, EndPos: start + 1})
	}
}

func (l *Lexer) finish() error {
	if len(l.modes) > 0 {
		return l.errorAt(l.line, l.column, l.position, "unterminated markup element")
	}
	if l.lineHasTokens && l.last != NEWLINE {
		l.emit(l.token(NEWLINE, "", l.line, l.column, l.position))
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(l.token(DEDENT, "", l.line, l.column, l.position))
	}
	l.emit(l.token(EOF, "", l.line, l.column, l.position))
	l.done = true
	return nil
}

func (l *Lexer) scanToken() error {
	line, col, start := l.line, l.column, l.position
	ch := l.ch

	switch {
	case isLetter(ch):
		if q := l.peekChar(); q == '"' || q == '\'' {
			switch ch {
			case 'f', 'F':
				l.readChar()
				return l.scanString(FSTRING, true, line, col, start)
			case 'r', 'R':
				l.readChar()
				return l.scanString(STRING, true, line, col, start)
			}
		}
		l.scanIdent()
		return nil
	case isDigit(ch):
		l.scanNumber()
		return nil
	case ch == '"' || ch == '\'':
		return l.scanString(STRING, false, line, col, start)
	case ch == '<' && isLetter(l.peekChar()) && !endsOperand(l.last):
		l.openTag()
		return nil
	}

	for _, op := range operators {
		if !l.hasPrefix(string(op)) {
			continue
		}
		for range string(op) {
			l.readChar()
		}
		l.emit(l.token(op, string(op), line, col, start))
		l.trackBracket(op)
		return nil
	}
	l.readChar()
	return l.errorAt(line, col, start, "unexpected character %q", ch)
}

// trackBracket maintains the bracket stack. Stray closers saturate at zero.
func (l *Lexer) trackBracket(op TokenType) {
	switch op {
	case LPAREN:
		l.brackets = append(l.brackets, '(')
	case LBRACKET:
		l.brackets = append(l.brackets, '[')
	case LBRACE:
		l.brackets = append(l.brackets, '{')
	case RPAREN, RBRACKET, RBRACE:
		if len(l.brackets) > 0 {
			l.brackets = l.brackets[:len(l.brackets)-1]
		}
		if op == RBRACE && len(l.modes) > 0 {
			top := l.modes[len(l.modes)-1]
			if top.mode == modeExpr && top.depth == len(l.brackets) {
				l.popMode()
			}
		}
	}
}

func (l *Lexer) scanIdent() {
	line, col, start := l.line, l.column, l.position
	for isLetter(l.ch) || isDigit(l.ch) || unicode.IsDigit(l.ch) || unicode.Is(unicode.Mn, l.ch) || unicode.Is(unicode.Mc, l.ch) {
		l.readChar()
	}
	ident := norm.NFC.String(string(l.input[start:l.position]))
	l.emit(l.token(LookupIdent(ident), ident, line, col, start))
}

func (l *Lexer) scanNumber() {
	line, col, start := l.line, l.column, l.position
	tt := INT

	if l.ch == '0' && strings.ContainsRune("xXoObB", l.peekChar()) {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		l.emit(l.token(tt, string(l.input[start:l.position]), line, col, start))
		return
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		tt = FLOAT
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			tt = FLOAT
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	l.emit(l.token(tt, string(l.input[start:l.position]), line, col, start))
}

// scanString reads a quoted string starting at the opening quote. Raw strings
// (f-strings and r-strings) keep backslash sequences untouched.
func (l *Lexer) scanString(tt TokenType, raw bool, line, col, start int) error {
	quote := l.ch
	var sb strings.Builder

	if l.peekChar() == quote && l.peekAt(2) == quote {
		l.readChar()
		l.readChar()
		l.readChar()
		for {
			if l.atEOF() {
				return l.errorAt(line, col, start, "unterminated triple-quoted string")
			}
			if l.ch == quote && l.peekChar() == quote && l.peekAt(2) == quote {
				l.readChar()
				l.readChar()
				l.readChar()
				break
			}
			sb.WriteRune(l.ch)
			l.readChar()
		}
		l.emit(l.token(tt, sb.String(), line, col, start))
		return nil
	}

	l.readChar()
	for {
		if l.atEOF() || l.ch == '\n' {
			return l.errorAt(line, col, start, "unterminated string")
		}
		if l.ch == quote {
			l.readChar()
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				return l.errorAt(line, col, start, "unterminated string")
			}
			if raw {
				sb.WriteRune('\\')
				sb.WriteRune(l.ch)
			} else if l.ch != '\n' {
				sb.WriteString(unescapeRune(l.ch))
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.emit(l.token(tt, sb.String(), line, col, start))
	return nil
}

func unescapeRune(ch rune) string {
	switch ch {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '0':
		return "\x00"
	case '\\', '"', '\'':
		return string(ch)
	}
	return "\\" + string(ch)
}

// Unescape processes backslash escapes in s the way quoted strings are
// processed. It is used for the text parts of raw f-string bodies.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' || i+1 == len(rs) {
			sb.WriteRune(rs[i])
			continue
		}
		i++
		if rs[i] == '\n' {
			continue
		}
		sb.WriteString(unescapeRune(rs[i]))
	}
	return sb.String()
}

// --- Markup ---

// openTag consumes '<' (and '/' for a closing tag) and enters tag mode.
func (l *Lexer) openTag() {
	line, col, start := l.line, l.column, l.position
	l.readChar()
	l.emit(l.token(LT, "<", line, col, start))
	if l.ch == '/' {
		line, col, start = l.line, l.column, l.position
		l.readChar()
		l.emit(l.token(SLASH, "/", line, col, start))
		l.jsxClosing = true
	} else {
		l.jsxDepth++
	}
	l.pushMode(modeTag)
}

func (l *Lexer) scanTag() error {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
	line, col, start := l.line, l.column, l.position

	switch {
	case l.atEOF():
		return l.errorAt(line, col, start, "unterminated markup element")
	case l.ch == '/' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		l.emit(l.token(SELF_CLOSE, "/>", line, col, start))
		l.popMode()
		l.jsxDepth--
	case l.ch == '>':
		l.readChar()
		l.emit(l.token(GT, ">", line, col, start))
		l.popMode()
		if !l.jsxClosing {
			l.pushMode(modeChildren)
			return nil
		}
		l.jsxClosing = false
		l.jsxDepth--
		if len(l.modes) == 0 || l.modes[len(l.modes)-1].mode != modeChildren {
			return l.errorAt(line, col, start, "unexpected closing tag")
		}
		l.popMode()
	case l.ch == '=':
		l.readChar()
		l.emit(l.token(ASSIGN, "=", line, col, start))
	case l.ch == '"' || l.ch == '\'':
		return l.scanString(STRING, false, line, col, start)
	case l.ch == '{':
		l.readChar()
		l.emit(l.token(LBRACE, "{", line, col, start))
		l.pushMode(modeExpr)
		l.brackets = append(l.brackets, '{')
	case isLetter(l.ch):
		for isLetter(l.ch) || isDigit(l.ch) || l.ch == '-' || l.ch == '.' || l.ch == ':' {
			l.readChar()
		}
		l.emit(l.token(IDENT, string(l.input[start:l.position]), line, col, start))
	default:
		ch := l.ch
		l.readChar()
		return l.errorAt(line, col, start, "unexpected character %q in markup tag", ch)
	}
	return nil
}

func (l *Lexer) scanChildren() error {
	line, col, start := l.line, l.column, l.position
	switch {
	case l.atEOF():
		return l.errorAt(line, col, start, "unterminated markup element")
	case l.ch == '<':
		l.openTag()
		return nil
	case l.ch == '{':
		l.readChar()
		l.emit(l.token(LBRACE, "{", line, col, start))
		l.pushMode(modeExpr)
		l.brackets = append(l.brackets, '{')
		return nil
	}

	var sb strings.Builder
	for !l.atEOF() && l.ch != '<' && l.ch != '{' {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if text := normalizeMarkupText(sb.String()); text != "" {
		l.emit(l.token(JSX_TEXT, text, line, col, start))
	}
	return nil
}

// normalizeMarkupText drops whitespace-only runs that contain a line break
// and trims the lines of multi-line text, joining them with single spaces.
func normalizeMarkupText(s string) string {
	if !strings.ContainsRune(s, '\n') {
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return s
	}
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func isLetter(ch rune) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
