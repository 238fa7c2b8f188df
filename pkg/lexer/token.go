package lexer

import "fmt"

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // Token text; for STRING the unescaped value, for FSTRING the raw body
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number (rune index) where the token starts
	StartPos int    // 0-based rune offset where the token starts
	EndPos   int    // 0-based rune offset after the token ends
}

func (t Token) String() string {
	switch t.Type {
	case NEWLINE, INDENT, DEDENT, EOF:
		return string(t.Type)
	}
	return fmt.Sprintf("%s %q", t.Type, t.Literal)
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Structural markers synthesized from whitespace
	INDENT  TokenType = "INDENT"  // block open
	DEDENT  TokenType = "DEDENT"  // block close
	NEWLINE TokenType = "NEWLINE" // logical line break

	// Identifiers + Literals
	IDENT    TokenType = "IDENT"
	INT      TokenType = "INT"      // 42, 0xff, 1_000
	FLOAT    TokenType = "FLOAT"    // 3.14, 1e9
	STRING   TokenType = "STRING"   // "hello", '''raw'''
	FSTRING  TokenType = "FSTRING"  // f"Value: {n:.2f}"
	JSX_TEXT TokenType = "JSX_TEXT" // text between markup tags

	// Operators
	ASSIGN           TokenType = "="
	WALRUS           TokenType = ":="
	PLUS             TokenType = "+"
	MINUS            TokenType = "-"
	ASTERISK         TokenType = "*"
	POWER            TokenType = "**"
	SLASH            TokenType = "/"
	FLOOR_DIV        TokenType = "//"
	PERCENT          TokenType = "%"
	BANG             TokenType = "!"
	LT               TokenType = "<"
	GT               TokenType = ">"
	LE               TokenType = "<="
	GE               TokenType = ">="
	EQ               TokenType = "=="
	NOT_EQ           TokenType = "!="
	PLUS_ASSIGN      TokenType = "+="
	MINUS_ASSIGN     TokenType = "-="
	ASTERISK_ASSIGN  TokenType = "*="
	SLASH_ASSIGN     TokenType = "/="
	FLOOR_DIV_ASSIGN TokenType = "//="
	PERCENT_ASSIGN   TokenType = "%="
	POWER_ASSIGN     TokenType = "**="
	ARROW            TokenType = "=>"
	RARROW           TokenType = "->"
	LOGICAL_AND      TokenType = "&&"
	LOGICAL_OR       TokenType = "||"
	QUESTION         TokenType = "?"
	OPTIONAL_CHAIN   TokenType = "?."
	DOT              TokenType = "."
	SPREAD           TokenType = "..."
	PIPE             TokenType = "|"
	AMPERSAND        TokenType = "&"
	AT               TokenType = "@"
	SELF_CLOSE       TokenType = "/>"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	DEF      TokenType = "DEF"
	ASYNC    TokenType = "ASYNC"
	AWAIT    TokenType = "AWAIT"
	RETURN   TokenType = "RETURN"
	IF       TokenType = "IF"
	ELIF     TokenType = "ELIF"
	ELSE     TokenType = "ELSE"
	WHILE    TokenType = "WHILE"
	FOR      TokenType = "FOR"
	IN       TokenType = "IN"
	IS       TokenType = "IS"
	NOT      TokenType = "NOT"
	AND      TokenType = "AND"
	OR       TokenType = "OR"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	PASS     TokenType = "PASS"
	CLASS    TokenType = "CLASS"
	TRY      TokenType = "TRY"
	EXCEPT   TokenType = "EXCEPT"
	FINALLY  TokenType = "FINALLY"
	RAISE    TokenType = "RAISE"
	WITH     TokenType = "WITH"
	AS       TokenType = "AS"
	IMPORT   TokenType = "IMPORT"
	FROM     TokenType = "FROM"
	EXPORT   TokenType = "EXPORT"
	LET      TokenType = "LET"
	CONST    TokenType = "CONST"
	LAMBDA   TokenType = "LAMBDA"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
	NONE     TokenType = "NONE"
	YIELD    TokenType = "YIELD"
	GLOBAL   TokenType = "GLOBAL"
	NONLOCAL TokenType = "NONLOCAL"
	ASSERT   TokenType = "ASSERT"
	DEL      TokenType = "DEL"
	NEW      TokenType = "NEW"
)

// match, case, default and of are soft keywords: they lex as IDENT and the
// parser recognizes them by position.
var keywords = map[string]TokenType{
	"def":      DEF,
	"async":    ASYNC,
	"await":    AWAIT,
	"return":   RETURN,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"is":       IS,
	"not":      NOT,
	"and":      AND,
	"or":       OR,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
	"class":    CLASS,
	"try":      TRY,
	"except":   EXCEPT,
	"finally":  FINALLY,
	"raise":    RAISE,
	"with":     WITH,
	"as":       AS,
	"import":   IMPORT,
	"from":     FROM,
	"export":   EXPORT,
	"let":      LET,
	"const":    CONST,
	"lambda":   LAMBDA,
	"True":     TRUE,
	"False":    FALSE,
	"None":     NONE,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NONE,
	"yield":    YIELD,
	"global":   GLOBAL,
	"nonlocal": NONLOCAL,
	"assert":   ASSERT,
	"del":      DEL,
	"new":      NEW,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// IsKeyword reports whether t is a reserved word token.
func IsKeyword(t TokenType) bool {
	for _, kw := range keywords {
		if kw == t {
			return true
		}
	}
	return false
}

// operators is ordered longest first so the scanner takes the longest match.
var operators = []TokenType{
	POWER_ASSIGN, FLOOR_DIV_ASSIGN, SPREAD,
	POWER, FLOOR_DIV, EQ, NOT_EQ, LE, GE,
	PLUS_ASSIGN, MINUS_ASSIGN, ASTERISK_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN,
	ARROW, RARROW, LOGICAL_AND, LOGICAL_OR, WALRUS, OPTIONAL_CHAIN,
	ASSIGN, PLUS, MINUS, ASTERISK, SLASH, PERCENT, BANG, LT, GT,
	QUESTION, DOT, PIPE, AMPERSAND, AT,
	COMMA, SEMICOLON, COLON, LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
}

// endsOperand reports whether a token of type t can be the last token of an
// operand, in which case a following '<' is a comparison rather than markup.
func endsOperand(t TokenType) bool {
	switch t {
	case IDENT, INT, FLOAT, STRING, FSTRING, RPAREN, RBRACKET, RBRACE, TRUE, FALSE, NONE:
		return true
	}
	return false
}
