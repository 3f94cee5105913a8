package compiler

import "fmt"

// TokenKind identifies the category of a lexed token.
type TokenKind int

const (
	KEYWORD    TokenKind = iota // class, let, while, ...
	SYMBOL                      // one of { } ( ) [ ] . , ; + - * / & | < > = ~
	IDENTIFIER                  // variable / class / subroutine name
	INT_CONST                   // decimal integer literal, 0..32767
	STRING_CONST                // string literal "..." without the quotes
)

// kindNames is indexed by TokenKind.
var kindNames = [...]string{
	KEYWORD:      "KEYWORD",
	SYMBOL:       "SYMBOL",
	IDENTIFIER:   "IDENTIFIER",
	INT_CONST:    "INT_CONST",
	STRING_CONST: "STRING_CONST",
}

func (k TokenKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// xmlTag is the element name used for the kind in a token dump.
func (k TokenKind) xmlTag() string {
	switch k {
	case KEYWORD:
		return "keyword"
	case SYMBOL:
		return "symbol"
	case IDENTIFIER:
		return "identifier"
	case INT_CONST:
		return "integerConstant"
	case STRING_CONST:
		return "stringConstant"
	}
	panic(fmt.Sprintf("compiler: no xml tag for %v", k))
}

// keywords is the fixed reserved-word set.
var keywords = map[string]bool{
	"class":       true,
	"constructor": true,
	"function":    true,
	"method":      true,
	"field":       true,
	"static":      true,
	"var":         true,
	"int":         true,
	"char":        true,
	"boolean":     true,
	"void":        true,
	"true":        true,
	"false":       true,
	"null":        true,
	"this":        true,
	"let":         true,
	"do":          true,
	"if":          true,
	"else":        true,
	"while":       true,
	"return":      true,
}

// maxIntConst is the largest integer literal the 16-bit target can hold.
const maxIntConst = 32767

// Pos is a 1-based line/column location in a source unit.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Kind   TokenKind
	Lexeme string // kind-specific payload; string bodies have no quotes
	Int    int    // value of an INT_CONST, zero otherwise
	Pos    Pos
}

// Is reports whether t is the keyword or symbol lexeme.
func (t Token) Is(lexeme string) bool {
	return (t.Kind == KEYWORD || t.Kind == SYMBOL) && t.Lexeme == lexeme
}

func (t Token) String() string {
	return fmt.Sprintf("%-12s %-14q  line %d", t.Kind, t.Lexeme, t.Pos.Line)
}
