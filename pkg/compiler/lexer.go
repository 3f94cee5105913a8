package compiler

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// jackLexer declares the regular part of the token grammar. Rules are tried
// in order, so comments win over the '/' symbol, the Open* rules only
// match what their closed forms could not, and Invalid takes any one
// character nothing else accepts.
var jackLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "LineComment", Pattern: `//[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?s:.)*?\*/`},
	{Name: "OpenComment", Pattern: `/\*`},
	{Name: "String", Pattern: `"[^"\n]*"`},
	{Name: "OpenString", Pattern: `"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Word", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Symbol", Pattern: `[{}()\[\].,;+\-*/&|<>=~]`},
	{Name: "Invalid", Pattern: `.`},
})

var (
	ruleWhitespace   = jackLexer.Symbols()["Whitespace"]
	ruleLineComment  = jackLexer.Symbols()["LineComment"]
	ruleBlockComment = jackLexer.Symbols()["BlockComment"]
	ruleOpenComment  = jackLexer.Symbols()["OpenComment"]
	ruleString       = jackLexer.Symbols()["String"]
	ruleOpenString   = jackLexer.Symbols()["OpenString"]
	ruleInt          = jackLexer.Symbols()["Int"]
	ruleWord         = jackLexer.Symbols()["Word"]
	ruleSymbol       = jackLexer.Symbols()["Symbol"]
	ruleInvalid      = jackLexer.Symbols()["Invalid"]
)

// Lexer turns Jack source into classified tokens, one at a time.
// Whitespace and comments are consumed by HasNext.
type Lexer struct {
	src  lexer.Lexer
	next *Token // scanned but not yet returned
	err  error  // first lexical error; sticky
	done bool
	end  Pos // position of end of input, once seen
}

// NewLexer prepares a lexer over r.
func NewLexer(r io.Reader) (*Lexer, error) {
	src, err := jackLexer.Lex("", r)
	if err != nil {
		return nil, err
	}
	return &Lexer{src: src}, nil
}

// HasNext reports whether another token is available. It returns false at
// end of input and on a lexical error; Err tells the two apart.
func (l *Lexer) HasNext() bool {
	if l.next != nil {
		return true
	}
	if l.done || l.err != nil {
		return false
	}
	for {
		raw, err := l.src.Next()
		if err != nil {
			l.err = wrapLexerError(err, l.end)
			return false
		}
		pos := Pos{Line: raw.Pos.Line, Col: raw.Pos.Column}
		if raw.EOF() {
			l.done = true
			l.end = pos
			return false
		}
		l.end = pos

		switch raw.Type {
		case ruleWhitespace, ruleLineComment, ruleBlockComment:
			continue
		case ruleOpenComment:
			l.err = newError(LexicalError, pos, "unterminated block comment")
			return false
		case ruleOpenString:
			l.err = newError(LexicalError, pos, "unterminated string constant")
			return false
		case ruleString:
			body := strings.TrimSuffix(strings.TrimPrefix(raw.Value, `"`), `"`)
			if i, c, ok := outsideCharset(body); !ok {
				l.err = newError(LexicalError, Pos{Line: pos.Line, Col: pos.Col + 1 + i}, "character %q is not in the Jack character set", c)
				return false
			}
			l.next = &Token{Kind: STRING_CONST, Lexeme: body, Pos: pos}
		case ruleInt:
			n, err := strconv.Atoi(raw.Value)
			if err != nil || n > maxIntConst {
				l.err = newError(LexicalError, pos, "integer constant %s out of range 0..%d", raw.Value, maxIntConst)
				return false
			}
			l.next = &Token{Kind: INT_CONST, Lexeme: raw.Value, Int: n, Pos: pos}
		case ruleWord:
			kind := IDENTIFIER
			if keywords[raw.Value] {
				kind = KEYWORD
			}
			l.next = &Token{Kind: kind, Lexeme: raw.Value, Pos: pos}
		case ruleSymbol:
			l.next = &Token{Kind: SYMBOL, Lexeme: raw.Value, Pos: pos}
		case ruleInvalid:
			l.err = newError(LexicalError, pos, "unexpected character %q", raw.Value)
			return false
		default:
			l.err = newError(LexicalError, pos, "unexpected input %q", raw.Value)
			return false
		}
		return true
	}
}

// Next returns the next token. Calling Next with no token available is an
// error.
func (l *Lexer) Next() (Token, error) {
	tok, err := l.Peek()
	if err != nil {
		return Token{}, err
	}
	l.next = nil
	return tok, nil
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if !l.HasNext() {
		if l.err != nil {
			return Token{}, l.err
		}
		return Token{}, newError(LexicalError, l.end, "unexpected end of input")
	}
	return *l.next, nil
}

// Err returns the lexical error that stopped the lexer, if any.
func (l *Lexer) Err() error {
	return l.err
}

// wrapLexerError converts a participle lexing failure into a LexicalError.
// The position goes into the Error, not the message.
func wrapLexerError(err error, fallback Pos) error {
	pos, msg := fallback, err.Error()
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		pos = Pos{Line: lerr.Pos.Line, Col: lerr.Pos.Column}
		msg = lerr.Msg
	}
	return newError(LexicalError, pos, "%s", msg)
}

// outsideCharset finds the first character of s that a string constant
// cannot hold: anything but printable ASCII. It returns its byte offset.
func outsideCharset(s string) (int, rune, bool) {
	for i, c := range s {
		if c < ' ' || c > '~' {
			return i, c, false
		}
	}
	return 0, 0, true
}

// Lex tokenises src and returns every token. It stops at the first
// lexical error.
func Lex(src string) ([]Token, error) {
	l, err := NewLexer(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	var tokens []Token
	for l.HasNext() {
		tok, _ := l.Next()
		tokens = append(tokens, tok)
	}
	if err := l.Err(); err != nil {
		return tokens, newSourceLines(src).annotate(err)
	}
	return tokens, nil
}
