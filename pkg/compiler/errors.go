package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a compilation failure.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	SemanticError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	case SemanticError:
		return "semantic error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is.
var (
	ErrLexical  = errors.New("lexical error")
	ErrSyntax   = errors.New("syntax error")
	ErrSemantic = errors.New("semantic error")
)

// Error is a fatal diagnostic for one source unit.
type Error struct {
	Kind    ErrorKind
	Pos     Pos
	Msg     string
	Snippet string // trimmed source line, if known
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Pos.Line > 0 {
		fmt.Fprintf(&sb, "line %d:%d: ", e.Pos.Line, e.Pos.Col)
	}
	fmt.Fprintf(&sb, "%s: %s", e.Kind, e.Msg)
	if e.Snippet != "" {
		fmt.Fprintf(&sb, "\n  |> %s", e.Snippet)
	}
	return sb.String()
}

// Is matches the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrLexical:
		return e.Kind == LexicalError
	case ErrSyntax:
		return e.Kind == SyntaxError
	case ErrSemantic:
		return e.Kind == SemanticError
	}
	return false
}

func newError(kind ErrorKind, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// sourceLines attaches the offending source line to errors produced while
// compiling one unit.
type sourceLines []string

func newSourceLines(src string) sourceLines {
	return strings.Split(src, "\n")
}

// annotate fills in the snippet of err if it is a positioned *Error.
func (s sourceLines) annotate(err error) error {
	var e *Error
	if !errors.As(err, &e) || e.Snippet != "" {
		return err
	}
	idx := e.Pos.Line - 1
	if idx >= 0 && idx < len(s) {
		e.Snippet = strings.TrimSpace(s[idx])
	}
	return err
}
