package compiler

import (
	"bytes"
	"io"
	"strings"
)

// Unit is the result of compiling one source unit.
type Unit struct {
	ClassName string
	Code      string       // VM instructions, one per line
	Symbols   *SymbolTable // class scope plus the last subroutine's scope
}

// CompileUnit compiles one class. On error no code is returned.
func CompileUnit(src io.Reader) (*Unit, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	text := string(data)
	lines := newSourceLines(text)

	lx, err := NewLexer(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	e := newEngine(lx, &out)
	className, err := e.compileClass()
	if err != nil {
		return nil, lines.annotate(err)
	}
	if err := e.vm.Err(); err != nil {
		return nil, err
	}
	return &Unit{ClassName: className, Code: out.String(), Symbols: e.syms}, nil
}

// Compile reads one class from src and writes its VM code to dst. Nothing
// is written to dst unless compilation succeeds.
func Compile(src io.Reader, dst io.Writer) error {
	u, err := CompileUnit(src)
	if err != nil {
		return err
	}
	_, err = io.WriteString(dst, u.Code)
	return err
}

// CompileString is Compile for in-memory source.
func CompileString(src string) (string, error) {
	u, err := CompileUnit(strings.NewReader(src))
	if err != nil {
		return "", err
	}
	return u.Code, nil
}
