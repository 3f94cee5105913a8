package compiler

import (
	"bytes"
	"io"
	"strings"
)

// treeWriter renders the parse tree as indented XML while the engine runs:
// nonterminals as open/close element pairs, consumed tokens as terminal
// elements. A nil treeWriter writes nothing.
type treeWriter struct {
	buf   bytes.Buffer
	depth int
}

func (t *treeWriter) indent() {
	t.buf.WriteString(strings.Repeat("  ", t.depth))
}

func (t *treeWriter) open(tag string) {
	if t == nil {
		return
	}
	t.indent()
	t.buf.WriteString("<" + tag + ">\n")
	t.depth++
}

func (t *treeWriter) close(tag string) {
	if t == nil {
		return
	}
	t.depth--
	t.indent()
	t.buf.WriteString("</" + tag + ">\n")
}

func (t *treeWriter) terminal(tok Token) {
	if t == nil {
		return
	}
	t.indent()
	writeTerminal(&t.buf, tok)
}

// WriteParseXML parses one class from src and writes its parse tree to w,
// starting at <class>. Only the grammar is checked: undeclared and
// redeclared names are accepted. Nothing is written on error.
func WriteParseXML(w io.Writer, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	text := string(data)

	lx, err := NewLexer(strings.NewReader(text))
	if err != nil {
		return err
	}
	e := newEngine(lx, io.Discard)
	e.tree = &treeWriter{}
	e.syntaxOnly = true
	if _, err := e.compileClass(); err != nil {
		return newSourceLines(text).annotate(err)
	}
	_, err = e.tree.buf.WriteTo(w)
	return err
}
