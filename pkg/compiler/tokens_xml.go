package compiler

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// xmlEscaper escapes exactly the characters the analyzer formats escape.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// writeTerminal writes one token element, `<kind> lexeme </kind>`.
func writeTerminal(w io.Writer, tok Token) {
	tag := tok.Kind.xmlTag()
	fmt.Fprintf(w, "<%s> %s </%s>\n", tag, xmlEscaper.Replace(tok.Lexeme), tag)
}

// WriteTokensXML drains lx and writes the token stream in the
// <tokens> ... </tokens> form, one element per token.
func WriteTokensXML(w io.Writer, lx *Lexer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "<tokens>")
	for lx.HasNext() {
		tok, _ := lx.Next()
		writeTerminal(bw, tok)
	}
	if err := lx.Err(); err != nil {
		return err
	}
	fmt.Fprintln(bw, "</tokens>")
	return bw.Flush()
}
