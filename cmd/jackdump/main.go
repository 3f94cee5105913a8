package main

import (
	"fmt"
	"os"
	"strings"

	"jackc/pkg/compiler"
)

const sampleSource = `class Main {
	field int x;

	function void main() {
		var int y;
		let y = 10;
		do Output.printInt(y);
		return;
	}
}
`

func main() {
	src := sampleSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse tree
	fmt.Println("Parse tree")
	if err := compiler.WriteParseXML(os.Stdout, strings.NewReader(src)); err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}
	fmt.Println()

	// Compile
	unit, err := compiler.CompileUnit(strings.NewReader(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	fmt.Printf("VM code (class %s)\n", unit.ClassName)
	fmt.Print(unit.Code)
	fmt.Println()
	fmt.Print(unit.Symbols)
}
