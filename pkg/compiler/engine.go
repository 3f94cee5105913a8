package compiler

import (
	"fmt"
	"io"
	"strings"
)

// engine compiles one class in a single pass, pulling tokens from the lexer
// and emitting VM code as each construct is recognised.
//
// Grammar:
//
//	class          = "class" className "{" classVarDec* subroutineDec* "}"
//	classVarDec    = ("static" | "field") type varName ("," varName)* ";"
//	type           = "int" | "char" | "boolean" | className
//	subroutineDec  = ("constructor" | "function" | "method") ("void" | type)
//	                 subroutineName "(" parameterList ")" subroutineBody
//	parameterList  = (type varName ("," type varName)*)?
//	subroutineBody = "{" varDec* statement* "}"
//	varDec         = "var" type varName ("," varName)* ";"
//	statement      = let | if | while | do | return
//	let            = "let" varName ("[" expression "]")? "=" expression ";"
//	if             = "if" "(" expression ")" "{" statement* "}" ("else" "{" statement* "}")?
//	while          = "while" "(" expression ")" "{" statement* "}"
//	do             = "do" subroutineCall ";"
//	return         = "return" expression? ";"
//	expression     = term (op term)*
//	term           = INT | STRING | "true" | "false" | "null" | "this"
//	               | varName | varName "[" expression "]" | subroutineCall
//	               | "(" expression ")" | ("-" | "~") term
//	subroutineCall = subroutineName "(" expressionList ")"
//	               | (className | varName) "." subroutineName "(" expressionList ")"
//	expressionList = (expression ("," expression)*)?
//
// There is no operator precedence: binary operators apply left to right.
//
// Every compileX routine starts with the first token of X as the current
// token and leaves the first token after X current.
//
// With a tree attached the same pass also records the parse tree; with
// syntaxOnly set, name resolution never fails.
type engine struct {
	lx   *Lexer
	tok  Token // current token
	eof  bool  // no current token: input exhausted
	syms *SymbolTable
	vm   *VMWriter

	tree       *treeWriter
	syntaxOnly bool
}

func newEngine(lx *Lexer, out io.Writer) *engine {
	return &engine{lx: lx, syms: NewSymbolTable(), vm: NewVMWriter(out)}
}

// binaryOps are the infix operators, all one character.
const binaryOps = "+-*/&|<>="

// advance consumes the current token and makes the next one current.
func (e *engine) advance() error {
	if !e.eof {
		e.tree.terminal(e.tok)
	}
	return e.load()
}

// load makes the next token current without consuming anything.
func (e *engine) load() error {
	if !e.lx.HasNext() {
		if err := e.lx.Err(); err != nil {
			return err
		}
		e.eof = true
		e.tok = Token{Pos: e.lx.end}
		return nil
	}
	e.tok, _ = e.lx.Next()
	return nil
}

// at reports whether the current token is the keyword or symbol lexeme.
func (e *engine) at(lexeme string) bool {
	return !e.eof && e.tok.Is(lexeme)
}

func (e *engine) unexpected(want string) error {
	if e.eof {
		return newError(SyntaxError, e.tok.Pos, "expected %s, got end of input", want)
	}
	return newError(SyntaxError, e.tok.Pos, "expected %s, got %s %q", want, strings.ToLower(e.tok.Kind.String()), e.tok.Lexeme)
}

// expect consumes the keyword or symbol lexeme.
func (e *engine) expect(lexeme string) error {
	if !e.at(lexeme) {
		return e.unexpected(fmt.Sprintf("%q", lexeme))
	}
	return e.advance()
}

// expectIdentifier consumes an identifier and returns it.
func (e *engine) expectIdentifier(what string) (Token, error) {
	if e.eof || e.tok.Kind != IDENTIFIER {
		return Token{}, e.unexpected(what)
	}
	tok := e.tok
	return tok, e.advance()
}

// expectType consumes a type name; "void" is accepted only if allowVoid.
func (e *engine) expectType(allowVoid bool) (string, error) {
	switch {
	case e.at("int"), e.at("char"), e.at("boolean"), allowVoid && e.at("void"):
	case !e.eof && e.tok.Kind == IDENTIFIER:
	default:
		if allowVoid {
			return "", e.unexpected("return type")
		}
		return "", e.unexpected("type")
	}
	typ := e.tok.Lexeme
	return typ, e.advance()
}

// define declares name and reports redeclaration at the name's position.
func (e *engine) define(name Token, typ string, cat Category) error {
	_, err := e.syms.Define(name.Lexeme, typ, cat)
	if e.syntaxOnly {
		return nil
	}
	if ce, ok := err.(*Error); ok {
		ce.Pos = name.Pos
	}
	return err
}

// resolve looks up a variable reference.
func (e *engine) resolve(name Token) (Symbol, error) {
	sym, ok := e.syms.Lookup(name.Lexeme)
	if !ok && e.syntaxOnly {
		return Symbol{Name: name.Lexeme, Category: Local}, nil
	}
	if !ok {
		return Symbol{}, newError(SemanticError, name.Pos, "undeclared identifier %q", name.Lexeme)
	}
	return sym, nil
}

func (e *engine) push(sym Symbol) {
	e.vm.WritePush(SegmentOf(sym.Category), sym.Slot)
}

// node wraps the tokens consumed by fn in a parse tree element.
func (e *engine) node(tag string, fn func() error) error {
	e.tree.open(tag)
	if err := fn(); err != nil {
		return err
	}
	e.tree.close(tag)
	return nil
}

// compileClass compiles the whole unit and returns the class name.
func (e *engine) compileClass() (string, error) {
	if err := e.load(); err != nil {
		return "", err
	}
	e.tree.open("class")
	if err := e.expect("class"); err != nil {
		return "", err
	}
	name, err := e.expectIdentifier("class name")
	if err != nil {
		return "", err
	}
	ctx := newUnitContext(name.Lexeme)
	if err := e.expect("{"); err != nil {
		return "", err
	}
	for e.at("static") || e.at("field") {
		if err := e.node("classVarDec", e.compileClassVarDec); err != nil {
			return "", err
		}
	}
	for e.at("constructor") || e.at("function") || e.at("method") {
		err := e.node("subroutineDec", func() error { return e.compileSubroutine(ctx) })
		if err != nil {
			return "", err
		}
	}
	if err := e.expect("}"); err != nil {
		return "", err
	}
	e.tree.close("class")
	if !e.eof {
		return "", newError(SyntaxError, e.tok.Pos, "unexpected %q after end of class %s", e.tok.Lexeme, ctx.className)
	}
	return ctx.className, nil
}

func (e *engine) compileClassVarDec() error {
	cat := Static
	if e.at("field") {
		cat = Field
	}
	if err := e.advance(); err != nil {
		return err
	}
	return e.compileVarNames(cat)
}

// compileVarNames handles `type varName ("," varName)* ";"`.
func (e *engine) compileVarNames(cat Category) error {
	typ, err := e.expectType(false)
	if err != nil {
		return err
	}
	for {
		name, err := e.expectIdentifier("variable name")
		if err != nil {
			return err
		}
		if err := e.define(name, typ, cat); err != nil {
			return err
		}
		if !e.at(",") {
			break
		}
		if err := e.advance(); err != nil {
			return err
		}
	}
	return e.expect(";")
}

func (e *engine) compileSubroutine(ctx *unitContext) error {
	kind := subroutineKinds[e.tok.Lexeme]
	if err := e.advance(); err != nil {
		return err
	}
	if _, err := e.expectType(true); err != nil {
		return err
	}
	name, err := e.expectIdentifier("subroutine name")
	if err != nil {
		return err
	}

	e.syms.StartSubroutine()
	ctx.enterSubroutine(kind, name.Lexeme)
	if kind == Method {
		// The receiver arrives as argument 0.
		if _, err := e.syms.Define("this", ctx.className, Parameter); err != nil {
			return err
		}
	}

	if err := e.expect("("); err != nil {
		return err
	}
	if err := e.compileParameterList(); err != nil {
		return err
	}
	if err := e.expect(")"); err != nil {
		return err
	}
	return e.compileSubroutineBody(ctx)
}

func (e *engine) compileParameterList() error {
	e.tree.open("parameterList")
	if err := e.compileParameters(); err != nil {
		return err
	}
	e.tree.close("parameterList")
	return nil
}

func (e *engine) compileParameters() error {
	if e.at(")") {
		return nil
	}
	for {
		typ, err := e.expectType(false)
		if err != nil {
			return err
		}
		name, err := e.expectIdentifier("parameter name")
		if err != nil {
			return err
		}
		if err := e.define(name, typ, Parameter); err != nil {
			return err
		}
		if !e.at(",") {
			return nil
		}
		if err := e.advance(); err != nil {
			return err
		}
	}
}

func (e *engine) compileSubroutineBody(ctx *unitContext) error {
	e.tree.open("subroutineBody")
	if err := e.expect("{"); err != nil {
		return err
	}
	for e.at("var") {
		if err := e.node("varDec", e.compileVarDec); err != nil {
			return err
		}
	}

	e.vm.WriteFunction(ctx.qualify(ctx.subroutine), e.syms.Count(Local))
	switch ctx.kind {
	case Constructor:
		e.vm.WritePush(SegConstant, e.syms.Count(Field))
		e.vm.WriteCall("Memory.alloc", 1)
		e.vm.WritePop(SegPointer, 0)
	case Method:
		e.vm.WritePush(SegArgument, 0)
		e.vm.WritePop(SegPointer, 0)
	case Function:
	}

	if err := e.compileStatements(ctx); err != nil {
		return err
	}
	if err := e.expect("}"); err != nil {
		return err
	}
	e.tree.close("subroutineBody")
	return nil
}

func (e *engine) compileVarDec() error {
	if err := e.advance(); err != nil {
		return err
	}
	return e.compileVarNames(Local)
}

// statementTags maps each statement keyword to its parse tree element.
var statementTags = map[string]string{
	"let":    "letStatement",
	"if":     "ifStatement",
	"while":  "whileStatement",
	"do":     "doStatement",
	"return": "returnStatement",
}

func (e *engine) compileStatements(ctx *unitContext) error {
	e.tree.open("statements")
	for !e.eof && e.tok.Kind == KEYWORD {
		tag, ok := statementTags[e.tok.Lexeme]
		if !ok {
			break
		}
		if err := e.node(tag, func() error { return e.compileStatement(ctx) }); err != nil {
			return err
		}
	}
	e.tree.close("statements")
	return nil
}

func (e *engine) compileStatement(ctx *unitContext) error {
	switch e.tok.Lexeme {
	case "let":
		return e.compileLet(ctx)
	case "if":
		return e.compileIf(ctx)
	case "while":
		return e.compileWhile(ctx)
	case "do":
		return e.compileDo(ctx)
	}
	return e.compileReturn(ctx)
}

func (e *engine) compileLet(ctx *unitContext) error {
	if err := e.advance(); err != nil {
		return err
	}
	name, err := e.expectIdentifier("variable name")
	if err != nil {
		return err
	}
	sym, err := e.resolve(name)
	if err != nil {
		return err
	}

	if !e.at("[") {
		if err := e.expect("="); err != nil {
			return err
		}
		if err := e.compileExpression(ctx); err != nil {
			return err
		}
		if err := e.expect(";"); err != nil {
			return err
		}
		e.vm.WritePop(SegmentOf(sym.Category), sym.Slot)
		return nil
	}

	// Target address first, parked on the stack while the value is
	// computed; the value goes through temp 0 only after both are done.
	if err := e.advance(); err != nil {
		return err
	}
	e.push(sym)
	if err := e.compileExpression(ctx); err != nil {
		return err
	}
	if err := e.expect("]"); err != nil {
		return err
	}
	e.vm.WriteArithmetic(CmdAdd)
	if err := e.expect("="); err != nil {
		return err
	}
	if err := e.compileExpression(ctx); err != nil {
		return err
	}
	if err := e.expect(";"); err != nil {
		return err
	}
	e.vm.WritePop(SegTemp, 0)
	e.vm.WritePop(SegPointer, 1)
	e.vm.WritePush(SegTemp, 0)
	e.vm.WritePop(SegThat, 0)
	return nil
}

// compileCondition handles `"(" expression ")"`.
func (e *engine) compileCondition(ctx *unitContext) error {
	if err := e.expect("("); err != nil {
		return err
	}
	if err := e.compileExpression(ctx); err != nil {
		return err
	}
	return e.expect(")")
}

// compileBlock handles `"{" statement* "}"`.
func (e *engine) compileBlock(ctx *unitContext) error {
	if err := e.expect("{"); err != nil {
		return err
	}
	if err := e.compileStatements(ctx); err != nil {
		return err
	}
	return e.expect("}")
}

func (e *engine) compileIf(ctx *unitContext) error {
	labels := ctx.nextIfLabels()
	if err := e.advance(); err != nil {
		return err
	}
	if err := e.compileCondition(ctx); err != nil {
		return err
	}
	e.vm.WriteIf(labels.True)
	e.vm.WriteGoto(labels.False)
	e.vm.WriteLabel(labels.True)
	if err := e.compileBlock(ctx); err != nil {
		return err
	}

	if !e.at("else") {
		e.vm.WriteLabel(labels.False)
		return nil
	}
	e.vm.WriteGoto(labels.End)
	e.vm.WriteLabel(labels.False)
	if err := e.advance(); err != nil {
		return err
	}
	if err := e.compileBlock(ctx); err != nil {
		return err
	}
	e.vm.WriteLabel(labels.End)
	return nil
}

func (e *engine) compileWhile(ctx *unitContext) error {
	labels := ctx.nextWhileLabels()
	if err := e.advance(); err != nil {
		return err
	}
	e.vm.WriteLabel(labels.Begin)
	if err := e.compileCondition(ctx); err != nil {
		return err
	}
	e.vm.WriteArithmetic(CmdNot)
	e.vm.WriteIf(labels.End)
	if err := e.compileBlock(ctx); err != nil {
		return err
	}
	e.vm.WriteGoto(labels.Begin)
	e.vm.WriteLabel(labels.End)
	return nil
}

func (e *engine) compileDo(ctx *unitContext) error {
	if err := e.advance(); err != nil {
		return err
	}
	name, err := e.expectIdentifier("subroutine call")
	if err != nil {
		return err
	}
	if err := e.compileSubroutineCall(ctx, name); err != nil {
		return err
	}
	e.vm.WritePop(SegTemp, 0)
	return e.expect(";")
}

func (e *engine) compileReturn(ctx *unitContext) error {
	if err := e.advance(); err != nil {
		return err
	}
	if e.at(";") {
		e.vm.WritePush(SegConstant, 0)
	} else if err := e.compileExpression(ctx); err != nil {
		return err
	}
	if err := e.expect(";"); err != nil {
		return err
	}
	e.vm.WriteReturn()
	return nil
}

func (e *engine) atBinaryOp() bool {
	return !e.eof && e.tok.Kind == SYMBOL && strings.Contains(binaryOps, e.tok.Lexeme)
}

func (e *engine) compileExpression(ctx *unitContext) error {
	return e.node("expression", func() error { return e.expression(ctx) })
}

func (e *engine) expression(ctx *unitContext) error {
	if err := e.compileTerm(ctx); err != nil {
		return err
	}
	for e.atBinaryOp() {
		op := e.tok.Lexeme[0]
		if err := e.advance(); err != nil {
			return err
		}
		if err := e.compileTerm(ctx); err != nil {
			return err
		}
		switch op {
		case '*':
			e.vm.WriteCall("Math.multiply", 2)
		case '/':
			e.vm.WriteCall("Math.divide", 2)
		default:
			e.vm.WriteArithmetic(OpCommand(op))
		}
	}
	return nil
}

func (e *engine) compileTerm(ctx *unitContext) error {
	return e.node("term", func() error { return e.term(ctx) })
}

func (e *engine) term(ctx *unitContext) error {
	if e.eof {
		return e.unexpected("expression")
	}
	tok := e.tok
	switch tok.Kind {
	case INT_CONST:
		e.vm.WritePush(SegConstant, tok.Int)
		return e.advance()

	case STRING_CONST:
		e.writeString(tok.Lexeme)
		return e.advance()

	case KEYWORD:
		switch tok.Lexeme {
		case "true":
			e.vm.WritePush(SegConstant, 0)
			e.vm.WriteArithmetic(CmdNot)
		case "false", "null":
			e.vm.WritePush(SegConstant, 0)
		case "this":
			e.vm.WritePush(SegPointer, 0)
		default:
			return e.unexpected("expression")
		}
		return e.advance()

	case SYMBOL:
		switch tok.Lexeme {
		case "(":
			if err := e.advance(); err != nil {
				return err
			}
			if err := e.compileExpression(ctx); err != nil {
				return err
			}
			return e.expect(")")
		case "-", "~":
			if err := e.advance(); err != nil {
				return err
			}
			if err := e.compileTerm(ctx); err != nil {
				return err
			}
			if tok.Lexeme == "-" {
				e.vm.WriteArithmetic(CmdNeg)
			} else {
				e.vm.WriteArithmetic(CmdNot)
			}
			return nil
		}
		return e.unexpected("expression")
	}

	// Identifier: one token of lookahead picks variable, array element or
	// call.
	if err := e.advance(); err != nil {
		return err
	}
	switch {
	case e.at("("), e.at("."):
		return e.compileSubroutineCall(ctx, tok)
	case e.at("["):
		sym, err := e.resolve(tok)
		if err != nil {
			return err
		}
		if err := e.advance(); err != nil {
			return err
		}
		e.push(sym)
		if err := e.compileExpression(ctx); err != nil {
			return err
		}
		if err := e.expect("]"); err != nil {
			return err
		}
		e.vm.WriteArithmetic(CmdAdd)
		e.vm.WritePop(SegPointer, 1)
		e.vm.WritePush(SegThat, 0)
		return nil
	}
	sym, err := e.resolve(tok)
	if err != nil {
		return err
	}
	e.push(sym)
	return nil
}

// compileSubroutineCall finishes a call whose first name has already been
// consumed; the current token is "(" or ".".
func (e *engine) compileSubroutineCall(ctx *unitContext, name Token) error {
	var target string
	nArgs := 0
	switch {
	case e.at("("):
		e.vm.WritePush(SegPointer, 0)
		nArgs = 1
		target = ctx.qualify(name.Lexeme)

	case e.at("."):
		if err := e.advance(); err != nil {
			return err
		}
		sub, err := e.expectIdentifier("subroutine name")
		if err != nil {
			return err
		}
		if sym, ok := e.syms.Lookup(name.Lexeme); ok {
			switch sym.Type {
			case "int", "char", "boolean":
				if e.syntaxOnly {
					break
				}
				return newError(SemanticError, name.Pos, "cannot call %s on %q of primitive type %s", sub.Lexeme, name.Lexeme, sym.Type)
			}
			e.push(sym)
			nArgs = 1
			target = sym.Type + "." + sub.Lexeme
		} else {
			target = name.Lexeme + "." + sub.Lexeme
		}

	default:
		return e.unexpected(`"(" or "."`)
	}

	if err := e.expect("("); err != nil {
		return err
	}
	n, err := e.compileExpressionList(ctx)
	if err != nil {
		return err
	}
	if err := e.expect(")"); err != nil {
		return err
	}
	e.vm.WriteCall(target, nArgs+n)
	return nil
}

// compileExpressionList returns the number of expressions compiled.
func (e *engine) compileExpressionList(ctx *unitContext) (int, error) {
	var n int
	err := e.node("expressionList", func() error {
		var err error
		n, err = e.expressions(ctx)
		return err
	})
	return n, err
}

func (e *engine) expressions(ctx *unitContext) (int, error) {
	if e.at(")") {
		return 0, nil
	}
	n := 0
	for {
		if err := e.compileExpression(ctx); err != nil {
			return n, err
		}
		n++
		if !e.at(",") {
			return n, nil
		}
		if err := e.advance(); err != nil {
			return n, err
		}
	}
}

// writeString builds a String object holding s, character by character.
func (e *engine) writeString(s string) {
	chars := []rune(s)
	e.vm.WritePush(SegConstant, len(chars))
	e.vm.WriteCall("String.new", 1)
	for _, c := range chars {
		e.vm.WritePush(SegConstant, int(c))
		e.vm.WriteCall("String.appendChar", 2)
	}
}
