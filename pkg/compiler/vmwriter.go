package compiler

import (
	"fmt"
	"io"
)

// Segment is a VM memory segment.
type Segment int

const (
	SegConstant Segment = iota
	SegArgument
	SegLocal
	SegStatic
	SegThis
	SegThat
	SegPointer
	SegTemp
)

var segmentNames = [...]string{
	SegConstant: "constant",
	SegArgument: "argument",
	SegLocal:    "local",
	SegStatic:   "static",
	SegThis:     "this",
	SegThat:     "that",
	SegPointer:  "pointer",
	SegTemp:     "temp",
}

func (s Segment) String() string {
	if int(s) >= 0 && int(s) < len(segmentNames) {
		return segmentNames[s]
	}
	return fmt.Sprintf("Segment(%d)", int(s))
}

// SegmentOf maps a symbol category to the segment holding it.
func SegmentOf(c Category) Segment {
	switch c {
	case Static:
		return SegStatic
	case Field:
		return SegThis
	case Local:
		return SegLocal
	case Parameter:
		return SegArgument
	}
	panic(fmt.Sprintf("compiler: no segment for category %d", int(c)))
}

// Command is a VM arithmetic/logical command.
type Command string

const (
	CmdAdd Command = "add"
	CmdSub Command = "sub"
	CmdNeg Command = "neg"
	CmdEq  Command = "eq"
	CmdGt  Command = "gt"
	CmdLt  Command = "lt"
	CmdAnd Command = "and"
	CmdOr  Command = "or"
	CmdNot Command = "not"
)

// OpCommand translates a source operator into its VM command. '-' is the
// binary subtraction; unary minus is CmdNeg.
func OpCommand(op byte) Command {
	switch op {
	case '+':
		return CmdAdd
	case '-':
		return CmdSub
	case '=':
		return CmdEq
	case '>':
		return CmdGt
	case '<':
		return CmdLt
	case '&':
		return CmdAnd
	case '|':
		return CmdOr
	case '~':
		return CmdNot
	}
	panic(fmt.Sprintf("compiler: no VM command for operator %q", op))
}

// VMWriter serialises VM instructions, one per line. The first write error
// is kept and later writes become no-ops.
type VMWriter struct {
	w   io.Writer
	err error
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{w: w}
}

func (vw *VMWriter) WritePush(seg Segment, index int) {
	vw.line("push %s %d", seg, index)
}

func (vw *VMWriter) WritePop(seg Segment, index int) {
	vw.line("pop %s %d", seg, index)
}

func (vw *VMWriter) WriteArithmetic(cmd Command) {
	vw.line("%s", cmd)
}

func (vw *VMWriter) WriteLabel(label string) {
	vw.line("label %s", label)
}

func (vw *VMWriter) WriteGoto(label string) {
	vw.line("goto %s", label)
}

func (vw *VMWriter) WriteIf(label string) {
	vw.line("if-goto %s", label)
}

func (vw *VMWriter) WriteCall(name string, nArgs int) {
	vw.line("call %s %d", name, nArgs)
}

func (vw *VMWriter) WriteFunction(name string, nLocals int) {
	vw.line("function %s %d", name, nLocals)
}

func (vw *VMWriter) WriteReturn() {
	vw.line("return")
}

// Err returns the first error from the underlying writer.
func (vw *VMWriter) Err() error {
	return vw.err
}

func (vw *VMWriter) line(format string, args ...any) {
	if vw.err != nil {
		return
	}
	_, vw.err = fmt.Fprintf(vw.w, format+"\n", args...)
}
