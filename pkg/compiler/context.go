package compiler

import "fmt"

// SubroutineKind decides the prologue emitted for a subroutine.
type SubroutineKind int

const (
	Constructor SubroutineKind = iota
	Function
	Method
)

func (k SubroutineKind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Function:
		return "function"
	case Method:
		return "method"
	}
	return fmt.Sprintf("SubroutineKind(%d)", int(k))
}

var subroutineKinds = map[string]SubroutineKind{
	"constructor": Constructor,
	"function":    Function,
	"method":      Method,
}

// ifLabels are the branch targets of one if statement.
type ifLabels struct {
	True, False, End string
}

// whileLabels are the branch targets of one while statement.
type whileLabels struct {
	Begin, End string
}

// unitContext is the state threaded through the recursive descent of one
// source unit. The label counters live as long as the unit.
type unitContext struct {
	className  string
	kind       SubroutineKind
	subroutine string

	ifCount    int
	whileCount int
}

func newUnitContext(className string) *unitContext {
	return &unitContext{className: className}
}

// enterSubroutine switches to a new subroutine. Label counters keep going.
func (c *unitContext) enterSubroutine(kind SubroutineKind, name string) {
	c.kind = kind
	c.subroutine = name
}

// qualify returns the VM name of a subroutine of the current class.
func (c *unitContext) qualify(name string) string {
	return c.className + "." + name
}

func (c *unitContext) nextIfLabels() ifLabels {
	n := c.ifCount
	c.ifCount++
	return ifLabels{
		True:  fmt.Sprintf("IF_TRUE%d", n),
		False: fmt.Sprintf("IF_FALSE%d", n),
		End:   fmt.Sprintf("IF_END%d", n),
	}
}

func (c *unitContext) nextWhileLabels() whileLabels {
	n := c.whileCount
	c.whileCount++
	return whileLabels{
		Begin: fmt.Sprintf("WHILE_BEGIN%d", n),
		End:   fmt.Sprintf("WHILE_END%d", n),
	}
}
