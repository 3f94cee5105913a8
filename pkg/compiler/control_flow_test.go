package compiler

import (
	"strings"
	"testing"
)

func TestIfWithoutElse(t *testing.T) {
	got := compileLines(t, `
	class Main {
		function void main() {
			var int x;
			if (x = 1) {
				let x = 2;
			}
			if (x) {
				let x = 3;
			}
			return;
		}
	}`)
	expectLines(t, got,
		"function Main.main 1",
		"push local 0",
		"push constant 1",
		"eq",
		"if-goto IF_TRUE0",
		"goto IF_FALSE0",
		"label IF_TRUE0",
		"push constant 2",
		"pop local 0",
		"label IF_FALSE0",
		"push local 0",
		"if-goto IF_TRUE1",
		"goto IF_FALSE1",
		"label IF_TRUE1",
		"push constant 3",
		"pop local 0",
		"label IF_FALSE1",
		"push constant 0",
		"return",
	)
}

func TestIfElse(t *testing.T) {
	got := compileLines(t, `
	class Main {
		function int sign(int n) {
			if (n < 0) {
				return -1;
			} else {
				return 1;
			}
		}
	}`)
	expectLines(t, got,
		"function Main.sign 0",
		"push argument 0",
		"push constant 0",
		"lt",
		"if-goto IF_TRUE0",
		"goto IF_FALSE0",
		"label IF_TRUE0",
		"push constant 1",
		"neg",
		"return",
		"goto IF_END0",
		"label IF_FALSE0",
		"push constant 1",
		"return",
		"label IF_END0",
	)
}

func TestWhile(t *testing.T) {
	got := compileLines(t, `
	class Main {
		function int sum(int n) {
			var int i, s;
			while (i < n) {
				let s = s + i;
				let i = i + 1;
			}
			return s;
		}
	}`)
	expectLines(t, got,
		"function Main.sum 2",
		"label WHILE_BEGIN0",
		"push local 0",
		"push argument 0",
		"lt",
		"not",
		"if-goto WHILE_END0",
		"push local 1",
		"push local 0",
		"add",
		"pop local 1",
		"push local 0",
		"push constant 1",
		"add",
		"pop local 0",
		"goto WHILE_BEGIN0",
		"label WHILE_END0",
		"push local 1",
		"return",
	)
}

func TestLabelCountersAcrossSubroutines(t *testing.T) {
	code, err := CompileString(`
	class Main {
		function void a() {
			while (true) {
				if (false) { return; }
			}
			return;
		}
		function void b() {
			if (true) {
				while (false) { }
			} else {
				if (true) { }
			}
			return;
		}
	}`)
	if err != nil {
		t.Fatal(err)
	}

	// Nested constructs take the next number when they start; counters
	// are per unit, not per subroutine.
	for _, label := range []string{
		"label WHILE_BEGIN0", "label WHILE_END0",
		"label IF_TRUE0", "label IF_FALSE0",
		"label IF_TRUE1", "label IF_FALSE1", "label IF_END1",
		"label WHILE_BEGIN1", "label WHILE_END1",
		"label IF_TRUE2", "label IF_FALSE2",
	} {
		if n := strings.Count(code, label+"\n"); n != 1 {
			t.Errorf("%s: expected exactly once, found %d times\n%s", label, n, code)
		}
	}
	if strings.Contains(code, "IF_END0") || strings.Contains(code, "IF_END2") {
		t.Errorf("if without else must not emit an end label:\n%s", code)
	}

	// Inside b, the outer if (1) opens before the while (1) and inner if (2).
	outer := strings.Index(code, "label IF_TRUE1")
	loop := strings.Index(code, "label WHILE_BEGIN1")
	inner := strings.Index(code, "label IF_TRUE2")
	if !(outer < loop && loop < inner) {
		t.Errorf("labels out of order: IF_TRUE1@%d WHILE_BEGIN1@%d IF_TRUE2@%d", outer, loop, inner)
	}
}

func TestEmptyBodies(t *testing.T) {
	got := compileLines(t, `
	class Main {
		function void spin() {
			while (false) {}
			if (true) {} else {}
			return;
		}
	}`)
	expectLines(t, got,
		"function Main.spin 0",
		"label WHILE_BEGIN0",
		"push constant 0",
		"not",
		"if-goto WHILE_END0",
		"goto WHILE_BEGIN0",
		"label WHILE_END0",
		"push constant 0",
		"not",
		"if-goto IF_TRUE0",
		"goto IF_FALSE0",
		"label IF_TRUE0",
		"goto IF_END0",
		"label IF_FALSE0",
		"label IF_END0",
		"push constant 0",
		"return",
	)
}
