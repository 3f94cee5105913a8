package compiler

import (
	"strings"
	"testing"
)

func TestSymbolTable(t *testing.T) {
	t.Run("DenseSlotsPerCategory", func(t *testing.T) {
		s := NewSymbolTable()
		decls := []struct {
			name string
			cat  Category
			slot int
		}{
			{"a", Field, 0},
			{"count", Static, 0},
			{"b", Field, 1},
			{"c", Field, 2},
			{"total", Static, 1},
		}
		for _, d := range decls {
			sym, err := s.Define(d.name, "int", d.cat)
			if err != nil {
				t.Fatalf("Define(%q): %v", d.name, err)
			}
			if sym.Slot != d.slot {
				t.Errorf("%s slot: expected %d, got %d", d.name, d.slot, sym.Slot)
			}
		}
		if n := s.Count(Field); n != 3 {
			t.Errorf("field count: expected 3, got %d", n)
		}
		if n := s.Count(Static); n != 2 {
			t.Errorf("static count: expected 2, got %d", n)
		}
		if n := s.Count(Local); n != 0 {
			t.Errorf("local count: expected 0, got %d", n)
		}
	})

	t.Run("LocalsAndParameters", func(t *testing.T) {
		s := NewSymbolTable()
		s.StartSubroutine()
		s.Define("this", "Point", Parameter)
		s.Define("dx", "int", Parameter)
		s.Define("i", "int", Local)
		s.Define("dy", "int", Parameter)
		s.Define("j", "int", Local)

		for name, want := range map[string]int{"this": 0, "dx": 1, "dy": 2, "i": 0, "j": 1} {
			got, ok := s.IndexOf(name)
			if !ok {
				t.Errorf("%s: not found", name)
				continue
			}
			if got != want {
				t.Errorf("%s index: expected %d, got %d", name, want, got)
			}
		}
		if kind, _ := s.KindOf("dy"); kind != Parameter {
			t.Errorf("dy kind: expected parameter, got %v", kind)
		}
		if typ, _ := s.TypeOf("this"); typ != "Point" {
			t.Errorf("this type: expected Point, got %s", typ)
		}
	})

	t.Run("StartSubroutineClearsOnlySubroutineScope", func(t *testing.T) {
		s := NewSymbolTable()
		s.Define("size", "int", Field)
		s.StartSubroutine()
		s.Define("tmp", "int", Local)
		s.Define("n", "int", Parameter)

		s.StartSubroutine()
		if _, ok := s.Lookup("tmp"); ok {
			t.Errorf("tmp should be undeclared after StartSubroutine")
		}
		if _, ok := s.KindOf("n"); ok {
			t.Errorf("n should be undeclared after StartSubroutine")
		}
		if kind, ok := s.KindOf("size"); !ok || kind != Field {
			t.Errorf("size: expected field, got %v (found=%v)", kind, ok)
		}
		if n := s.Count(Local); n != 0 {
			t.Errorf("local count after reset: expected 0, got %d", n)
		}
		sym, _ := s.Define("other", "int", Local)
		if sym.Slot != 0 {
			t.Errorf("first local after reset: expected slot 0, got %d", sym.Slot)
		}
		// Class counters keep going.
		sym, _ = s.Define("more", "int", Field)
		if sym.Slot != 1 {
			t.Errorf("second field: expected slot 1, got %d", sym.Slot)
		}
	})

	t.Run("Shadowing", func(t *testing.T) {
		s := NewSymbolTable()
		s.Define("x", "int", Field)
		s.StartSubroutine()
		s.Define("x", "char", Local)

		sym, ok := s.Lookup("x")
		if !ok {
			t.Fatal("x not found")
		}
		if sym.Category != Local || sym.Type != "char" {
			t.Errorf("expected local char x to shadow the field, got %+v", sym)
		}

		s.StartSubroutine()
		sym, _ = s.Lookup("x")
		if sym.Category != Field {
			t.Errorf("expected field x once the subroutine scope is gone, got %+v", sym)
		}
	})

	t.Run("Redeclaration", func(t *testing.T) {
		s := NewSymbolTable()
		if _, err := s.Define("x", "int", Static); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Define("x", "int", Field); err == nil {
			t.Errorf("expected error redeclaring x in class scope")
		}
		s.StartSubroutine()
		if _, err := s.Define("y", "int", Parameter); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Define("y", "int", Local); err == nil {
			t.Errorf("expected error redeclaring y in subroutine scope")
		}
		// The failed definition must not burn a slot.
		if n := s.Count(Local); n != 0 {
			t.Errorf("local count: expected 0, got %d", n)
		}
	})

	t.Run("Undeclared", func(t *testing.T) {
		s := NewSymbolTable()
		if _, ok := s.KindOf("ghost"); ok {
			t.Errorf("ghost should be undeclared")
		}
		if _, ok := s.TypeOf("ghost"); ok {
			t.Errorf("ghost should have no type")
		}
		if _, ok := s.IndexOf("ghost"); ok {
			t.Errorf("ghost should have no index")
		}
	})

	t.Run("String", func(t *testing.T) {
		s := NewSymbolTable()
		s.Define("b", "int", Field)
		s.Define("a", "int", Static)
		out := s.String()
		if !strings.Contains(out, "Class:") || !strings.Contains(out, "Subroutine: (empty)") {
			t.Errorf("unexpected dump:\n%s", out)
		}
		if strings.Index(out, "a ") > strings.Index(out, "b ") {
			t.Errorf("statics should be listed before fields:\n%s", out)
		}
	})
}
