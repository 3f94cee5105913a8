package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Category says which scope owns a symbol and which VM segment holds it.
type Category int

const (
	Static Category = iota
	Field
	Local
	Parameter

	numCategories
)

var categoryNames = [...]string{
	Static:    "static",
	Field:     "field",
	Local:     "local",
	Parameter: "parameter",
}

func (c Category) String() string {
	if c >= 0 && c < numCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ScopeLevel indexes the scope stack.
type ScopeLevel int

const (
	ClassScope ScopeLevel = iota
	SubroutineScope
)

// level returns the scope that owns symbols of category c.
func (c Category) level() ScopeLevel {
	switch c {
	case Static, Field:
		return ClassScope
	case Local, Parameter:
		return SubroutineScope
	}
	panic(fmt.Sprintf("compiler: unknown category %d", int(c)))
}

// Symbol is one declared name.
type Symbol struct {
	Name     string
	Type     string
	Category Category
	Slot     int // 0-based, dense per category within its scope
}

type scope struct {
	symbols map[string]Symbol
	counts  [numCategories]int
}

func newScope() *scope {
	return &scope{symbols: make(map[string]Symbol)}
}

// SymbolTable tracks declared names in a stack of two scopes: the class
// scope at the bottom and the current subroutine scope on top.
type SymbolTable struct {
	scopes []*scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []*scope{ClassScope: newScope(), SubroutineScope: newScope()}}
}

// StartSubroutine discards the subroutine scope and its counters. The class
// scope is left alone.
func (s *SymbolTable) StartSubroutine() {
	s.scopes[SubroutineScope] = newScope()
}

// Define adds name to the scope owning cat with the next free slot for cat.
// Redeclaring a name in the same scope is a semantic error.
func (s *SymbolTable) Define(name, typ string, cat Category) (Symbol, error) {
	sc := s.scopes[cat.level()]
	if prev, ok := sc.symbols[name]; ok {
		return Symbol{}, newError(SemanticError, Pos{}, "%q already declared as %s %s", name, prev.Category, prev.Type)
	}
	sym := Symbol{Name: name, Type: typ, Category: cat, Slot: sc.counts[cat]}
	sc.counts[cat]++
	sc.symbols[name] = sym
	return sym, nil
}

// Lookup resolves name from the innermost scope outwards.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if sym, ok := s.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

func (s *SymbolTable) KindOf(name string) (Category, bool) {
	sym, ok := s.Lookup(name)
	return sym.Category, ok
}

func (s *SymbolTable) TypeOf(name string) (string, bool) {
	sym, ok := s.Lookup(name)
	return sym.Type, ok
}

func (s *SymbolTable) IndexOf(name string) (int, bool) {
	sym, ok := s.Lookup(name)
	return sym.Slot, ok
}

// Count returns how many symbols of cat the owning scope currently holds.
func (s *SymbolTable) Count(cat Category) int {
	return s.scopes[cat.level()].counts[cat]
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	for level, sc := range s.scopes {
		title := "Class"
		if ScopeLevel(level) == SubroutineScope {
			title = "Subroutine"
		}
		if len(sc.symbols) == 0 {
			fmt.Fprintf(&sb, "%s: (empty)\n", title)
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", title)
		syms := make([]Symbol, 0, len(sc.symbols))
		for _, sym := range sc.symbols {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			if syms[i].Category != syms[j].Category {
				return syms[i].Category < syms[j].Category
			}
			return syms[i].Slot < syms[j].Slot
		})
		for _, sym := range syms {
			fmt.Fprintf(&sb, "  %-20s  %-9s %d (Type: %s)\n", sym.Name, sym.Category, sym.Slot, sym.Type)
		}
	}
	return sb.String()
}
