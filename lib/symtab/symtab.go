// Package symtab implements the flat, global Flat-B symbol table.
package symtab

import (
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/diag"
)

type Kind int

const (
	Scalar Kind = iota
	Array
	Label
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Array:
		return "array"
	case Label:
		return "label"
	}
	return "unknown"
}

// Entry describes one identifier. Scalars and arrays own their storage cells;
// labels point (without owning) at the labelled statement and its block.
type Entry struct {
	Name  string
	Kind  Kind
	Type  string
	Size  int64
	Cells []int64
	Stmt  ast.Stmt
	Block *ast.CodeBlock
	Index int
	Pos   lexer.Position
}

type Table struct {
	entries map[string]*Entry
	order   []string
}

func New() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Declare adds a scalar or array entry for v.
func (t *Table) Declare(v *ast.Variable) error {
	if prev, ok := t.entries[v.Name]; ok {
		if prev.Kind == Label {
			return diag.Errorf(diag.KindMismatch, v.Name, v.Pos, "already used as a label at %s", prev.Pos)
		}
		return diag.Errorf(diag.DuplicateDeclaration, v.Name, v.Pos, "previously declared at %s", prev.Pos)
	}
	e := &Entry{Name: v.Name, Kind: Scalar, Type: v.Type, Size: 1, Pos: v.Pos}
	if v.IsArray {
		if v.Length < 1 {
			return diag.Errorf(diag.InvalidArraySize, v.Name, v.Pos, "length %d", v.Length)
		}
		e.Kind = Array
		e.Size = v.Length
	}
	e.Cells = make([]int64, e.Size)
	t.insert(e)
	return nil
}

// DeclareLabel registers the statement at index in block under name.
func (t *Table) DeclareLabel(name string, s ast.Stmt, block *ast.CodeBlock, index int) error {
	if prev, ok := t.entries[name]; ok {
		if prev.Kind != Label {
			return diag.Errorf(diag.KindMismatch, name, s.Position(), "label collides with %s declared at %s", prev.Kind, prev.Pos)
		}
		return diag.Errorf(diag.DuplicateLabel, name, s.Position(), "previously declared at %s", prev.Pos)
	}
	t.insert(&Entry{Name: name, Kind: Label, Stmt: s, Block: block, Index: index, Pos: s.Position()})
	return nil
}

func (t *Table) insert(e *Entry) {
	t.entries[e.Name] = e
	t.order = append(t.order, e.Name)
}

func (t *Table) Lookup(name string) (*Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Entries returns the entries in declaration order.
func (t *Table) Entries() []*Entry {
	out := make([]*Entry, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.entries[name])
	}
	return out
}

func (t *Table) Len() int { return len(t.order) }

// Reset zeroes every storage cell.
func (t *Table) Reset() {
	for _, e := range t.entries {
		for i := range e.Cells {
			e.Cells[i] = 0
		}
	}
}

// Value returns the scalar value of name, or element i of an array.
func (t *Table) Value(name string, i int64) (int64, bool) {
	e, ok := t.entries[name]
	if !ok || e.Kind == Label || i < 0 || i >= int64(len(e.Cells)) {
		return 0, false
	}
	return e.Cells[i], true
}
