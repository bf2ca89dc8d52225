// Package analyzer runs the declaration and label pass over a Flat-B program.
//
// The pass builds the symbol table, rejects duplicate declarations and labels,
// checks every variable reference against its declared kind and, optionally,
// writes a structural XML dump of the program while it walks.
package analyzer

import (
	"io"
	"strconv"

	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/diag"
	"github.com/vyPal/flatb/lib/symtab"
)

type Options struct {
	// Dump receives the XML structural dump. Nil disables it.
	Dump io.Writer
}

// Analyze validates prog and returns its symbol table. The first violation
// aborts the pass and is returned as a *diag.Error.
func Analyze(prog *ast.Program, opts Options) (*symtab.Table, error) {
	p := &pass{table: symtab.New()}
	if opts.Dump != nil {
		p.dump = NewDumper(opts.Dump)
	}

	ast.Walk(p, prog)
	if p.err != nil {
		return nil, p.err
	}
	if err := p.dump.Close(); err != nil {
		return nil, err
	}

	for _, g := range p.gotos {
		e, ok := p.table.Lookup(g.Target)
		if !ok {
			return nil, diag.New(diag.UndefinedLabel, g.Target, g.Pos)
		}
		if e.Kind != symtab.Label {
			return nil, diag.Errorf(diag.KindMismatch, g.Target, g.Pos, "goto target is a %s", e.Kind)
		}
	}
	return p.table, nil
}

type frame struct {
	node  ast.Node
	child int
}

type pass struct {
	table *symtab.Table
	dump  *Dumper
	stack []frame
	gotos []*ast.GotoBlock
	err   error
}

func (p *pass) parent() *frame {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

func (p *pass) Visit(node ast.Node) ast.Visitor {
	if p.err != nil {
		return nil
	}
	if node == nil {
		p.stack = p.stack[:len(p.stack)-1]
		p.dump.End()
		return nil
	}

	parent := p.parent()
	index := 0
	if parent != nil {
		index = parent.child
		parent.child++
	}

	if err := p.check(node, parent, index); err != nil {
		p.err = err
		return nil
	}
	p.dump.Start(elementName(node, parent), attributes(node, parent)...)
	p.stack = append(p.stack, frame{node: node})
	return p
}

func (p *pass) check(node ast.Node, parent *frame, index int) error {
	switch n := node.(type) {
	case *ast.Variable:
		return p.table.Declare(n)

	case *ast.TargetVar:
		return p.checkReference(n)

	case *ast.GotoBlock:
		p.gotos = append(p.gotos, n)
	}

	if s, ok := node.(ast.Stmt); ok && s.Label() != "" {
		block, _ := parent.node.(*ast.CodeBlock)
		if block == nil {
			// The init assignment of a for loop is never labelled by the parser.
			return diag.Errorf(diag.KindMismatch, s.Label(), s.Position(), "label outside a code block")
		}
		return p.table.DeclareLabel(s.Label(), s, block, index)
	}
	return nil
}

func (p *pass) checkReference(t *ast.TargetVar) error {
	e, ok := p.table.Lookup(t.Name)
	if !ok {
		return diag.New(diag.UndeclaredIdentifier, t.Name, t.Pos)
	}
	switch {
	case e.Kind == symtab.Label:
		return diag.Errorf(diag.KindMismatch, t.Name, t.Pos, "label used as a variable")
	case t.IsArray() && e.Kind != symtab.Array:
		return diag.Errorf(diag.KindMismatch, t.Name, t.Pos, "scalar indexed as an array")
	case !t.IsArray() && e.Kind == symtab.Array:
		return diag.Errorf(diag.KindMismatch, t.Name, t.Pos, "array used without an index")
	}
	return nil
}

func elementName(node ast.Node, parent *frame) string {
	switch n := node.(type) {
	case *ast.Program:
		return "program"
	case *ast.DeclBlock:
		return "declarations"
	case *ast.DeclStatement:
		return "declaration"
	case *ast.Variable:
		return "variable"
	case *ast.CodeBlock:
		if parent != nil {
			if ie, ok := parent.node.(*ast.IfElse); ok {
				if n == ie.Else {
					return "else"
				}
				return "then"
			}
			if _, ok := parent.node.(*ast.Program); !ok {
				return "body"
			}
		}
		return "code"
	case *ast.Assignment:
		return "assignment"
	case *ast.ForLoop:
		return "for"
	case *ast.WhileLoop:
		return "while"
	case *ast.IfElse:
		return "if"
	case *ast.GotoBlock:
		return "goto"
	case *ast.IOBlock:
		return n.Kind.String()
	case *ast.CondExpr:
		return "condition"
	case *ast.BinaryExpr:
		return "binary"
	case *ast.UnaryExpr:
		return "unary"
	case *ast.Integer:
		return "integer"
	case *ast.TargetVar:
		return "target"
	}
	return "node"
}

func attributes(node ast.Node, parent *frame) []Attr {
	var attrs []Attr
	if s, ok := node.(ast.Stmt); ok {
		attrs = append(attrs, Attr{"label", s.Label()})
	}
	if parent != nil {
		attrs = append(attrs, Attr{"role", role(node, parent.node)})
	}

	switch n := node.(type) {
	case *ast.DeclStatement:
		attrs = append(attrs, Attr{"type", n.Type})
	case *ast.Variable:
		attrs = append(attrs, Attr{"name", n.Name}, Attr{"type", n.Type})
		if n.IsArray {
			attrs = append(attrs, Attr{"size", strconv.FormatInt(n.Length, 10)})
		}
	case *ast.GotoBlock:
		attrs = append(attrs, Attr{"target", n.Target})
	case *ast.IOBlock:
		attrs = append(attrs, Attr{"text", n.Text})
	case *ast.CondExpr:
		attrs = append(attrs, Attr{"op", n.Cmp.String()}, Attr{"negated", flag(n.Negated)})
	case *ast.BinaryExpr:
		attrs = append(attrs, Attr{"op", n.Op.String()})
	case *ast.UnaryExpr:
		attrs = append(attrs, Attr{"op", n.Op.String()})
	case *ast.Integer:
		attrs = append(attrs, Attr{"value", strconv.FormatInt(n.Value, 10)})
	case *ast.TargetVar:
		attrs = append(attrs, Attr{"name", n.Name}, Attr{"negate", flag(n.Negate)}, Attr{"address", flag(n.IsTarget)})
	}
	return attrs
}

// role names the slot an expression fills when the element name alone is
// ambiguous.
func role(node, parent ast.Node) string {
	switch p := parent.(type) {
	case *ast.ForLoop:
		switch node {
		case ast.Node(p.Init):
			return "init"
		case p.Bound:
			return "bound"
		case p.Step:
			return "step"
		}
	case *ast.TargetVar:
		return "index"
	case *ast.Assignment:
		if node != ast.Node(p.Target) {
			return "value"
		}
	}
	return ""
}

func flag(b bool) string {
	if b {
		return "true"
	}
	return ""
}
