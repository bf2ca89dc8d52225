package ast

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// program builds:
//
//	declblock { int a, b[4]; }
//	codeblock {
//	    L: a = b[1] + 2;
//	    for a = 0, 3 { print "x", -a; }
//	    goto L if !a < 1;
//	}
func program() *Program {
	decls := &DeclBlock{}
	decls.AddStatement(NewDeclStatement("int", []*Variable{NewScalar("a"), NewArray("b", 4)}))

	assign := NewAssignment(NewTargetVar("a", nil), NewBinary(NewTargetVar("b", NewInteger(1)), OpAdd, NewInteger(2)))
	assign.SetLabel("L")

	neg := NewTargetVar("a", nil)
	neg.SetNegate()
	body := &CodeBlock{}
	body.AddStatement(NewIOBlock(Print, `"x"`, neg))
	loop := NewForLoop(NewAssignment(NewTargetVar("a", nil), NewInteger(0)), NewInteger(3), nil, body)

	cond := NewCondExpr(NewTargetVar("a", nil), Less, NewInteger(1))
	cond.FlipNot()

	code := &CodeBlock{}
	code.AddStatement(assign)
	code.AddStatement(loop)
	code.AddStatement(NewGoto("L", cond))
	return NewProgram(decls, code)
}

func describe(n Node) string {
	switch n := n.(type) {
	case *Variable:
		return "var " + n.Name
	case *TargetVar:
		return "target " + n.Name
	case *Integer:
		return fmt.Sprint(n.Value)
	case *BinaryExpr:
		return n.Op.String()
	case *CondExpr:
		return n.Cmp.String()
	case *IOBlock:
		return n.Kind.String() + " " + n.Text
	case *GotoBlock:
		return "goto " + n.Target
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

func TestInspectDocumentOrder(t *testing.T) {
	var got []string
	Inspect(program(), func(n Node) bool {
		if n != nil {
			got = append(got, describe(n))
		}
		return true
	})

	want := []string{
		"Program", "DeclBlock", "DeclStatement", "var a", "var b",
		"CodeBlock",
		"Assignment", "target a", "add", "target b", "1", "2",
		"ForLoop", "Assignment", "target a", "0", "3", "CodeBlock", "print x", "target a",
		"goto L", "<", "target a", "1",
	}
	be.Equal(t, got, want)
}

func TestInspectSkipsChildren(t *testing.T) {
	var count int
	Inspect(program(), func(n Node) bool {
		if n == nil {
			return false
		}
		count++
		_, isLoop := n.(*ForLoop)
		return !isLoop
	})
	// Everything except the loop's seven descendants.
	be.Equal(t, count, 17)
}

type depthVisitor struct {
	depth, max *int
}

func (v depthVisitor) Visit(n Node) Visitor {
	if n == nil {
		*v.depth--
		return nil
	}
	*v.depth++
	if *v.depth > *v.max {
		*v.max = *v.depth
	}
	return v
}

func TestWalkBalancesNilVisits(t *testing.T) {
	depth, max := 0, 0
	Walk(depthVisitor{&depth, &max}, program())
	be.Equal(t, depth, 0)
	// Program > CodeBlock > ForLoop > CodeBlock > IOBlock > TargetVar
	be.Equal(t, max, 6)
}

func TestConstructorFlags(t *testing.T) {
	p := program()

	for _, v := range p.Decls.Statements[0].Variables {
		be.Equal(t, v.Type, "int")
	}

	assign := p.Code.Statements[0].(*Assignment)
	be.True(t, assign.Target.IsTarget)
	be.Equal(t, assign.Label(), "L")

	io := p.Code.Statements[1].(*ForLoop).Body.Statements[0].(*IOBlock)
	be.Equal(t, io.Text, "x")
	be.True(t, io.Expr.(*TargetVar).Negate)
	be.True(t, !io.Expr.(*TargetVar).IsTarget)

	g := p.Code.Statements[2].(*GotoBlock)
	be.True(t, g.Cond.Negated)
	be.Equal(t, p.Code.IndexOf("L"), 0)
	be.Equal(t, p.Code.IndexOf("missing"), -1)
}

func TestReadOperandIsAddress(t *testing.T) {
	io := NewIOBlock(Read, "", NewTargetVar("a", nil))
	be.True(t, io.Expr.(*TargetVar).IsTarget)
}

func TestSetLabelOnce(t *testing.T) {
	g := NewGoto("x", nil)
	g.SetLabel("A")
	g.SetLabel("A")

	defer func() {
		be.True(t, recover() != nil)
	}()
	g.SetLabel("B")
}

func TestParseComparator(t *testing.T) {
	for _, sym := range []string{">", ">=", "<", "<=", "==", "!="} {
		c, ok := ParseComparator(sym)
		be.True(t, ok)
		be.Equal(t, c.String(), sym)
	}
	_, ok := ParseComparator("=<")
	be.True(t, !ok)
}
