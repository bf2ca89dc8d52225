package ast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in document order: declarations before code,
// statements in sequence, left operands before right ones.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		if n.Decls != nil {
			Walk(v, n.Decls)
		}
		if n.Code != nil {
			Walk(v, n.Code)
		}

	case *DeclBlock:
		for _, s := range n.Statements {
			Walk(v, s)
		}

	case *DeclStatement:
		for _, vr := range n.Variables {
			Walk(v, vr)
		}

	case *Variable, *Integer:
		// leaves

	case *CodeBlock:
		for _, s := range n.Statements {
			Walk(v, s)
		}

	case *Assignment:
		Walk(v, n.Target)
		if n.Chain != nil {
			Walk(v, n.Chain)
		} else if n.Value != nil {
			Walk(v, n.Value)
		}

	case *ForLoop:
		Walk(v, n.Init)
		Walk(v, n.Bound)
		if n.Step != nil {
			Walk(v, n.Step)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}

	case *WhileLoop:
		Walk(v, n.Cond)
		if n.Body != nil {
			Walk(v, n.Body)
		}

	case *IfElse:
		Walk(v, n.Cond)
		if n.Then != nil {
			Walk(v, n.Then)
		}
		if n.Else != nil {
			Walk(v, n.Else)
		}

	case *GotoBlock:
		if n.Cond != nil {
			Walk(v, n.Cond)
		}

	case *IOBlock:
		if n.Expr != nil {
			Walk(v, n.Expr)
		}

	case *CondExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *BinaryExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *UnaryExpr:
		Walk(v, n.Operand)

	case *TargetVar:
		if n.Index != nil {
			Walk(v, n.Index)
		}
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in document order, calling f(node) for every node
// and f(nil) after its children. If f returns false the children are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
