package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/vyPal/flatb/lib/ast"
)

// build converts the participle parse tree into lib/ast nodes.
func build(p *Program) (*ast.Program, error) {
	prog := ast.NewProgram(nil, nil)
	prog.Pos = p.Pos

	if p.Decl != nil {
		decls := &ast.DeclBlock{Pos: p.Decl.Pos}
		for _, line := range p.Decl.Lines {
			vars := make([]*ast.Variable, 0, len(line.Vars))
			for _, vd := range line.Vars {
				var v *ast.Variable
				if vd.Length != nil {
					v = ast.NewArray(vd.Name, *vd.Length)
				} else {
					v = ast.NewScalar(vd.Name)
				}
				v.Pos = vd.Pos
				vars = append(vars, v)
			}
			ds := ast.NewDeclStatement(line.Type, vars)
			ds.Pos = line.Pos
			decls.AddStatement(ds)
		}
		prog.Decls = decls
	}

	if p.Code != nil {
		code, err := buildBlock(p.Code.Body)
		if err != nil {
			return nil, err
		}
		code.Pos = p.Code.Pos
		prog.Code = code
	}
	return prog, nil
}

func buildBlock(b *Block) (*ast.CodeBlock, error) {
	block := &ast.CodeBlock{Pos: b.Pos}
	for _, s := range b.Statements {
		stmt, err := buildStatement(s)
		if err != nil {
			return nil, err
		}
		if s.Label != "" {
			stmt.SetLabel(s.Label)
		}
		block.AddStatement(stmt)
	}
	return block, nil
}

func buildStatement(s *Statement) (ast.Stmt, error) {
	switch {
	case s.Assign != nil:
		return buildAssign(s.Assign)
	case s.For != nil:
		return buildFor(s.For)
	case s.While != nil:
		cond, err := buildCond(s.While.Cond)
		if err != nil {
			return nil, err
		}
		body, err := buildBlock(s.While.Body)
		if err != nil {
			return nil, err
		}
		w := ast.NewWhileLoop(cond, body)
		w.Pos = s.While.Pos
		return w, nil
	case s.If != nil:
		return buildIf(s.If)
	case s.Goto != nil:
		var cond *ast.CondExpr
		if s.Goto.Cond != nil {
			c, err := buildCond(s.Goto.Cond)
			if err != nil {
				return nil, err
			}
			cond = c
		}
		g := ast.NewGoto(s.Goto.Label, cond)
		g.Pos = s.Goto.Pos
		return g, nil
	case s.IO != nil:
		return buildIO(s.IO)
	}
	return nil, participle.Errorf(s.Pos, "unknown statement")
}

func buildAssign(a *Assign) (*ast.Assignment, error) {
	target, err := buildTarget(a.Target)
	if err != nil {
		return nil, err
	}
	if len(a.Values) == 1 {
		value, err := buildExpr(a.Values[0])
		if err != nil {
			return nil, err
		}
		as := ast.NewAssignment(target, value)
		as.Pos = a.Pos
		return as, nil
	}

	// a = b = c = e: the innermost assignment is c = e.
	last := a.Values[len(a.Values)-1]
	value, err := buildExpr(last)
	if err != nil {
		return nil, err
	}
	innerTarget, err := chainTarget(a.Values[len(a.Values)-2])
	if err != nil {
		return nil, err
	}
	inner := ast.NewAssignment(innerTarget, value)
	inner.Pos = a.Values[len(a.Values)-2].Pos
	for i := len(a.Values) - 3; i >= 0; i-- {
		t, err := chainTarget(a.Values[i])
		if err != nil {
			return nil, err
		}
		next := ast.NewChainedAssignment(t, inner)
		next.Pos = a.Values[i].Pos
		inner = next
	}
	as := ast.NewChainedAssignment(target, inner)
	as.Pos = a.Pos
	return as, nil
}

// chainTarget accepts only a bare, non negated target as the middle of a
// chained assignment.
func chainTarget(e *Expr) (*ast.TargetVar, error) {
	if len(e.Rest) == 0 && len(e.Left.Rest) == 0 {
		f := e.Left.Left
		if f.Target != nil && !f.Neg {
			return buildTarget(f.Target)
		}
	}
	return nil, participle.Errorf(e.Pos, "cannot assign to expression")
}

func buildFor(f *For) (ast.Stmt, error) {
	init, err := buildAssign(f.Init)
	if err != nil {
		return nil, err
	}
	bound, err := buildExpr(f.Bound)
	if err != nil {
		return nil, err
	}
	var step ast.MathExpr
	if f.Step != nil {
		if step, err = buildExpr(f.Step); err != nil {
			return nil, err
		}
	}
	body, err := buildBlock(f.Body)
	if err != nil {
		return nil, err
	}
	loop := ast.NewForLoop(init, bound, step, body)
	loop.Pos = f.Pos
	return loop, nil
}

func buildIf(i *If) (ast.Stmt, error) {
	cond, err := buildCond(i.Cond)
	if err != nil {
		return nil, err
	}
	then, err := buildBlock(i.Then)
	if err != nil {
		return nil, err
	}
	var els *ast.CodeBlock
	if i.Else != nil {
		if els, err = buildBlock(i.Else); err != nil {
			return nil, err
		}
	}
	n := ast.NewIfElse(cond, then, els)
	n.Pos = i.Pos
	return n, nil
}

func buildIO(io *IO) (ast.Stmt, error) {
	var kind ast.IOKind
	switch io.Kind {
	case "print":
		kind = ast.Print
	case "println":
		kind = ast.Println
	case "read":
		kind = ast.Read
	}

	var expr ast.MathExpr
	if kind == ast.Read {
		if io.Text != nil || io.Expr == nil {
			return nil, participle.Errorf(io.Pos, "read expects a variable")
		}
		t, err := chainTarget(io.Expr)
		if err != nil {
			return nil, participle.Errorf(io.Expr.Pos, "read expects a variable")
		}
		expr = t
	} else if io.Expr != nil {
		e, err := buildExpr(io.Expr)
		if err != nil {
			return nil, err
		}
		expr = e
	}

	text := ""
	if io.Text != nil {
		text = *io.Text
	}
	n := ast.NewIOBlock(kind, text, expr)
	n.Pos = io.Pos
	return n, nil
}

func buildCond(c *Cond) (*ast.CondExpr, error) {
	if c.Not != nil {
		inner, err := buildCond(c.Not)
		if err != nil {
			return nil, err
		}
		inner.FlipNot()
		return inner, nil
	}
	cmp, ok := ast.ParseComparator(c.Op)
	if !ok {
		return nil, participle.Errorf(c.Pos, "unknown comparison operator %q", c.Op)
	}
	left, err := buildExpr(c.Left)
	if err != nil {
		return nil, err
	}
	right, err := buildExpr(c.Right)
	if err != nil {
		return nil, err
	}
	cond := ast.NewCondExpr(left, cmp, right)
	cond.Pos = c.Pos
	return cond, nil
}

func buildExpr(e *Expr) (ast.MathExpr, error) {
	left, err := buildTerm(e.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		right, err := buildTerm(r.Term)
		if err != nil {
			return nil, err
		}
		op := ast.OpAdd
		if r.Op == "-" {
			op = ast.OpSub
		}
		bin := ast.NewBinary(left, op, right)
		bin.Pos = r.Pos
		left = bin
	}
	return left, nil
}

func buildTerm(t *Term) (ast.MathExpr, error) {
	left, err := buildFactor(t.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range t.Rest {
		right, err := buildFactor(r.Factor)
		if err != nil {
			return nil, err
		}
		op := ast.OpMul
		if r.Op == "/" {
			op = ast.OpDiv
		}
		bin := ast.NewBinary(left, op, right)
		bin.Pos = r.Pos
		left = bin
	}
	return left, nil
}

func buildFactor(f *Factor) (ast.MathExpr, error) {
	switch {
	case f.Int != nil:
		v := *f.Int
		if f.Neg {
			v = -v
		}
		n := ast.NewInteger(v)
		n.Pos = f.Pos
		return n, nil
	case f.Paren != nil:
		inner, err := buildExpr(f.Paren)
		if err != nil {
			return nil, err
		}
		op := ast.OpIdentity
		if f.Neg {
			op = ast.OpNeg
		}
		u := ast.NewUnary(op, inner)
		u.Pos = f.Pos
		return u, nil
	case f.Target != nil:
		t, err := buildTarget(f.Target)
		if err != nil {
			return nil, err
		}
		if f.Neg {
			t.SetNegate()
		}
		return t, nil
	}
	return nil, participle.Errorf(f.Pos, "expected expression")
}

func buildTarget(t *Target) (*ast.TargetVar, error) {
	var index ast.MathExpr
	if t.Index != nil {
		i, err := buildExpr(t.Index)
		if err != nil {
			return nil, err
		}
		index = i
	}
	tv := ast.NewTargetVar(t.Name, index)
	tv.Pos = t.Pos
	return tv, nil
}
