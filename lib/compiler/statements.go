package compiler

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/diag"
)

func (ctx *Context) compileBlock(stmts []ast.Stmt) {
	for _, s := range stmts {
		ctx.compileStatement(s)
	}
}

func (ctx *Context) compileStatement(s ast.Stmt) {
	// A label starts a new basic block.
	if name := s.Label(); name != "" {
		ctx.placed[name] = true
		ctx.moveTo(ctx.labelBlock(name))
	}

	switch n := s.(type) {
	case *ast.Assignment:
		ctx.compileAssignment(n)
	case *ast.ForLoop:
		ctx.compileFor(n)
	case *ast.WhileLoop:
		ctx.compileWhile(n)
	case *ast.IfElse:
		ctx.compileIf(n)
	case *ast.GotoBlock:
		ctx.compileGoto(n)
	case *ast.IOBlock:
		ctx.compileIO(n)
	default:
		ctx.errs.Addf(diag.LoweringError, "", s.Position(), "unknown statement %T", s)
	}
}

// compileAssignment stores the right hand side and returns the stored value
// for the enclosing link of a chain.
func (ctx *Context) compileAssignment(a *ast.Assignment) value.Value {
	var val value.Value
	if a.Chain != nil {
		val = ctx.compileAssignment(a.Chain)
	} else {
		val = ctx.compileExpression(a.Value)
	}
	if val == nil {
		return nil
	}
	addr := ctx.compileAddress(a.Target)
	if addr == nil {
		return nil
	}
	ctx.NewStore(val, addr)
	return val
}

// compileFor lowers the loop as a while loop whose body ends with the
// increment. The bound is evaluated in the header on every iteration.
func (ctx *Context) compileFor(f *ast.ForLoop) {
	if ctx.compileAssignment(f.Init) == nil {
		return
	}

	iter := f.Iterator()
	step := f.Step
	if step == nil {
		step = ast.NewInteger(1)
	}
	incr := ast.NewAssignment(
		&ast.TargetVar{Pos: iter.Pos, Name: iter.Name, Index: iter.Index},
		ast.NewBinary(&ast.TargetVar{Pos: iter.Pos, Name: iter.Name, Index: iter.Index}, ast.OpAdd, step),
	)
	var body []ast.Stmt
	if f.Body != nil {
		body = append(body, f.Body.Statements...)
	}
	body = append(body, incr)

	cond := ast.NewCondExpr(&ast.TargetVar{Pos: iter.Pos, Name: iter.Name, Index: iter.Index}, ast.Less, f.Bound)
	cond.Pos = f.Pos
	ctx.compileLoop("for", cond, body)
}

func (ctx *Context) compileWhile(w *ast.WhileLoop) {
	var body []ast.Stmt
	if w.Body != nil {
		body = w.Body.Statements
	}
	ctx.compileLoop("while", w.Cond, body)
}

func (ctx *Context) compileLoop(prefix string, cond *ast.CondExpr, body []ast.Stmt) {
	header := ctx.newBlock(prefix + ".header")
	bodyB := ctx.newBlock(prefix + ".body")
	after := ctx.newBlock(prefix + ".after")

	ctx.moveTo(header)
	if !ctx.branch(cond, bodyB, after) {
		ctx.Block = after
		return
	}

	ctx.Block = bodyB
	ctx.compileBlock(body)
	ctx.moveTo(header)
	ctx.Block = after
}

func (ctx *Context) compileIf(i *ast.IfElse) {
	then := ctx.newBlock("if.then")
	merge := ctx.newBlock("if.merge")
	els := merge
	if i.Else != nil {
		els = ctx.newBlock("if.else")
	}

	if !ctx.branch(i.Cond, then, els) {
		ctx.Block = merge
		return
	}

	ctx.Block = then
	if i.Then != nil {
		ctx.compileBlock(i.Then.Statements)
	}
	ctx.moveTo(merge)

	if i.Else != nil {
		ctx.Block = els
		ctx.compileBlock(i.Else.Statements)
		ctx.moveTo(merge)
	}
	ctx.Block = merge
}

func (ctx *Context) compileGoto(g *ast.GotoBlock) {
	target := ctx.labelBlock(g.Target)
	if g.Cond == nil {
		ctx.NewBr(target)
		// Whatever follows is reachable only through a label.
		ctx.Block = ctx.newBlock("goto.dead")
		return
	}

	next := ctx.newBlock("goto.next")
	ctx.branch(g.Cond, target, next)
	ctx.Block = next
}

func (ctx *Context) compileIO(io *ast.IOBlock) {
	if io.Kind == ast.Read {
		t, ok := io.Expr.(*ast.TargetVar)
		if !ok {
			ctx.errs.Addf(diag.ReadError, "", io.Pos, "read expects a variable")
			return
		}
		addr := ctx.compileAddress(t)
		if addr == nil {
			return
		}
		ctx.NewCall(ctx.scanf, ctx.formatString(valueFormat), addr)
		return
	}

	format := escapeFormat(io.Text)
	args := []value.Value{nil}
	if io.Expr != nil {
		val := ctx.compileExpression(io.Expr)
		if val == nil {
			return
		}
		format += valueFormat
		args = append(args, val)
	}
	if io.Kind == ast.Println {
		format += "\n"
	}
	if format == "" {
		return
	}
	args[0] = ctx.formatString(format)
	ctx.NewCall(ctx.printf, args...)
}

// branch evaluates cond in the current block and terminates it with a
// conditional branch. It reports false when cond could not be lowered; the
// current block is then left to fall through to f.
func (ctx *Context) branch(cond *ast.CondExpr, t, f *ir.Block) bool {
	v := ctx.compileCondition(cond)
	if v == nil {
		ctx.NewBr(f)
		return false
	}
	pred := enum.IPredNE
	if cond.Negated {
		pred = enum.IPredEQ
	}
	test := ctx.NewICmp(pred, v, constant.NewInt(Int, 0))
	ctx.NewCondBr(test, t, f)
	return true
}
