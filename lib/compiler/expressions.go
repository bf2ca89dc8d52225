package compiler

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/diag"
	"github.com/vyPal/flatb/lib/symtab"
)

// compileExpression returns an i64 value, or nil after recording an error.
func (ctx *Context) compileExpression(e ast.MathExpr) value.Value {
	switch n := e.(type) {
	case *ast.Integer:
		return constant.NewInt(Int, n.Value)

	case *ast.TargetVar:
		addr := ctx.compileAddress(n)
		if addr == nil {
			return nil
		}
		var v value.Value = ctx.NewLoad(Int, addr)
		if n.Negate {
			v = ctx.NewSub(constant.NewInt(Int, 0), v)
		}
		return v

	case *ast.UnaryExpr:
		v := ctx.compileExpression(n.Operand)
		if v == nil || n.Op == ast.OpIdentity {
			return v
		}
		return ctx.NewSub(constant.NewInt(Int, 0), v)

	case *ast.BinaryExpr:
		left := ctx.compileExpression(n.Left)
		right := ctx.compileExpression(n.Right)
		if left == nil || right == nil {
			return nil
		}
		switch n.Op {
		case ast.OpAdd:
			return ctx.NewAdd(left, right)
		case ast.OpSub:
			return ctx.NewSub(left, right)
		case ast.OpMul:
			return ctx.NewMul(left, right)
		case ast.OpDiv:
			if c, ok := right.(*constant.Int); ok && c.X.Sign() == 0 {
				ctx.errs.Add(diag.New(diag.DivisionByZero, "", n.Pos))
				return nil
			}
			return ctx.NewSDiv(left, right)
		}
		ctx.errs.Addf(diag.LoweringError, "", n.Pos, "unknown operator %s", n.Op)
		return nil
	}
	ctx.errs.Addf(diag.LoweringError, "", e.Position(), "unknown expression %T", e)
	return nil
}

var predicates = map[ast.Comparator]enum.IPred{
	ast.Greater:      enum.IPredSGT,
	ast.GreaterEqual: enum.IPredSGE,
	ast.Less:         enum.IPredSLT,
	ast.LessEqual:    enum.IPredSLE,
	ast.Equal:        enum.IPredEQ,
	ast.NotEqual:     enum.IPredNE,
}

// compileCondition compares the operands and widens the i1 result to i64.
// Negation is applied by the branch that consumes it.
func (ctx *Context) compileCondition(c *ast.CondExpr) value.Value {
	left := ctx.compileExpression(c.Left)
	right := ctx.compileExpression(c.Right)
	if left == nil || right == nil {
		return nil
	}
	pred, ok := predicates[c.Cmp]
	if !ok {
		ctx.errs.Addf(diag.LoweringError, "", c.Pos, "unknown comparator %s", c.Cmp)
		return nil
	}
	return ctx.NewZExt(ctx.NewICmp(pred, left, right), Int)
}

// compileAddress returns a pointer to the storage of t.
func (ctx *Context) compileAddress(t *ast.TargetVar) value.Value {
	e, ok := ctx.table.Lookup(t.Name)
	if !ok {
		ctx.errs.Add(diag.New(diag.UndeclaredIdentifier, t.Name, t.Pos))
		return nil
	}
	g, ok := ctx.globals[t.Name]
	if !ok || e.Kind == symtab.Label {
		ctx.errs.Addf(diag.KindMismatch, t.Name, t.Pos, "%s has no storage", e.Kind)
		return nil
	}
	if t.IsArray() != (e.Kind == symtab.Array) {
		ctx.errs.Addf(diag.KindMismatch, t.Name, t.Pos, "%s used as %s", e.Kind, targetKind(t))
		return nil
	}
	if !t.IsArray() {
		return g
	}

	index := ctx.compileExpression(t.Index)
	if index == nil {
		return nil
	}
	if ctx.opts.BoundsCheck && !ctx.checkBounds(t, index, e.Size) {
		return nil
	}
	return ctx.NewGetElementPtr(types.NewArray(uint64(e.Size), Int), g, constant.NewInt(Int, 0), index)
}

// checkBounds rejects constant indices outside [0, size) and guards dynamic
// ones with a trap.
func (ctx *Context) checkBounds(t *ast.TargetVar, index value.Value, size int64) bool {
	if c, ok := index.(*constant.Int); ok {
		if i := c.X.Int64(); i < 0 || i >= size {
			ctx.errs.Addf(diag.ArrayIndexOutOfBounds, t.Name, t.Pos, "index %d, length %d", i, size)
			return false
		}
		return true
	}

	fail := ctx.newBlock("bounds.fail")
	ok := ctx.newBlock("bounds.ok")
	out := ctx.NewICmp(enum.IPredUGE, index, constant.NewInt(Int, size))
	ctx.NewCondBr(out, fail, ok)

	fail.NewCall(ctx.trapFunc())
	fail.NewUnreachable()
	ctx.Block = ok
	return true
}

func targetKind(t *ast.TargetVar) symtab.Kind {
	if t.IsArray() {
		return symtab.Array
	}
	return symtab.Scalar
}
