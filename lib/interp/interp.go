// Package interp executes a validated Flat-B program directly against the
// storage cells of its symbol table.
package interp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/diag"
	"github.com/vyPal/flatb/lib/symtab"
)

type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	// MaxSteps bounds the number of executed statements. Zero means no limit.
	MaxSteps int64
}

// ErrStepLimit is returned when a run executes more than Options.MaxSteps
// statements.
var ErrStepLimit = errors.New("step limit exceeded")

// Jump is the pending transfer of a goto that the current block could not
// resolve.
type Jump struct {
	Label string
	Pos   lexer.Position
}

type Interpreter struct {
	table *symtab.Table
	opts  Options
	in    *bufio.Reader
	out   *bufio.Writer
	steps int64
}

func New(table *symtab.Table, opts Options) *Interpreter {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Interpreter{
		table: table,
		opts:  opts,
		in:    bufio.NewReader(opts.Stdin),
		out:   bufio.NewWriter(opts.Stdout),
	}
}

// Steps reports how many statements the last run executed.
func (in *Interpreter) Steps() int64 { return in.steps }

// Run zeroes the storage cells and executes the code block of prog.
func (in *Interpreter) Run(ctx context.Context, prog *ast.Program) (err error) {
	in.table.Reset()
	in.steps = 0
	defer func() {
		if ferr := in.out.Flush(); err == nil {
			err = ferr
		}
	}()

	if prog.Code == nil {
		return nil
	}
	jump, err := in.execBlock(ctx, prog.Code)
	if err != nil {
		return err
	}
	if jump != nil {
		return diag.Errorf(diag.GotoOutOfScope, jump.Label, jump.Pos, "no enclosing block holds the label")
	}
	return nil
}

// execBlock runs the statements of b in order. A jump to a label held by b
// resumes at that statement; any other jump is handed to the caller.
func (in *Interpreter) execBlock(ctx context.Context, b *ast.CodeBlock) (*Jump, error) {
	if b == nil {
		return nil, nil
	}
	for i := 0; i < len(b.Statements); i++ {
		jump, err := in.exec(ctx, b.Statements[i])
		if err != nil {
			return nil, err
		}
		if jump == nil {
			continue
		}
		idx := b.IndexOf(jump.Label)
		if idx < 0 {
			return jump, nil
		}
		i = idx - 1
	}
	return nil, nil
}

func (in *Interpreter) exec(ctx context.Context, s ast.Stmt) (*Jump, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in.steps++
	if in.opts.MaxSteps > 0 && in.steps > in.opts.MaxSteps {
		return nil, ErrStepLimit
	}

	switch n := s.(type) {
	case *ast.Assignment:
		_, err := in.assign(n)
		return nil, err

	case *ast.ForLoop:
		return in.execFor(ctx, n)

	case *ast.WhileLoop:
		for {
			ok, err := in.cond(n.Cond)
			if err != nil || !ok {
				return nil, err
			}
			if jump, err := in.execBlock(ctx, n.Body); jump != nil || err != nil {
				return jump, err
			}
		}

	case *ast.IfElse:
		ok, err := in.cond(n.Cond)
		if err != nil {
			return nil, err
		}
		if ok {
			return in.execBlock(ctx, n.Then)
		}
		return in.execBlock(ctx, n.Else)

	case *ast.GotoBlock:
		if n.Cond != nil {
			ok, err := in.cond(n.Cond)
			if err != nil || !ok {
				return nil, err
			}
		}
		return &Jump{Label: n.Target, Pos: n.Pos}, nil

	case *ast.IOBlock:
		return nil, in.io(n)
	}
	return nil, errors.Errorf("%s: unsupported statement %T", s.Position(), s)
}

// execFor re-evaluates the bound before every iteration, so a body that
// changes the bound changes the trip count.
func (in *Interpreter) execFor(ctx context.Context, n *ast.ForLoop) (*Jump, error) {
	if _, err := in.assign(n.Init); err != nil {
		return nil, err
	}
	iter := n.Iterator()
	for {
		cell, err := in.cell(iter)
		if err != nil {
			return nil, err
		}
		bound, err := in.eval(n.Bound)
		if err != nil {
			return nil, err
		}
		if *cell >= bound {
			return nil, nil
		}

		if jump, err := in.execBlock(ctx, n.Body); jump != nil || err != nil {
			return jump, err
		}

		step := int64(1)
		if n.Step != nil {
			if step, err = in.eval(n.Step); err != nil {
				return nil, err
			}
		}
		if cell, err = in.cell(iter); err != nil {
			return nil, err
		}
		*cell += step
	}
}

// assign stores the right hand side into the target and returns the stored
// value, so chained assignments propagate it outwards.
func (in *Interpreter) assign(a *ast.Assignment) (int64, error) {
	var (
		v   int64
		err error
	)
	if a.Chain != nil {
		v, err = in.assign(a.Chain)
	} else {
		v, err = in.eval(a.Value)
	}
	if err != nil {
		return 0, err
	}
	cell, err := in.cell(a.Target)
	if err != nil {
		return 0, err
	}
	*cell = v
	return v, nil
}

func (in *Interpreter) io(n *ast.IOBlock) error {
	if n.Kind == ast.Read {
		t, ok := n.Expr.(*ast.TargetVar)
		if !ok {
			return diag.Errorf(diag.ReadError, "", n.Pos, "read expects a variable")
		}
		cell, err := in.cell(t)
		if err != nil {
			return err
		}
		if err := in.out.Flush(); err != nil {
			return err
		}
		var v int64
		if _, err := fmt.Fscan(in.in, &v); err != nil {
			return diag.Errorf(diag.ReadError, t.Name, n.Pos, "%v", err)
		}
		*cell = v
		return nil
	}

	in.out.WriteString(n.Text)
	if n.Expr != nil {
		v, err := in.eval(n.Expr)
		if err != nil {
			return err
		}
		fmt.Fprint(in.out, v)
	}
	if n.Kind == ast.Println {
		in.out.WriteByte('\n')
	}
	return nil
}

func (in *Interpreter) cond(c *ast.CondExpr) (bool, error) {
	l, err := in.eval(c.Left)
	if err != nil {
		return false, err
	}
	r, err := in.eval(c.Right)
	if err != nil {
		return false, err
	}
	var res bool
	switch c.Cmp {
	case ast.Greater:
		res = l > r
	case ast.GreaterEqual:
		res = l >= r
	case ast.Less:
		res = l < r
	case ast.LessEqual:
		res = l <= r
	case ast.Equal:
		res = l == r
	case ast.NotEqual:
		res = l != r
	}
	return res != c.Negated, nil
}

func (in *Interpreter) eval(e ast.MathExpr) (int64, error) {
	switch n := e.(type) {
	case *ast.Integer:
		return n.Value, nil

	case *ast.TargetVar:
		cell, err := in.cell(n)
		if err != nil {
			return 0, err
		}
		if n.Negate {
			return -*cell, nil
		}
		return *cell, nil

	case *ast.UnaryExpr:
		v, err := in.eval(n.Operand)
		if err != nil {
			return 0, err
		}
		if n.Op == ast.OpNeg {
			return -v, nil
		}
		return v, nil

	case *ast.BinaryExpr:
		l, err := in.eval(n.Left)
		if err != nil {
			return 0, err
		}
		r, err := in.eval(n.Right)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case ast.OpAdd:
			return l + r, nil
		case ast.OpSub:
			return l - r, nil
		case ast.OpMul:
			return l * r, nil
		case ast.OpDiv:
			if r == 0 {
				return 0, diag.New(diag.DivisionByZero, "", n.Pos)
			}
			return l / r, nil
		}
		return 0, errors.Errorf("%s: unsupported operator %s", n.Pos, n.Op)
	}
	return 0, errors.Errorf("unsupported expression %T", e)
}

// cell resolves a scalar or array element to its storage.
func (in *Interpreter) cell(t *ast.TargetVar) (*int64, error) {
	e, ok := in.table.Lookup(t.Name)
	if !ok {
		return nil, diag.New(diag.UndeclaredIdentifier, t.Name, t.Pos)
	}
	switch {
	case e.Kind == symtab.Label:
		return nil, diag.Errorf(diag.KindMismatch, t.Name, t.Pos, "label used as a variable")
	case t.IsArray() != (e.Kind == symtab.Array):
		return nil, diag.Errorf(diag.KindMismatch, t.Name, t.Pos, "%s used as %s", e.Kind, kindOf(t))
	}
	if !t.IsArray() {
		return &e.Cells[0], nil
	}
	i, err := in.eval(t.Index)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= int64(len(e.Cells)) {
		return nil, diag.Errorf(diag.ArrayIndexOutOfBounds, t.Name, t.Pos, "index %d, length %d", i, len(e.Cells))
	}
	return &e.Cells[i], nil
}

func kindOf(t *ast.TargetVar) symtab.Kind {
	if t.IsArray() {
		return symtab.Array
	}
	return symtab.Scalar
}
