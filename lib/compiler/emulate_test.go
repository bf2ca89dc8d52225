package compiler

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

// emulator executes the main function of a lowered module, with printf and
// scanf backed by in-memory streams. It covers the instruction subset the
// compiler emits.
type emulator struct {
	mem      map[*ir.Global][]int64
	vals     map[value.Value]interface{}
	in       *bufio.Reader
	out      bytes.Buffer
	maxSteps int
}

var (
	errTrap        = errors.New("llvm.trap")
	errUnreachable = errors.New("reached unreachable")
)

type pointer struct {
	g   *ir.Global
	off int64
}

func newEmulator(m *ir.Module, input io.Reader) *emulator {
	e := &emulator{
		mem:      make(map[*ir.Global][]int64),
		vals:     make(map[value.Value]interface{}),
		in:       bufio.NewReader(input),
		maxSteps: 1000000,
	}
	for _, g := range m.Globals {
		switch t := g.ContentType.(type) {
		case *types.IntType:
			e.mem[g] = make([]int64, 1)
		case *types.ArrayType:
			if t.ElemType.Equal(types.I64) {
				e.mem[g] = make([]int64, t.Len)
			}
		}
	}
	return e
}

func (e *emulator) global(m *ir.Module, name string) []int64 {
	for _, g := range m.Globals {
		if g.Name() == name {
			return e.mem[g]
		}
	}
	return nil
}

func asBlock(v value.Value) *ir.Block {
	return v.(*ir.Block)
}

func (e *emulator) run(m *ir.Module) (int64, error) {
	var main *ir.Func
	for _, f := range m.Funcs {
		if f.Name() == "main" {
			main = f
		}
	}
	if main == nil || len(main.Blocks) == 0 {
		return 0, errors.New("no main function")
	}

	block := main.Blocks[0]
	for steps := 0; steps < e.maxSteps; steps++ {
		for _, inst := range block.Insts {
			if err := e.exec(inst); err != nil {
				return 0, errors.Wrapf(err, "block %s", block.Ident())
			}
		}
		switch term := block.Term.(type) {
		case *ir.TermBr:
			block = asBlock(term.Target)
		case *ir.TermCondBr:
			if e.int(term.Cond) != 0 {
				block = asBlock(term.TargetTrue)
			} else {
				block = asBlock(term.TargetFalse)
			}
		case *ir.TermRet:
			return e.int(term.X), nil
		case *ir.TermUnreachable:
			return 0, errUnreachable
		default:
			return 0, errors.Errorf("unsupported terminator %T", term)
		}
	}
	return 0, errors.New("step limit exceeded")
}

func (e *emulator) eval(v value.Value) interface{} {
	switch v := v.(type) {
	case *constant.Int:
		return v.X.Int64()
	case *ir.Global:
		return pointer{g: v}
	case *constant.ExprGetElementPtr:
		indices := make([]value.Value, len(v.Indices))
		for i, idx := range v.Indices {
			indices[i] = idx
		}
		return e.gep(v.Src, indices[0], indices[1:]...)
	}
	return e.vals[v]
}

func (e *emulator) int(v value.Value) int64 {
	return e.eval(v).(int64)
}

func (e *emulator) gep(src value.Value, first value.Value, rest ...value.Value) pointer {
	p := e.eval(src).(pointer)
	if e.int(first) != 0 {
		panic("gep with non-zero leading index")
	}
	for _, idx := range rest {
		p.off += e.int(idx)
	}
	return p
}

func (e *emulator) cell(v value.Value) (*int64, error) {
	p := e.eval(v).(pointer)
	cells := e.mem[p.g]
	if p.off < 0 || p.off >= int64(len(cells)) {
		return nil, errors.Errorf("access to %s[%d] out of range", p.g.Name(), p.off)
	}
	return &cells[p.off], nil
}

func (e *emulator) exec(inst ir.Instruction) error {
	switch inst := inst.(type) {
	case *ir.InstLoad:
		c, err := e.cell(inst.Src)
		if err != nil {
			return err
		}
		e.vals[inst] = *c
	case *ir.InstStore:
		c, err := e.cell(inst.Dst)
		if err != nil {
			return err
		}
		*c = e.int(inst.Src)
	case *ir.InstGetElementPtr:
		e.vals[inst] = e.gep(inst.Src, inst.Indices[0], inst.Indices[1:]...)
	case *ir.InstAdd:
		e.vals[inst] = e.int(inst.X) + e.int(inst.Y)
	case *ir.InstSub:
		e.vals[inst] = e.int(inst.X) - e.int(inst.Y)
	case *ir.InstMul:
		e.vals[inst] = e.int(inst.X) * e.int(inst.Y)
	case *ir.InstSDiv:
		y := e.int(inst.Y)
		if y == 0 {
			return errors.New("sdiv by zero")
		}
		e.vals[inst] = e.int(inst.X) / y
	case *ir.InstICmp:
		e.vals[inst] = icmp(inst.Pred, e.int(inst.X), e.int(inst.Y))
	case *ir.InstZExt:
		e.vals[inst] = e.int(inst.From)
	case *ir.InstCall:
		return e.call(inst)
	default:
		return errors.Errorf("unsupported instruction %T", inst)
	}
	return nil
}

func icmp(pred enum.IPred, x, y int64) int64 {
	var res bool
	switch pred {
	case enum.IPredEQ:
		res = x == y
	case enum.IPredNE:
		res = x != y
	case enum.IPredSGT:
		res = x > y
	case enum.IPredSGE:
		res = x >= y
	case enum.IPredSLT:
		res = x < y
	case enum.IPredSLE:
		res = x <= y
	case enum.IPredUGE:
		res = uint64(x) >= uint64(y)
	default:
		panic(fmt.Sprintf("unsupported predicate %s", pred))
	}
	if res {
		return 1
	}
	return 0
}

func (e *emulator) call(inst *ir.InstCall) error {
	f, ok := inst.Callee.(*ir.Func)
	if !ok {
		return errors.Errorf("indirect call %v", inst.Callee)
	}
	e.vals[inst] = int64(0)

	switch f.Name() {
	case "llvm.trap":
		return errTrap
	case "printf":
		e.out.WriteString(e.format(inst.Args[0], inst.Args[1:]))
	case "scanf":
		var v int64
		if _, err := fmt.Fscan(e.in, &v); err != nil {
			return errors.Wrap(err, "scanf")
		}
		c, err := e.cell(inst.Args[1])
		if err != nil {
			return err
		}
		*c = v
		e.vals[inst] = int64(1)
	default:
		return errors.Errorf("call to unknown function %s", f.Name())
	}
	return nil
}

// format expands the %ld and %% directives of a constant format string.
func (e *emulator) format(fmtPtr value.Value, args []value.Value) string {
	p := e.eval(fmtPtr).(pointer)
	data := p.g.Init.(*constant.CharArray).X
	s := string(bytes.TrimRight(data[p.off:], "\x00"))

	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] != '%':
			b.WriteByte(s[i])
		case i+1 < len(s) && s[i+1] == '%':
			b.WriteByte('%')
			i++
		case i+2 < len(s) && s[i+1:i+3] == "ld":
			b.WriteString(strconv.FormatInt(e.int(args[0]), 10))
			args = args[1:]
			i += 2
		default:
			panic("unsupported format " + s)
		}
	}
	return b.String()
}
