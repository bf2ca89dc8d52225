// Package compiler lowers a validated Flat-B program to LLVM IR with llir.
package compiler

import (
	"fmt"
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/diag"
	"github.com/vyPal/flatb/lib/symtab"
)

// Int is the working width of every Flat-B value.
var Int = types.I64

type Options struct {
	// BoundsCheck guards array indexing: constant indices are checked while
	// lowering, dynamic ones trap at run time.
	BoundsCheck bool
	ModuleName  string
}

// Context is the current insertion point. Structured statements move it
// forward to the block where lowering continues.
type Context struct {
	*ir.Block
	*Compiler
}

func NewContext(b *ir.Block, comp *Compiler) *Context {
	return &Context{Block: b, Compiler: comp}
}

type Compiler struct {
	Module  *ir.Module
	Context *Context

	table   *symtab.Table
	opts    Options
	globals map[string]*ir.Global
	labels  map[string]*ir.Block
	placed  map[string]bool
	strings map[string]*ir.Global
	printf  *ir.Func
	scanf   *ir.Func
	trap    *ir.Func
	names   int
	errs    diag.List
}

func NewCompiler(table *symtab.Table, opts Options) *Compiler {
	m := ir.NewModule()
	m.SourceFilename = opts.ModuleName
	return &Compiler{
		Module:  m,
		table:   table,
		opts:    opts,
		globals: make(map[string]*ir.Global),
		labels:  make(map[string]*ir.Block),
		placed:  make(map[string]bool),
		strings: make(map[string]*ir.Global),
	}
}

// Compile lowers prog into c.Module. When it returns an error the module is
// incomplete and must not be emitted.
func (c *Compiler) Compile(prog *ast.Program) error {
	c.declareRuntime()
	if prog.Decls != nil {
		c.compileDeclarations(prog.Decls)
	}

	fn := c.Module.NewFunc("main", types.I32)
	c.Context = NewContext(fn.NewBlock(""), c)
	if prog.Code != nil {
		c.Context.compileBlock(prog.Code.Statements)
	}
	if c.Context.Term == nil {
		c.Context.NewRet(constant.NewInt(types.I32, 0))
	}
	for _, b := range fn.Blocks {
		if b.Term == nil {
			b.NewUnreachable()
		}
	}

	var missing []string
	for name := range c.labels {
		if !c.placed[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		c.errs.Addf(diag.UndefinedLabel, name, prog.Pos, "goto target is never declared")
	}
	return c.errs.Err()
}

func (c *Compiler) declareRuntime() {
	c.printf = c.Module.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	c.printf.Sig.Variadic = true
	c.scanf = c.Module.NewFunc("scanf", types.I32, ir.NewParam("format", types.I8Ptr))
	c.scanf.Sig.Variadic = true
}

// trapFunc declares llvm.trap on first use.
func (c *Compiler) trapFunc() *ir.Func {
	if c.trap == nil {
		c.trap = c.Module.NewFunc("llvm.trap", types.Void)
	}
	return c.trap
}

func (c *Compiler) compileDeclarations(d *ast.DeclBlock) {
	for _, ds := range d.Statements {
		for _, v := range ds.Variables {
			if _, ok := c.table.Lookup(v.Name); !ok {
				c.errs.Addf(diag.UndeclaredIdentifier, v.Name, v.Pos, "missing from the symbol table")
				continue
			}
			if _, ok := c.globals[v.Name]; ok {
				c.errs.Addf(diag.DuplicateDeclaration, v.Name, v.Pos, "already lowered")
				continue
			}

			var init constant.Constant = constant.NewInt(Int, 0)
			if v.IsArray {
				if v.Length < 1 {
					c.errs.Addf(diag.InvalidArraySize, v.Name, v.Pos, "length %d", v.Length)
					continue
				}
				init = constant.NewZeroInitializer(types.NewArray(uint64(v.Length), Int))
			}
			g := c.Module.NewGlobalDef(globalName(v.Name), init)
			g.Linkage = enum.LinkageCommon
			c.globals[v.Name] = g
		}
	}
}

// reserved holds the symbols the runtime itself defines.
var reserved = map[string]bool{"main": true, "printf": true, "scanf": true}

func globalName(name string) string {
	if reserved[name] {
		return name + ".var"
	}
	return name
}

// newBlock appends a block named prefix.N to the current function.
func (ctx *Context) newBlock(prefix string) *ir.Block {
	ctx.names++
	return ctx.Block.Parent.NewBlock(fmt.Sprintf("%s.%d", prefix, ctx.names))
}

// labelBlock returns the block for a label, creating it on first reference.
func (ctx *Context) labelBlock(name string) *ir.Block {
	if b, ok := ctx.labels[name]; ok {
		return b
	}
	b := ctx.Block.Parent.NewBlock(name)
	ctx.labels[name] = b
	return b
}

// moveTo closes the current block with a branch to b unless it is already
// terminated, and continues lowering in b.
func (ctx *Context) moveTo(b *ir.Block) {
	if ctx.Term == nil {
		ctx.NewBr(b)
	}
	ctx.Block = b
}
