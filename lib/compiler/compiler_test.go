package compiler

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/nalgeon/be"
	"github.com/vyPal/flatb/internal/testcases"
	"github.com/vyPal/flatb/lib/analyzer"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/diag"
	"github.com/vyPal/flatb/lib/interp"
	"github.com/vyPal/flatb/lib/parser"
	"github.com/vyPal/flatb/lib/symtab"
)

func frontend(t *testing.T, src string) (*ast.Program, *symtab.Table) {
	t.Helper()
	prog, err := parser.ParseString("test.fb", src)
	be.Err(t, err, nil)
	tab, err := analyzer.Analyze(prog, analyzer.Options{})
	be.Err(t, err, nil)
	return prog, tab
}

func compile(t *testing.T, src string, opts Options) *Compiler {
	t.Helper()
	prog, tab := frontend(t, src)
	c := NewCompiler(tab, opts)
	be.Err(t, c.Compile(prog), nil)
	return c
}

// execute compiles src and runs the module in the emulator.
func execute(t *testing.T, src, input string) (string, *emulator, *ir.Module) {
	t.Helper()
	c := compile(t, src, Options{BoundsCheck: true})
	e := newEmulator(c.Module, strings.NewReader(input))
	ret, err := e.run(c.Module)
	be.Err(t, err, nil)
	be.Equal(t, ret, int64(0))
	return e.out.String(), e, c.Module
}

func TestModuleText(t *testing.T) {
	c := compile(t, `
declblock { int x, a[5]; }
codeblock { x = 2; a[x] = 7; println "a: ", a[2]; }`, Options{ModuleName: "demo.fb"})
	text := c.Module.String()

	be.True(t, strings.Contains(text, `source_filename = "demo.fb"`))
	be.True(t, strings.Contains(text, "@x = common global i64 0"))
	be.True(t, strings.Contains(text, "@a = common global [5 x i64] zeroinitializer"))
	be.True(t, strings.Contains(text, "declare i32 @printf("))
	be.True(t, strings.Contains(text, "declare i32 @scanf("))
	be.True(t, strings.Contains(text, "define i32 @main()"))
	be.True(t, strings.Contains(text, `c"a: %ld`))
	be.True(t, !strings.Contains(text, "llvm.trap"))
}

func TestEveryBlockTerminated(t *testing.T) {
	c := compile(t, `
declblock { int x; }
codeblock {
	goto skip;
	x = 1;
	skip: if x > 0 { goto skip; } else { x = 2; }
	while x < 10 { x = x + 1; }
}`, Options{})
	for _, f := range c.Module.Funcs {
		for _, b := range f.Blocks {
			be.True(t, b.Term != nil)
		}
	}
}

func TestUnaryMinus(t *testing.T) {
	out, _, m := execute(t, `
declblock { int x; }
codeblock { x = 4; println -x; println -(x + 1); }`, "")
	be.Equal(t, out, "-4\n-5\n")
	be.True(t, strings.Contains(m.String(), "sub i64 0, "))
}

func TestFormatStringsShared(t *testing.T) {
	c := compile(t, `
declblock { int x; }
codeblock { print "v", x; print "v", x; println ""; read x; read x; }`, Options{})
	// "v%ld", "\n" and "%ld"
	be.Equal(t, len(c.strings), 3)
}

func TestReservedNames(t *testing.T) {
	out, e, m := execute(t, `
declblock { int main, printf[2]; }
codeblock { main = 3; printf[1] = main * 2; print "", printf[1]; }`, "")
	be.Equal(t, out, "6")
	be.Equal(t, e.global(m, "main.var")[0], int64(3))
	be.True(t, strings.Contains(m.String(), "@printf.var = common global [2 x i64]"))
}

func TestBoundsCheck(t *testing.T) {
	src := `
declblock { int a[3], i; }
codeblock { i = 3; a[i] = 1; }`

	c := compile(t, src, Options{BoundsCheck: true})
	be.True(t, strings.Contains(c.Module.String(), "call void @llvm.trap()"))
	e := newEmulator(c.Module, strings.NewReader(""))
	_, err := e.run(c.Module)
	be.Err(t, err, errTrap)

	c = compile(t, src, Options{})
	be.True(t, !strings.Contains(c.Module.String(), "llvm.trap"))

	prog, tab := frontend(t, `declblock { int a[3]; } codeblock { a[3] = 1; a[5] = 2; }`)
	err = NewCompiler(tab, Options{BoundsCheck: true}).Compile(prog)
	be.Err(t, err, &diag.Error{Kind: diag.ArrayIndexOutOfBounds, Name: "a"})
	var list diag.List
	be.True(t, asList(err, &list))
	be.Equal(t, list.Len(), 2)
}

func TestConstantDivisionByZero(t *testing.T) {
	prog, tab := frontend(t, `declblock { int x; } codeblock { x = 5 / 0; }`)
	err := NewCompiler(tab, Options{}).Compile(prog)
	be.Err(t, err, diag.DivisionByZero)
}

func TestErrorsAccumulate(t *testing.T) {
	// The table belongs to another program, so every reference is stale.
	_, tab := frontend(t, `declblock { int x; } codeblock { }`)
	prog, err := parser.ParseString("test.fb", `
declblock { int x; }
codeblock { x[1] = 1; z = 2; goto nowhere; }`)
	be.Err(t, err, nil)

	err = NewCompiler(tab, Options{}).Compile(prog)
	var list diag.List
	be.True(t, asList(err, &list))
	be.Equal(t, list.Len(), 3)
	be.Equal(t, list[0].Kind, diag.KindMismatch)
	be.Equal(t, list[1].Kind, diag.UndeclaredIdentifier)
	be.Equal(t, list[2].Kind, diag.UndefinedLabel)
	be.Equal(t, list[2].Name, "nowhere")
}

func asList(err error, list *diag.List) bool {
	l, ok := err.(diag.List)
	if ok {
		*list = l
	}
	return ok
}

// TestMatchesInterpreter runs every accepted program through both back ends
// and compares what they print and what they leave in storage.
func TestMatchesInterpreter(t *testing.T) {
	for _, tc := range testcases.Load(t) {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Skip != "" {
				t.Skip(tc.Skip)
			}
			if tc.Error != "" {
				t.Skip("the back ends report run-time errors differently")
			}

			out, e, m := execute(t, tc.Source, tc.Input)
			be.Equal(t, out, tc.Output)

			prog, tab := frontend(t, tc.Source)
			var want bytes.Buffer
			in := interp.New(tab, interp.Options{Stdin: strings.NewReader(tc.Input), Stdout: &want, MaxSteps: 100000})
			be.Err(t, in.Run(context.Background(), prog), nil)
			be.Equal(t, out, want.String())

			for _, entry := range tab.Entries() {
				if entry.Kind == symtab.Label {
					continue
				}
				be.Equal(t, e.global(m, globalName(entry.Name)), entry.Cells)
			}
			for name, cells := range tc.Vars {
				got := e.global(m, globalName(name))
				be.Equal(t, got[:len(cells)], cells)
			}
		})
	}
}
