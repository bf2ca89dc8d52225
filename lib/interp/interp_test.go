package interp

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"github.com/vyPal/flatb/internal/testcases"
	"github.com/vyPal/flatb/lib/analyzer"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/diag"
	"github.com/vyPal/flatb/lib/parser"
	"github.com/vyPal/flatb/lib/symtab"
)

func load(t *testing.T, src string) (*ast.Program, *symtab.Table) {
	t.Helper()
	prog, err := parser.ParseString("test.fb", src)
	be.Err(t, err, nil)
	tab, err := analyzer.Analyze(prog, analyzer.Options{})
	be.Err(t, err, nil)
	return prog, tab
}

func run(t *testing.T, src, input string) (string, *symtab.Table, error) {
	t.Helper()
	prog, tab := load(t, src)
	var out bytes.Buffer
	err := New(tab, Options{Stdin: strings.NewReader(input), Stdout: &out, MaxSteps: 100000}).Run(context.Background(), prog)
	return out.String(), tab, err
}

func value(t *testing.T, tab *symtab.Table, name string, i int64) int64 {
	t.Helper()
	v, ok := tab.Value(name, i)
	be.True(t, ok)
	return v
}

func TestArithmetic(t *testing.T) {
	_, tab, err := run(t, `declblock { int x; } codeblock { x = 3 + 4 * 2; }`, "")
	be.Err(t, err, nil)
	be.Equal(t, value(t, tab, "x", 0), int64(11))
}

func TestGotoSkipsStatement(t *testing.T) {
	out, _, err := run(t, `codeblock { goto done; print "skipped"; done: print "here"; }`, "")
	be.Err(t, err, nil)
	be.Equal(t, out, "here")
}

func TestForBoundReevaluated(t *testing.T) {
	_, tab, err := run(t, `
declblock { int i, n, iterations; }
codeblock {
	n = 5;
	for i = 0, n { n = n - 1; iterations = iterations + 1; }
}`, "")
	be.Err(t, err, nil)
	be.Equal(t, value(t, tab, "iterations", 0), int64(3))
	be.Equal(t, value(t, tab, "n", 0), int64(2))
}

func TestForOverArrayElement(t *testing.T) {
	_, tab, err := run(t, `
declblock { int c[2], s; }
codeblock { for c[1] = 2, 5 { s = s + c[1]; } }`, "")
	be.Err(t, err, nil)
	be.Equal(t, value(t, tab, "s", 0), int64(2+3+4))
	be.Equal(t, value(t, tab, "c", 1), int64(5))
}

func TestGotoScoping(t *testing.T) {
	// The label is in an enclosing block: the jump unwinds the loop.
	out, _, err := run(t, `
declblock { int i; }
codeblock {
	while 0 < 1 {
		i = i + 1;
		if i == 4 { goto out; }
	}
	out: println i;
}`, "")
	be.Err(t, err, nil)
	be.Equal(t, out, "4\n")

	// The label is in a sibling block.
	_, _, err = run(t, `
declblock { int x; }
codeblock {
	if x == 1 { there: x = 2; }
	if x == 0 { goto there; }
}`, "")
	be.Err(t, err, &diag.Error{Kind: diag.GotoOutOfScope, Name: "there"})
}

func TestRuntimeErrors(t *testing.T) {
	_, _, err := run(t, `declblock { int a, b; } codeblock { a = 7 / (b - b); }`, "")
	be.Err(t, err, diag.DivisionByZero)

	_, _, err = run(t, `declblock { int a[5]; } codeblock { a[0] = 1; a[6] = 2; }`, "")
	be.Err(t, err, &diag.Error{Kind: diag.ArrayIndexOutOfBounds, Name: "a"})

	_, _, err = run(t, `declblock { int a[5]; } codeblock { a[-1] = 2; }`, "")
	be.Err(t, err, diag.ArrayIndexOutOfBounds)

	_, _, err = run(t, `declblock { int a; } codeblock { read a; }`, "")
	be.Err(t, err, diag.ReadError)
}

func TestStepLimit(t *testing.T) {
	prog, tab := load(t, `codeblock { top: goto top; }`)
	in := New(tab, Options{Stdout: &bytes.Buffer{}, MaxSteps: 50})
	be.Err(t, in.Run(context.Background(), prog), ErrStepLimit)
	be.Equal(t, in.Steps(), int64(51))
}

func TestCancel(t *testing.T) {
	prog, tab := load(t, `codeblock { top: goto top; }`)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := New(tab, Options{Stdout: &bytes.Buffer{}}).Run(ctx, prog)
	be.Err(t, err, context.DeadlineExceeded)
}

func TestRunResetsStorage(t *testing.T) {
	prog, tab := load(t, `declblock { int x; } codeblock { x = x + 1; println x; }`)
	var out bytes.Buffer
	in := New(tab, Options{Stdout: &out})
	be.Err(t, in.Run(context.Background(), prog), nil)
	be.Err(t, in.Run(context.Background(), prog), nil)
	be.Equal(t, out.String(), "1\n1\n")
}

func TestProgramTable(t *testing.T) {
	for _, tc := range testcases.Load(t) {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Skip != "" {
				t.Skip(tc.Skip)
			}
			if tc.Fails(testcases.StageAnalyze) {
				t.Skip("rejected before run")
			}
			out, tab, err := run(t, tc.Source, tc.Input)
			if tc.Fails(testcases.StageRun) {
				be.Err(t, err, tc.Error)
				return
			}
			be.Err(t, err, nil)
			be.Equal(t, out, tc.Output)
			for name, cells := range tc.Vars {
				for i, want := range cells {
					be.Equal(t, value(t, tab, name, int64(i)), want)
				}
			}
		})
	}
}
