package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/vyPal/flatb/lib/analyzer"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/vyPal/flatb/lib/interp"
	"github.com/vyPal/flatb/lib/parser"
	"github.com/vyPal/flatb/lib/symtab"
)

func init() {
	commands = append(commands, &cli.Command{
		Name:      "check",
		Usage:     "Parse and validate a Flat-B file",
		Category:  "analyze",
		ArgsUsage: "<file>",
		Action:    check,
	}, &cli.Command{
		Name:      "dump",
		Usage:     "Write the XML structure of a Flat-B file",
		Category:  "analyze",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the dump to a file instead of stdout",
			},
		},
		Action: dump,
	}, &cli.Command{
		Name:      "interpret",
		Aliases:   []string{"i"},
		Usage:     "Run a Flat-B file with the tree-walking interpreter",
		Category:  "run",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "max-steps",
				Usage: "Abort after executing this many statements (0 disables the limit)",
			},
		},
		Action: interpret,
	})
}

// source returns the file named by the first argument.
func source(c *cli.Context) (string, error) {
	f := c.Args().First()
	if f == "" {
		return "", cli.Exit(color.RedString("Error: No file specified"), 1)
	}
	return f, nil
}

// frontend parses src and runs the declaration pass, optionally dumping the
// program structure to dump.
func frontend(filename string, src []byte, dump io.Writer) (*ast.Program, *symtab.Table, error) {
	log.Printf("parsing %s", filename)
	prog, err := parser.ParseBytes(filename, src)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("analyzing %s", filename)
	table, err := analyzer.Analyze(prog, analyzer.Options{Dump: dump})
	if err != nil {
		return nil, nil, err
	}
	return prog, table, nil
}

func load(filename string, dump io.Writer) (*ast.Program, *symtab.Table, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading source")
	}
	return frontend(filename, src, dump)
}

func fail(err error) error {
	return cli.Exit(color.RedString("Error: %s", err), 1)
}

func check(c *cli.Context) error {
	f, err := source(c)
	if err != nil {
		return err
	}
	prog, table, err := load(f, nil)
	if err != nil {
		return fail(err)
	}
	stmts := 0
	ast.Inspect(prog, func(n ast.Node) bool {
		if _, ok := n.(ast.Stmt); ok {
			stmts++
		}
		return true
	})
	log.Printf("%d statements, %d symbols", stmts, table.Len())
	color.New(color.FgGreen).Fprintln(c.App.Writer, "ok")
	return nil
}

func dump(c *cli.Context) error {
	f, err := source(c)
	if err != nil {
		return err
	}

	// The dump streams while the pass runs; an invalid program leaves a
	// truncated document behind its diagnostic.
	w := c.App.Writer
	if out := c.String("output"); out != "" {
		file, err := os.Create(out)
		if err != nil {
			return fail(err)
		}
		defer file.Close()
		w = file
	}

	if _, _, err := load(f, w); err != nil {
		return fail(err)
	}
	return nil
}

func interpret(c *cli.Context) error {
	f, err := source(c)
	if err != nil {
		return err
	}
	prog, table, err := load(f, nil)
	if err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	in := interp.New(table, interp.Options{
		Stdin:    os.Stdin,
		Stdout:   c.App.Writer,
		MaxSteps: c.Int64("max-steps"),
	})
	err = in.Run(ctx, prog)
	log.Printf("executed %d statements", in.Steps())
	if errors.Is(err, context.Canceled) {
		color.Yellow("interrupted")
		return cli.Exit("", 130)
	}
	if err != nil {
		return fail(err)
	}
	return nil
}
