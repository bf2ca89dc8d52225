package main

import (
	"bytes"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/vyPal/flatb/lib/cache"
	"github.com/vyPal/flatb/lib/compiler"
	"github.com/vyPal/flatb/lib/project"
)

func init() {
	compileFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "The path to the project file or its directory",
			Aliases: []string{"c"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "The name for the built file",
		},
		&cli.BoolFlag{
			Name:  "no-bounds-check",
			Usage: "Emit unchecked array indexing",
		},
		&cli.BoolFlag{
			Name:    "no-cache",
			Aliases: []string{"n"},
			Usage:   "Disables caching",
		},
	}
	linkFlags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "clang-args",
			Aliases: []string{"a"},
			Usage: "Pass additional arguments to clang. " +
				"Useful for passing flags like -O2 or -g.",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "Keep the intermediate .ll file next to the binary",
			Aliases: []string{"d"},
		},
	}

	commands = append(commands, &cli.Command{
		Name:      "emit",
		Usage:     "Write the LLVM IR of a Flat-B file",
		Category:  "compile",
		ArgsUsage: "[file]",
		Flags:     compileFlags,
		Action:    emit,
	}, &cli.Command{
		Name:      "build",
		Usage:     "Build a Flat-B file into a native binary",
		Category:  "compile",
		ArgsUsage: "[file]",
		Flags:     append(append([]cli.Flag{}, compileFlags...), linkFlags...),
		Action:    build,
	}, &cli.Command{
		Name:      "run",
		Usage:     "Build and run a Flat-B file",
		Category:  "compile",
		ArgsUsage: "[file]",
		Flags:     append(append([]cli.Flag{}, compileFlags...), linkFlags...),
		Action:    run,
	})
}

// target collects what a compile command works on, merged from the command
// line and flatb.yaml.
type target struct {
	file        string
	output      string
	boundsCheck bool
	clangArgs   []string
	noCache     bool
}

func resolveTarget(c *cli.Context) (*target, error) {
	t := &target{
		file:        c.Args().First(),
		output:      c.String("output"),
		boundsCheck: true,
		noCache:     c.Bool("no-cache"),
	}

	if t.file == "" {
		dir := c.String("config")
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, cli.Exit(color.RedString("Error getting current working directory: %s", err), 1)
			}
			dir = cwd
		}
		dir = strings.TrimSuffix(dir, project.FileName)

		conf, err := project.GetConf(dir)
		if err != nil {
			return nil, fail(err)
		}
		if err := conf.CheckRequires(Version); err != nil {
			return nil, fail(err)
		}
		log.Printf("project %s %s", conf.Name, conf.Version)

		t.file = filepath.Join(dir, conf.Main)
		t.boundsCheck = conf.BoundsChecked()
		t.clangArgs = strings.Fields(conf.Compiler.ClangFlags)
		if t.output == "" && conf.Compiler.Output != "" {
			t.output = filepath.Join(dir, conf.Compiler.Output)
		}
	}

	if c.Bool("no-bounds-check") {
		t.boundsCheck = false
	}
	t.clangArgs = append(t.clangArgs, c.StringSlice("clang-args")...)
	return t, nil
}

// lower returns the textual IR for t, from the cache when possible.
func lower(t *target) ([]byte, error) {
	src, err := os.ReadFile(t.file)
	if err != nil {
		return nil, errors.Wrap(err, "reading source")
	}

	var ic *cache.Cache
	key := cache.Key(src, Version, "bounds="+strconv.FormatBool(t.boundsCheck))
	if !t.noCache {
		if ic, err = cache.Open(""); err != nil {
			color.Yellow("Warning: cache disabled: %s", err)
		} else if p, ok := ic.Lookup(key); ok {
			log.Printf("using cached IR %s", p)
			return os.ReadFile(p)
		}
	}

	prog, table, err := frontend(t.file, src, nil)
	if err != nil {
		return nil, err
	}

	log.Printf("lowering %s", t.file)
	comp := compiler.NewCompiler(table, compiler.Options{
		BoundsCheck: t.boundsCheck,
		ModuleName:  filepath.Base(t.file),
	})
	if err := comp.Compile(prog); err != nil {
		return nil, err
	}
	ir := []byte(comp.Module.String())

	if ic != nil {
		if p, err := ic.Store(key, ir); err != nil {
			color.Yellow("Warning: %s", err)
		} else {
			log.Printf("cached IR at %s", p)
		}
	}
	return ir, nil
}

func emit(c *cli.Context) error {
	t, err := resolveTarget(c)
	if err != nil {
		return err
	}
	ir, err := lower(t)
	if err != nil {
		return fail(err)
	}
	// flatb.yaml names the binary, not the IR file.
	out := c.String("output")
	if out == "" {
		_, err = c.App.Writer.Write(ir)
		return err
	}
	if err := os.WriteFile(out, ir, 0644); err != nil {
		return fail(err)
	}
	return nil
}

func defaultOutput(file string) string {
	out := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	return out
}

func build(c *cli.Context) error {
	t, err := resolveTarget(c)
	if err != nil {
		return err
	}
	if t.output == "" {
		t.output = defaultOutput(t.file)
	}

	ir, err := lower(t)
	if err != nil {
		return fail(err)
	}

	tmpDir, err := os.MkdirTemp("", "flatb")
	if err != nil {
		return fail(err)
	}
	defer os.RemoveAll(tmpDir)

	llFile := filepath.Join(tmpDir, "output.ll")
	if c.Bool("debug") {
		llFile = strings.TrimSuffix(t.output, filepath.Ext(t.output)) + ".ll"
	}
	if err := os.WriteFile(llFile, ir, 0644); err != nil {
		return fail(err)
	}

	args := append([]string{"-Wno-override-module", llFile, "-o", t.output}, t.clangArgs...)
	log.Printf("clang %s", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.Command("clang", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return cli.Exit(color.RedString("Error linking: %s\n%s", err, stderr.String()), 1)
	}
	return nil
}

func run(c *cli.Context) error {
	if err := build(c); err != nil {
		return err
	}

	t, err := resolveTarget(c)
	if err != nil {
		return err
	}
	out := t.output
	if out == "" {
		out = defaultOutput(t.file)
	}
	if !filepath.IsAbs(out) {
		out = "." + string(filepath.Separator) + out
	}

	cmd := exec.Command(out)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return cli.Exit(color.RedString("Error running binary: %s", err), 1)
	}
	return nil
}
