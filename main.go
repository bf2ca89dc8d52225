package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/vyPal/flatb/lib/parser"
)

// Version is the compiler version checked against a project's requires.
const Version = "0.3.0"

var commands []*cli.Command

func newApp() *cli.App {
	return &cli.App{
		Name:                   "flatb",
		Usage:                  "Check, interpret and compile Flat-B programs",
		Version:                Version,
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name: "ebnf",
				Usage: "Print the EBNF grammar for Flat-B. " +
					"Useful for debugging the parser.",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log build progress to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			log.SetPrefix("[flatb] ")
			log.SetFlags(0)
			if !c.Bool("verbose") {
				log.SetOutput(io.Discard)
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.Bool("ebnf") {
				fmt.Fprintln(c.App.Writer, parser.Grammar())
				return nil
			}
			return cli.ShowAppHelp(c)
		},
		Commands: commands,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%s", err))
		os.Exit(1)
	}
}
