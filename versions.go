package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/vyPal/flatb/lib/cache"
	"github.com/vyPal/flatb/lib/project"
)

func init() {
	commands = append(commands, &cli.Command{
		Name:     "version",
		Usage:    "Print the compiler version and check the project's requirement",
		Category: "version",
		Action:   version,
	}, &cli.Command{
		Name:     "cache",
		Usage:    "Manage the emitted IR cache",
		Category: "version",
		Subcommands: []*cli.Command{
			{
				Name:   "dir",
				Usage:  "Print the cache directory",
				Action: cacheDir,
			},
			{
				Name:   "clean",
				Usage:  "Remove every cached file",
				Action: cacheClean,
			},
		},
	})
}

func version(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "flatb %s (%s/%s, %s)\n", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())

	conf, err := project.GetConf(".")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		color.Yellow("Warning: %s", err)
		return nil
	}
	if err := conf.CheckRequires(Version); err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.App.Writer, "project %s requires %q: satisfied\n", conf.Name, conf.Requires)
	return nil
}

func cacheDir(c *cli.Context) error {
	ic, err := cache.Open("")
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(c.App.Writer, ic.Dir)
	return nil
}

func cacheClean(c *cli.Context) error {
	ic, err := cache.Open("")
	if err != nil {
		return fail(err)
	}
	n, err := ic.Clean()
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.App.Writer, "removed %d cached files\n", n)
	return nil
}
