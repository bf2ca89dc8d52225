package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"github.com/vyPal/flatb/lib/project"
	"github.com/vyPal/flatb/util"
)

func init() {
	commands = append(commands, &cli.Command{
		Name:      "init",
		Usage:     "Initialize a new Flat-B project",
		Category:  "project",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Use the default configuration without prompting",
			},
		},
		Action: initProject,
	})
}

const helloWorld = `declblock {
	int i;
}
codeblock {
	for i = 0, 3 {
		println "Hello, world! ", i;
	}
}
`

func initProject(c *cli.Context) error {
	rootDir := c.Args().First()
	if rootDir == "" {
		rootDir = "."
	}
	yes := c.Bool("yes")

	if files, err := os.ReadDir(rootDir); err == nil {
		if len(files) > 0 && !yes && !util.PromptYN("The directory is not empty, continue?", false) {
			return nil
		}
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(rootDir, 0755); err != nil {
			return fail(err)
		}
		fmt.Fprintln(c.App.Writer, "Created directory:", rootDir)
	} else {
		return fail(err)
	}

	conf := project.Conf{}
	name, _ := filepath.Abs(rootDir)
	conf.CreateDefault(filepath.Base(name))
	conf.Requires = ">=" + Version

	if !yes && !util.PromptYN("Use default configuration?", true) {
		conf.Name = util.PromptString("Project name", conf.Name)
		conf.Description = util.PromptString("Project description", conf.Description)
		conf.Version = util.PromptString("Project version", conf.Version)
		conf.Main = util.PromptString("Main file", conf.Main)
		conf.Author = util.PromptString("Author", conf.Author)
		conf.Compiler.Output = util.PromptString("Binary name", conf.Compiler.Output)
	}
	if _, err := util.Parse(conf.Version); err != nil {
		return fail(err)
	}

	mainFile := filepath.Join(rootDir, conf.Main)
	if _, err := os.Stat(mainFile); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(mainFile), 0755); err != nil {
			return fail(err)
		}
		if err := os.WriteFile(mainFile, []byte(helloWorld), 0644); err != nil {
			return fail(err)
		}
		fmt.Fprintln(c.App.Writer, "Created file:", mainFile)
	}

	confFile := filepath.Join(rootDir, project.FileName)
	written, err := conf.Save(confFile, yes)
	if err != nil {
		return fail(err)
	}
	if written {
		fmt.Fprintln(c.App.Writer, "Created file:", confFile)
	}

	fmt.Fprintln(c.App.Writer, "----------------------------------------")
	fmt.Fprintln(c.App.Writer, "Project initialized successfully!")
	fmt.Fprintln(c.App.Writer, "Run 'cd", rootDir, "&& flatb build' to build the project.")
	fmt.Fprintln(c.App.Writer, "----------------------------------------")
	return nil
}
