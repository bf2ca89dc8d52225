// Package project reads and writes flatb.yaml project files.
package project

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/vyPal/flatb/util"
	"gopkg.in/yaml.v3"
)

// FileName is the project file looked up in a project directory.
const FileName = "flatb.yaml"

type Conf struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Version     string       `yaml:"version"`
	Main        string       `yaml:"main"`
	Requires    string       `yaml:"requires,omitempty"`
	BoundsCheck *bool        `yaml:"bounds_check,omitempty"`
	Author      string       `yaml:"author,omitempty"`
	Compiler    ConfCompiler `yaml:"compiler"`
}

type ConfCompiler struct {
	ClangFlags string `yaml:"clang_flags,omitempty"`
	LLCFlags   string `yaml:"llc_flags,omitempty"`
	Output     string `yaml:"output,omitempty"`
}

func (c *Conf) CreateDefault(name string) {
	if name == "." || name == "" {
		name = "NewProject"
	}
	check := true
	c.Name = name
	c.Description = "A new Flat-B project"
	c.Version = "1.0.0"
	c.Main = "src/main.fb"
	c.BoundsCheck = &check
	c.Author = "Anonymous"
	c.Compiler.Output = name
}

// BoundsChecked reports the bounds_check setting, which defaults to on.
func (c *Conf) BoundsChecked() bool {
	return c.BoundsCheck == nil || *c.BoundsCheck
}

// Save writes the configuration to path. An existing file is replaced only
// when overwrite is set or the user confirms. It reports whether it wrote.
func (c *Conf) Save(path string, overwrite bool) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		if !overwrite && !util.PromptYN(path+" already exists. Overwrite?", false) {
			return false, nil
		}
	}

	yml, err := yaml.Marshal(c)
	if err != nil {
		return false, errors.Wrap(err, "encoding project file")
	}
	if err := os.WriteFile(path, yml, 0644); err != nil {
		return false, errors.Wrap(err, "writing project file")
	}
	return true, nil
}

// CheckRequires verifies that the running compiler version satisfies the
// project's requires constraint.
func (c *Conf) CheckRequires(version string) error {
	if c.Requires == "" {
		return nil
	}
	v, err := util.Parse(version)
	if err != nil {
		return errors.Wrap(err, "compiler version")
	}
	ok, err := v.Satisfies(c.Requires)
	if err != nil {
		return errors.Wrapf(err, "requires %q", c.Requires)
	}
	if !ok {
		return errors.Errorf("project %s requires flatb %s, have %s", c.Name, c.Requires, version)
	}
	return nil
}

// GetConf loads flatb.yaml from dir.
func GetConf(dir string) (Conf, error) {
	var conf Conf

	file, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		return Conf{}, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&conf); err != nil {
		return Conf{}, errors.Wrapf(err, "parsing %s", FileName)
	}
	if conf.Main == "" {
		return Conf{}, errors.Errorf("%s: main is not set", FileName)
	}

	return conf, nil
}
