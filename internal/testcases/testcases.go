// Package testcases loads testdata/programs.yaml, the table of Flat-B
// programs shared by the parser, analyzer, interpreter and compiler tests.
package testcases

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// Stage names the pipeline step expected to fail.
const (
	StageParse   = "parse"
	StageAnalyze = "analyze"
	StageRun     = "run"
)

type Case struct {
	Name   string             `yaml:"name"`
	Source string             `yaml:"source"`
	Input  string             `yaml:"input"`
	Output string             `yaml:"output"`
	Vars   map[string][]int64 `yaml:"vars"`
	Error  string             `yaml:"error"`
	Stage  string             `yaml:"stage"`
	Skip   string             `yaml:"skip"`
}

// Fails reports whether the case is expected to fail at or before stage.
func (c Case) Fails(stage string) bool {
	if c.Error == "" {
		return false
	}
	order := map[string]int{StageParse: 0, StageAnalyze: 1, StageRun: 2}
	return order[c.Stage] <= order[stage]
}

type file struct {
	Cases []Case `yaml:"cases"`
}

// Root returns the module root, found by walking up to go.mod.
func Root(tb testing.TB) string {
	tb.Helper()
	dir, err := os.Getwd()
	if err != nil {
		tb.Fatal(err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			tb.Fatal("go.mod not found")
		}
		dir = parent
	}
}

// Load reads every case from testdata/programs.yaml.
func Load(tb testing.TB) []Case {
	tb.Helper()
	data, err := os.ReadFile(filepath.Join(Root(tb), "testdata", "programs.yaml"))
	if err != nil {
		tb.Fatal(err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		tb.Fatal(err)
	}
	return f.Cases
}
