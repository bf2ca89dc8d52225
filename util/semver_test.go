package util

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParse(t *testing.T) {
	s, err := Parse("v1.2.3-beta.4")
	be.Err(t, err, nil)
	be.Equal(t, s, Semver{Major: 1, Minor: 2, Patch: 3, Beta: true, Prerelease: 4})
	be.Equal(t, s.String(), "1.2.3-beta.4")

	s, err = Parse("2")
	be.Err(t, err, nil)
	be.Equal(t, s.String(), "2.0.0")

	_, err = Parse("1.2.3.4")
	be.Err(t, err, "invalid version")
	_, err = Parse("1.x")
	be.Err(t, err, "invalid version")
	_, err = Parse("1.0.0-rc.1")
	be.Err(t, err, "invalid prerelease")
}

func TestCompare(t *testing.T) {
	order := []string{"0.9.9", "1.0.0-alpha.1", "1.0.0-alpha.2", "1.0.0-beta.1", "1.0.0", "1.0.1", "1.1.0"}
	for i := 1; i < len(order); i++ {
		a, _ := Parse(order[i-1])
		b, _ := Parse(order[i])
		be.Equal(t, a.Compare(b), -1)
		be.Equal(t, b.Compare(a), 1)
		be.Equal(t, b.Compare(b), 0)
	}
}

func TestSatisfies(t *testing.T) {
	v, _ := Parse("0.3.0")
	tests := []struct {
		cmp  string
		want bool
	}{
		{"", true},
		{"*", true},
		{"0.3.0", true},
		{"=0.3.1", false},
		{">=0.3.0", true},
		{"> 0.3.0", false},
		{"<0.4", true},
		{"<=0.2.9", false},
		{"~0.3.0", true},
		{"~0.2.0", false},
		{"^0.1.0", true},
		{"^1.0.0", false},
	}
	for _, tt := range tests {
		got, err := v.Satisfies(tt.cmp)
		be.Err(t, err, nil)
		if got != tt.want {
			t.Errorf("Satisfies(%q) = %v, want %v", tt.cmp, got, tt.want)
		}
	}

	_, err := v.Satisfies(">=banana")
	be.Err(t, err)
}
