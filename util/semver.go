package util

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Semver struct {
	Major      int
	Minor      int
	Patch      int
	Beta       bool
	Alpha      bool
	Prerelease int
}

// Parse reads MAJOR.MINOR.PATCH with an optional -alpha.N or -beta.N suffix.
// Missing minor or patch numbers default to zero.
func Parse(semver string) (Semver, error) {
	s := Semver{}
	version, pre, hasPre := strings.Cut(strings.TrimPrefix(strings.TrimSpace(semver), "v"), "-")

	split := strings.Split(version, ".")
	if len(split) > 3 {
		return Semver{}, errors.Errorf("invalid version: %q", semver)
	}
	nums := [3]int{}
	for i, part := range split {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Semver{}, errors.Errorf("invalid version: %q", semver)
		}
		nums[i] = n
	}
	s.Major, s.Minor, s.Patch = nums[0], nums[1], nums[2]

	if hasPre {
		kind, num, _ := strings.Cut(pre, ".")
		switch kind {
		case "beta":
			s.Beta = true
		case "alpha":
			s.Alpha = true
		default:
			return Semver{}, errors.Errorf("invalid prerelease type: %s", pre)
		}
		if num != "" {
			n, err := strconv.Atoi(num)
			if err != nil {
				return Semver{}, errors.Wrapf(err, "prerelease of %q", semver)
			}
			s.Prerelease = n
		}
	}

	return s, nil
}

func (s Semver) String() string {
	str := strconv.Itoa(s.Major) + "." + strconv.Itoa(s.Minor) + "." + strconv.Itoa(s.Patch)
	if s.Beta {
		str += "-beta." + strconv.Itoa(s.Prerelease)
	} else if s.Alpha {
		str += "-alpha." + strconv.Itoa(s.Prerelease)
	}
	return str
}

// rank orders alpha before beta before a release.
func (s Semver) rank() int {
	switch {
	case s.Alpha:
		return 0
	case s.Beta:
		return 1
	}
	return 2
}

// Compare returns -1, 0 or 1.
func (s Semver) Compare(o Semver) int {
	a := [...]int{s.Major, s.Minor, s.Patch, s.rank(), s.Prerelease}
	b := [...]int{o.Major, o.Minor, o.Patch, o.rank(), o.Prerelease}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Satisfies checks s against a constraint: an exact version, or one prefixed
// by >, >=, <, <=, ~ (same minor) or ^ (same major). An empty constraint
// matches everything.
func (s Semver) Satisfies(cmp string) (bool, error) {
	cmp = strings.TrimSpace(cmp)
	if cmp == "" || cmp == "*" {
		return true, nil
	}

	op := ""
	for _, prefix := range []string{">=", "<=", ">", "<", "~", "^", "="} {
		if strings.HasPrefix(cmp, prefix) {
			op = prefix
			cmp = strings.TrimSpace(cmp[len(prefix):])
			break
		}
	}

	c, err := Parse(cmp)
	if err != nil {
		return false, err
	}

	d := s.Compare(c)
	switch op {
	case ">":
		return d > 0, nil
	case ">=":
		return d >= 0, nil
	case "<":
		return d < 0, nil
	case "<=":
		return d <= 0, nil
	case "~":
		return d >= 0 && s.Major == c.Major && s.Minor == c.Minor, nil
	case "^":
		return d >= 0 && s.Major == c.Major, nil
	}
	return d == 0, nil
}
