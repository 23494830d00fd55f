package github

import (
	"strconv"
	"strings"
)

// CompareVersions is a loose segment comparator, not strict SemVer: segments
// split on dots/dashes/underscores, numeric segments compared numerically,
// anything else lexically, missing segments treated as zero. Pre-release
// qualifiers get no special handling, matching the long-standing update-check
// behavior.
func CompareVersions(a, b string) int {
	as := splitVersion(a)
	bs := splitVersion(b)

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := "0", "0"
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}

		ai, aNum := atoi(av)
		bi, bNum := atoi(bv)
		switch {
		case aNum && bNum:
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
		default:
			if c := strings.Compare(av, bv); c != 0 {
				return c
			}
		}
	}
	return 0
}

// HasUpdate reports whether remote is strictly newer than current.
func HasUpdate(current, remote string) bool {
	return CompareVersions(remote, current) > 0
}

func splitVersion(v string) []string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.TrimPrefix(v, "v")
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-' || r == '_' || r == '+'
	})
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
