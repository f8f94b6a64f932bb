package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Compare orders two major.minor.patch versions, returning 1, 0 or -1.
// A leading v and a pre-release suffix are accepted, a pre-release sorts
// before the release it precedes.
func Compare(a, b string) (int, error) {
	av, apre, err := parse(a)
	if err != nil {
		return 0, err
	}
	bv, bpre, err := parse(b)
	if err != nil {
		return 0, err
	}

	for i := range av {
		switch {
		case av[i] > bv[i]:
			return 1, nil
		case av[i] < bv[i]:
			return -1, nil
		}
	}

	switch {
	case apre == bpre:
		return 0, nil
	case apre == "":
		return 1, nil
	case bpre == "":
		return -1, nil
	case apre > bpre:
		return 1, nil
	default:
		return -1, nil
	}
}

func parse(s string) (core [3]int, pre string, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	s, pre, _ = strings.Cut(s, "-")

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return core, "", fmt.Errorf("malformed version %q", s)
	}
	for i, p := range parts {
		if core[i], err = strconv.Atoi(p); err != nil || core[i] < 0 {
			return core, "", fmt.Errorf("malformed version %q", s)
		}
	}
	return core, pre, nil
}
