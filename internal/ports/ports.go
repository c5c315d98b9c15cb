package ports

import (
	"sort"
	"strconv"
	"strings"
)

// Parse expands a port specification string into a sorted, deduplicated
// slice of port numbers. Supported forms:
//   - single: "443"
//   - list: "22,80,443"
//   - range: "20-25" (endpoints in either order)
//   - mixed: "20-25,80,443"
//
// Tokens that are not numeric or fall outside 1..65535 are dropped
// silently; the upstream UI sends whatever the user typed and a partial
// scan beats no scan. Parse("") returns an empty slice.
func Parse(spec string) []int {
	seen := make(map[int]struct{})

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if strings.Contains(token, "-") {
			bounds := strings.SplitN(token, "-", 2)
			start, err1 := strconv.Atoi(strings.TrimSpace(bounds[0]))
			end, err2 := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err1 != nil || err2 != nil {
				continue
			}
			if start > end {
				start, end = end, start
			}
			for p := start; p <= end; p++ {
				if valid(p) {
					seen[p] = struct{}{}
				}
			}
			continue
		}
		p, err := strconv.Atoi(token)
		if err != nil || !valid(p) {
			continue
		}
		seen[p] = struct{}{}
	}

	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func valid(p int) bool {
	return p > 0 && p < 65536
}
