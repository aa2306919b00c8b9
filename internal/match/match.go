// Package match computes the percentage overlap between a job's required
// skills and a candidate's skills.
package match

import (
	"math"
	"strings"
)

// Score returns the percentage of required skills the candidate covers, as an
// integer in [0,100]. Comparison is case-insensitive and duplicates collapse.
// An empty required set scores 0: a job with no stated requirements offers
// nothing to match against. Rounding is to the nearest whole percent, halves
// away from zero.
func Score(required, candidate []string) int {
	req := toSet(required)
	if len(req) == 0 {
		return 0
	}
	cand := toSet(candidate)

	overlap := 0
	for skill := range req {
		if cand[skill] {
			overlap++
		}
	}

	return int(math.Round(float64(overlap) / float64(len(req)) * 100))
}

func toSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		set[strings.ToLower(s)] = true
	}
	return set
}
