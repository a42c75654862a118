package rank

import (
	"math"
	"strings"
)

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// jaccard over two string sets. Two empty sets give 0, not 1.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// minmaxOnSubset min-max normalizes values over just the subset keys.
// A flat distribution maps everything to 0.
func minmaxOnSubset(values map[string]float64, subset []string) map[string]float64 {
	out := make(map[string]float64, len(subset))
	if len(subset) == 0 {
		return out
	}
	mn, mx := math.Inf(1), math.Inf(-1)
	for _, k := range subset {
		v := values[k]
		mn = math.Min(mn, v)
		mx = math.Max(mx, v)
	}
	if mx <= mn {
		for _, k := range subset {
			out[k] = 0
		}
		return out
	}
	for _, k := range subset {
		out[k] = (values[k] - mn) / (mx - mn)
	}
	return out
}

// expandJobTokens widens a candidate's job-token set: a token of at least
// six characters containing a role root as a proper substring also
// contributes the root itself, so "softwareengineer" matches queries for
// "engineer" or "software".
func expandJobTokens(tokens []string) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		out[t] = true
		if len(t) < 6 {
			continue
		}
		for root := range roleRoots {
			if t != root && strings.Contains(t, root) {
				out[root] = true
			}
		}
	}
	return out
}

// egoBridging computes the bridging coefficient for each ego member using
// only intra-ego edges. Nothing is persisted.
func egoBridging(members []string, edges [][2]string) map[string]float64 {
	neigh := make(map[string]map[string]bool, len(members))
	for _, m := range members {
		neigh[m] = map[string]bool{}
	}
	for _, e := range edges {
		a, b := e[0], e[1]
		if _, ok := neigh[a]; !ok {
			continue
		}
		if _, ok := neigh[b]; !ok {
			continue
		}
		neigh[a][b] = true
		neigh[b][a] = true
	}
	out := make(map[string]float64, len(members))
	for _, m := range members {
		deg := len(neigh[m])
		if deg == 0 {
			out[m] = 0
			continue
		}
		var invSum float64
		for u := range neigh[m] {
			if d := len(neigh[u]); d > 0 {
				invSum += 1.0 / float64(d)
			}
		}
		if invSum == 0 {
			out[m] = 0
			continue
		}
		out[m] = (1.0 / float64(deg)) / invSum
	}
	return out
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
