package metrics

import "sort"

// louvain assigns communities on a weighted undirected graph by modularity
// local moving. Nodes are dense indices 0..n-1; adj[i] maps neighbour to
// edge weight. Passes repeat until no node moves or maxIter is reached.
// Community ids come back renumbered densely in order of first appearance.
func louvain(n int, adj []map[int]float64, maxIter int) []int {
	if maxIter <= 0 {
		maxIter = 20
	}
	comm := make([]int, n)
	strength := make([]float64, n)
	var total float64
	for i := 0; i < n; i++ {
		comm[i] = i
		for _, w := range adj[i] {
			strength[i] += w
			total += w
		}
	}
	total /= 2
	if total == 0 {
		for i := range comm {
			comm[i] = 0
		}
		if n == 0 {
			return comm
		}
		return renumber(comm)
	}

	commStrength := make([]float64, n)
	copy(commStrength, strength)

	for iter := 0; iter < maxIter; iter++ {
		moved := false
		for i := 0; i < n; i++ {
			cur := comm[i]

			// weight from i into each adjacent community
			linkTo := map[int]float64{}
			for j, w := range adj[i] {
				linkTo[comm[j]] += w
			}

			commStrength[cur] -= strength[i]

			bestComm := cur
			bestGain := linkTo[cur] - strength[i]*commStrength[cur]/(2*total)
			// deterministic sweep over candidate communities
			cands := make([]int, 0, len(linkTo))
			for c := range linkTo {
				cands = append(cands, c)
			}
			sort.Ints(cands)
			for _, c := range cands {
				if c == cur {
					continue
				}
				gain := linkTo[c] - strength[i]*commStrength[c]/(2*total)
				if gain > bestGain {
					bestGain = gain
					bestComm = c
				}
			}

			commStrength[bestComm] += strength[i]
			if bestComm != cur {
				comm[i] = bestComm
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	return renumber(comm)
}

func renumber(comm []int) []int {
	next := 0
	seen := map[int]int{}
	out := make([]int, len(comm))
	for i, c := range comm {
		id, ok := seen[c]
		if !ok {
			id = next
			seen[c] = id
			next++
		}
		out[i] = id
	}
	return out
}
