package rank

import (
	"regexp"
	"sort"
	"strings"
)

// Goals are the structured targets extracted from a free-text query.
type Goals struct {
	Skills    []string `json:"goal_skills"`
	JobTokens []string `json:"goal_job_tokens"`
	Companies []string `json:"goal_companies"`
}

var (
	queryCleanRE    = regexp.MustCompile(`[^a-z0-9\s/+&-]`)
	queryCollapseRE = regexp.MustCompile(`\s+`)
	querySplitRE    = regexp.MustCompile(`[ \t/+\-&]+`)
)

// roleRoots is the fixed role vocabulary for job-token extraction and
// candidate token expansion.
var roleRoots = map[string]bool{
	"engineer": true, "developer": true, "manager": true, "analyst": true,
	"designer": true, "scientist": true, "architect": true, "recruiter": true,
	"founder": true, "consultant": true, "researcher": true,
	"software": true, "backend": true, "front": true, "frontend": true,
	"fullstack": true, "data": true,
	"ml": true, "ai": true, "qa": true, "sre": true, "devops": true,
	"security": true, "mobile": true, "ios": true, "android": true,
	"product": true, "cloud": true, "platform": true,
}

// Tokenize lowercases the query, strips punctuation except a few
// separators, and splits on whitespace plus those separators.
func Tokenize(text string) []string {
	t := strings.ToLower(text)
	t = queryCleanRE.ReplaceAllString(t, " ")
	t = strings.TrimSpace(queryCollapseRE.ReplaceAllString(t, " "))
	if t == "" {
		return nil
	}
	var out []string
	for _, p := range querySplitRE.Split(t, -1) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseQuery extracts goal skills, job tokens and companies from a query
// given the graph-known vocabularies. It is pure: identical inputs give
// identical goals.
func ParseQuery(query string, allSkills, allCompanies []string) Goals {
	tokens := Tokenize(query)

	skillSet := map[string]bool{}
	for _, s := range allSkills {
		if s = strings.TrimSpace(strings.ToLower(s)); s != "" {
			skillSet[s] = true
		}
	}

	goalSkills := map[string]bool{}
	goalJobs := map[string]bool{}
	for _, t := range tokens {
		if skillSet[t] {
			goalSkills[t] = true
		}
		switch {
		case roleRoots[t]:
			goalJobs[t] = true
		case strings.HasSuffix(t, "s") && roleRoots[t[:len(t)-1]]:
			goalJobs[t[:len(t)-1]] = true
		case strings.HasSuffix(t, "engineer"):
			goalJobs[t] = true
		}
	}

	return Goals{
		Skills:    sortedKeys(goalSkills),
		JobTokens: sortedKeys(goalJobs),
		Companies: parseCompanies(tokens, allCompanies),
	}
}

// parseCompanies extracts company terms from the token stream, then
// fuzzy-expands against the known-company universe. Only universe entries
// come back, never raw query terms.
func parseCompanies(tokens []string, allCompanies []string) []string {
	if len(tokens) == 0 || len(allCompanies) == 0 {
		return nil
	}
	universe := make([]string, 0, len(allCompanies))
	for _, c := range allCompanies {
		if c = strings.TrimSpace(strings.ToLower(c)); c != "" {
			universe = append(universe, c)
		}
	}
	padded := " " + strings.Join(tokens, " ") + " "

	terms := map[string]bool{}
	for _, c := range universe {
		if strings.Contains(padded, " "+c+" ") {
			terms[c] = true
		}
	}
	// "at X" and "company X" mark the following token (and bigram, for
	// two-word names) as a company candidate even when unknown.
	for i, t := range tokens {
		if t != "at" && t != "company" {
			continue
		}
		if i+1 < len(tokens) {
			terms[tokens[i+1]] = true
		}
		if i+2 < len(tokens) {
			terms[tokens[i+1]+" "+tokens[i+2]] = true
		}
	}
	if len(terms) == 0 {
		return nil
	}

	matched := map[string]bool{}
	for _, u := range universe {
		limit := 2
		if len(u) > 8 {
			limit = 3
		}
		for t := range terms {
			if u == t || strings.HasPrefix(u, t) || strings.HasPrefix(t, u) ||
				levenshtein(u, t) <= limit {
				matched[u] = true
				break
			}
		}
	}
	return sortedKeys(matched)
}

// levenshtein is the standard edit distance with a two-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
