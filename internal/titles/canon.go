package titles

import (
	"encoding/json"
	"log"
	"os"
	"regexp"
	"strings"
)

var (
	tokenSplitRE = regexp.MustCompile(`[ \t/+&\-]+`)
	whitespaceRE = regexp.MustCompile(`\s+`)
	nonAlnumRE   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	camelSplitRE = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	snakeRE      = regexp.MustCompile(`[^a-z0-9]+`)
)

// Tokenize lowercases a title and splits it on spaces, slashes, plus
// signs, ampersands and hyphens. Slashes are turned into spaces first so
// compound categories split cleanly.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(strings.ToLower(s), "/", " ")
	var out []string
	for _, tok := range tokenSplitRE.Split(s, -1) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Categorize maps a raw job title to its canonical category in CamelCase
// path form (for example "Founder/Ceo" or "SoftwareEngineer"). The rules
// cascade from most to least specific, so order matters.
func Categorize(title string) string {
	base := strings.TrimSpace(strings.ToLower(title))
	if base == "student" || base == "unemployed" {
		return base
	}

	var cat string
	switch {
	case containsAny(base, "co-founder", "cofounder", "founder", "ceo", "chief executive officer"):
		cat = "founder/ceo"
	case containsAny(base, "chief technology officer", "cto", "chief operating officer", "svp", "vice president"):
		cat = "executive"
	case containsAny(base, "recruit", "talent acquisition", "technical recruiter", "recruiter", "hrbp", "human resources", "hr ", " hr", "people"):
		cat = "recruiting/hr"
	case strings.Contains(base, "product"):
		cat = "product"
	case strings.Contains(base, "design"):
		cat = "design"
	case containsAny(base, "ml ", " ml", "machine learning", "ai/", "ai ", " ai", "artificial intelligence", "applied scientist", "research scientist", "data and applied scientist"):
		switch {
		case strings.Contains(base, "data scientist"):
			if containsAny(base, "ml", "machine learning", "ai") {
				cat = "ml engineer"
			} else {
				cat = "data scientist"
			}
		case containsAny(base, "intern", "trainee", "co-op", "co op"):
			cat = "intern"
		default:
			cat = "ml engineer"
		}
	case strings.Contains(base, "data scientist"):
		cat = "data scientist"
	case containsAny(base, "data engineer", "big data engineer", "cloud data engineer"):
		cat = "data engineer"
	case strings.Contains(base, "analyst"):
		cat = "analyst"
	case containsAny(base, "devops", "site reliability engineer", "sre", "system engineer - devops"):
		cat = "devops/sre"
	case containsAny(base, "software engineer", "sde", "developer", "programmer", "member of technical staff", "mots", "mts",
		".net developer", "full stack", "frontend", "backend", "react developer", "zoho developer",
		"solutions engineer", "software qa engineer", "software quality engineer", "software project developer",
		"software development engineer", "software engineering manager", "software engineering specialist"):
		cat = "software engineer"
	case containsAny(base, "cloud engineer", "cloud support engineer", "azure cloud engineer"):
		cat = "cloud engineer"
	case strings.Contains(base, "security"):
		cat = "security"
	case containsAny(base, "solutions architect", "architect"):
		cat = "architect"
	case containsAny(base, "quality", "qa "):
		cat = "qa"
	case containsAny(base, "consultant", "advisor"):
		cat = "consultant/advisor"
	case containsAny(base, "manager", "program manager", "project manager", "operations manager", "lead ", "lead,", "lead-", "lead/"):
		cat = "management"
	case containsAny(base, "marketing", "sales", "business development", "account executive", "public relations"):
		cat = "sales/marketing"
	case containsAny(base, "professor", "lecturer", "teaching assistant", "graduate", "adjunct", "visiting graduate student", "student research", "faculty"):
		cat = "academic"
	case strings.Contains(base, "research"):
		cat = "research"
	case strings.Contains(base, "engineer"):
		cat = "engineer"
	case containsAny(base, "intern", "trainee", "co-op", "co op"):
		cat = "intern"
	case containsAny(base, "customer", "support", "assistant"):
		cat = "support"
	case strings.Contains(base, "network"):
		cat = "network engineer"
	case strings.Contains(base, "supply chain"):
		cat = "supply chain"
	case containsAny(base, "quantitative", "investment banking", "finance", "financial"):
		cat = "finance/quant"
	case containsAny(base, "writer", "content creator", "writing"):
		cat = "content/writing"
	case containsAny(base, "operations", "admin", "administrator"):
		cat = "operations"
	default:
		cat = "other"
	}

	parts := strings.Split(cat, "/")
	for i, p := range parts {
		parts[i] = titleCase(p)
	}
	return strings.Join(parts, "/")
}

// titleCase capitalizes each space-separated word and removes the spaces,
// turning "ml engineer" into "MlEngineer".
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "")
}

// Canonicalizer maps raw titles to canonical categories, preferring an
// exact-lookup table over the rule cascade when one is loaded.
type Canonicalizer struct {
	exact map[string]string
}

// NewCanonicalizer optionally loads an exact lowercase-title to category
// map from a JSON file. A missing path is not an error; a broken file is
// logged and skipped.
func NewCanonicalizer(jsonPath string) *Canonicalizer {
	c := &Canonicalizer{exact: map[string]string{}}
	if jsonPath == "" {
		return c
	}
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Printf("[Titles] Skipping canon map %s: %v", jsonPath, err)
		return c
	}
	if err := json.Unmarshal(raw, &c.exact); err != nil {
		log.Printf("[Titles] Invalid canon map %s: %v", jsonPath, err)
		c.exact = map[string]string{}
	}
	return c
}

// Canonicalize returns the canonical category plus a short (first two
// words, lowercase) and snake_case form for grouping.
func (c *Canonicalizer) Canonicalize(title string) (canon, short, snake string) {
	lowerKey := strings.TrimSpace(strings.ToLower(title))
	if mapped, ok := c.exact[lowerKey]; ok {
		canon = mapped
	} else {
		canon = Categorize(title)
	}
	if canon == "student" || canon == "unemployed" {
		return canon, canon, canon
	}

	// categories are CamelCase, so word boundaries need splitting before
	// the first two words are taken
	base := camelSplitRE.ReplaceAllString(strings.ReplaceAll(canon, "/", " "), "$1 $2")
	baseWords := whitespaceRE.Split(strings.TrimSpace(nonAlnumRE.ReplaceAllString(base, " ")), -1)
	var words []string
	for _, w := range baseWords {
		if w != "" {
			words = append(words, w)
		}
	}
	switch {
	case len(words) >= 2:
		short = strings.ToLower(words[0] + " " + words[1])
	case len(words) == 1:
		short = strings.ToLower(words[0])
	default:
		short = strings.ToLower(canon)
	}
	snake = strings.Trim(snakeRE.ReplaceAllString(strings.ToLower(canon), "_"), "_")
	return canon, short, snake
}
