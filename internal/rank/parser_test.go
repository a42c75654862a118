package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeQuery(t *testing.T) {
	assert.Equal(t, []string{"backend", "ml", "engineers"}, Tokenize("Backend/ML engineers!"))
	assert.Equal(t, []string{"c", "devs"}, Tokenize("  C++ devs?? "))
	assert.Nil(t, Tokenize("!!!"))
	assert.Nil(t, Tokenize(""))
}

func TestParseQuerySkills(t *testing.T) {
	goals := ParseQuery("python and go people", []string{"Python", "go", "sql"}, nil)
	assert.Equal(t, []string{"go", "python"}, goals.Skills)
}

func TestParseQueryRoleSingularization(t *testing.T) {
	goals := ParseQuery("software engineers with python", []string{"python"}, nil)
	assert.Equal(t, []string{"engineer", "software"}, goals.JobTokens)
	assert.Equal(t, []string{"python"}, goals.Skills)
}

func TestParseQueryEngineerSuffix(t *testing.T) {
	goals := ParseQuery("looking for a teleportengineer", nil, nil)
	assert.Contains(t, goals.JobTokens, "teleportengineer")
}

func TestParseQueryCompanyWholeWord(t *testing.T) {
	goals := ParseQuery("engineers who worked at google before", nil, []string{"google", "googly eyes inc"})
	assert.Contains(t, goals.Companies, "google")
}

func TestParseQueryCompanyFuzzy(t *testing.T) {
	goals := ParseQuery("at gogle", nil, []string{"google", "netflix"})
	assert.Equal(t, []string{"google"}, goals.Companies)
}

func TestParseQueryCompanyNoMatch(t *testing.T) {
	goals := ParseQuery("underwater welders", nil, []string{"google"})
	assert.Empty(t, goals.Companies)
}

func TestParseQueryIsPure(t *testing.T) {
	skills := []string{"python", "go"}
	comps := []string{"google"}
	a := ParseQuery("python engineers at google", skills, comps)
	b := ParseQuery("python engineers at google", skills, comps)
	require.Equal(t, a, b)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 1, levenshtein("google", "gogle"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 2, levenshtein("kitten", "sittin"))
}
