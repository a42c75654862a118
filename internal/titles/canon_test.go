package titles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"senior", "ml", "engineer"}, Tokenize("Senior ML/Engineer"))
	assert.Equal(t, []string{"backend", "devops"}, Tokenize("Backend+DevOps"))
	assert.Equal(t, []string{"co", "founder"}, Tokenize("Co-Founder"))
	assert.Nil(t, Tokenize(""))
}

func TestCategorize(t *testing.T) {
	cases := map[string]string{
		"Co-Founder & CEO":               "Founder/Ceo",
		"Senior Software Engineer":       "SoftwareEngineer",
		"Machine Learning Engineer":      "MlEngineer",
		"Data Scientist":                 "DataScientist",
		"ML Data Scientist":              "MlEngineer",
		"Technical Recruiter":            "Recruiting/Hr",
		"Product Manager":                "Product",
		"Site Reliability Engineer":      "Devops/Sre",
		"Solutions Architect":            "Architect",
		"student":                        "student",
		"unemployed":                     "unemployed",
		"Underwater Basket Weaver":       "Other",
	}
	for in, want := range cases {
		assert.Equal(t, want, Categorize(in), "title %q", in)
	}
}

func TestCategorizeOrderMatters(t *testing.T) {
	// product beats design, design only fires without product
	assert.Equal(t, "Product", Categorize("Product Designer"))
	assert.Equal(t, "Design", Categorize("UX Designer"))
}

func TestCanonicalizeShortAndSnake(t *testing.T) {
	c := NewCanonicalizer("")
	canon, short, snake := c.Canonicalize("Lead Machine Learning Engineer")
	assert.Equal(t, "MlEngineer", canon)
	assert.Equal(t, "ml engineer", short)
	assert.Equal(t, "mlengineer", snake)

	canon, short, snake = c.Canonicalize("Co-Founder")
	assert.Equal(t, "Founder/Ceo", canon)
	assert.Equal(t, "founder ceo", short)
	assert.Equal(t, "founder_ceo", snake)
}

func TestCanonicalizerExactMapWins(t *testing.T) {
	c := &Canonicalizer{exact: map[string]string{"growth hacker": "Sales/Marketing"}}
	canon, _, _ := c.Canonicalize("Growth Hacker")
	assert.Equal(t, "Sales/Marketing", canon)
}

func TestSchoolActive(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, SchoolActive("2021 - Present", today))
	assert.True(t, SchoolActive("2020-09 - 2025-06", today))
	assert.False(t, SchoolActive("2018 - 2022", today))
	assert.False(t, SchoolActive("", today))
	assert.False(t, SchoolActive("not a range", today))
}

func TestDeriveJobTitle(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "Engineer", DeriveJobTitle("Engineer", "Analyst", "", today))
	require.Equal(t, "Analyst", DeriveJobTitle("", "Analyst", "", today))
	require.Equal(t, "student", DeriveJobTitle("", "", "2023 - Present", today))
	require.Equal(t, "unemployed", DeriveJobTitle("", "", "2010 - 2014", today))
}
