package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobsifter/internal/domain"
)

func testRules() Ruleset {
	return NewRuleset([]Rule{
		{
			Category: domain.CategoryFrontend,
			TitleAny: []string{"react", "angular", "frontend"},
			Family:   []string{"react", "javascript", "css"},
		},
		{
			Category: domain.CategoryBackend,
			TitleAny: []string{"php", "backend", "django"},
			Family:   []string{"php", "laravel", "python", "postgres"},
		},
		{
			Category: domain.CategoryDevOps,
			TitleAny: []string{"devops", "sre"},
			Family:   []string{"kubernetes", "terraform", "aws"},
		},
	},
		[]string{"Amazon", " Globex "},
		[]string{"security clearance", "secret clearance"},
	)
}

func TestTitleCategoryFirstMatchWins(t *testing.T) {
	rules := testRules()

	cat, ok := rules.TitleCategory("Senior React Developer")
	assert.True(t, ok)
	assert.Equal(t, domain.CategoryFrontend, cat)

	// both frontend and backend keywords present; priority order decides
	cat, ok = rules.TitleCategory("React + PHP Engineer")
	assert.True(t, ok)
	assert.Equal(t, domain.CategoryFrontend, cat)
}

func TestTitleCategoryCaseInsensitive(t *testing.T) {
	rules := testRules()

	cat, ok := rules.TitleCategory("SENIOR PHP ENGINEER")
	assert.True(t, ok)
	assert.Equal(t, domain.CategoryBackend, cat)
}

func TestTitleCategoryNoMatch(t *testing.T) {
	_, ok := testRules().TitleCategory("Office Manager")
	assert.False(t, ok)
}

func TestEmployerBlocked(t *testing.T) {
	rules := testRules()

	assert.True(t, rules.EmployerBlocked("Amazon"))
	assert.True(t, rules.EmployerBlocked("amazon"))
	assert.True(t, rules.EmployerBlocked("AMAZON"))
	assert.True(t, rules.EmployerBlocked("  Globex "))
	assert.False(t, rules.EmployerBlocked("Initech"))
	assert.False(t, rules.EmployerBlocked(""))
}

func TestRestrictedText(t *testing.T) {
	rules := testRules()

	assert.True(t, rules.RestrictedText("Active Secret Clearance required for this role"))
	assert.False(t, rules.RestrictedText("No special requirements"))
	assert.False(t, rules.RestrictedText(""))
}
