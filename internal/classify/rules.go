// Package classify assigns each new record a category through a tiered,
// short-circuiting policy: title heuristic, exclusion filters, then delegated
// skill/text classification.
package classify

import (
	"strings"

	"github.com/cockroachdb/errors"

	"jobsifter/internal/config"
	"jobsifter/internal/domain"
)

// Rule is one category's keyword tables. TitleAny feeds tier 1; Family feeds
// the keyword-family majority rule in tier 3.
type Rule struct {
	Category domain.Category
	TitleAny []string
	Family   []string
}

// Ruleset is the immutable, lowercased rule configuration loaded once at
// startup and passed explicitly into the pipeline.
type Ruleset struct {
	rules      []Rule
	blocklist  map[string]bool
	restricted []string
}

// NewRuleset lowercases everything up front so every later check is a plain
// substring or map hit.
func NewRuleset(rules []Rule, blockEmployers, restrictedAny []string) Ruleset {
	rs := Ruleset{blocklist: make(map[string]bool)}
	for _, r := range rules {
		rs.rules = append(rs.rules, Rule{
			Category: r.Category,
			TitleAny: lowerAll(r.TitleAny),
			Family:   lowerAll(r.Family),
		})
	}
	for _, e := range blockEmployers {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			rs.blocklist[e] = true
		}
	}
	rs.restricted = lowerAll(restrictedAny)
	return rs
}

// RulesFromConfig builds the ruleset from the YAML tables. Labels must be
// members of the closed category set.
func RulesFromConfig(cfg config.Config) (Ruleset, error) {
	var rules []Rule
	for _, c := range cfg.Categories {
		label := strings.TrimSpace(c.Label)
		cat := domain.ParseCategory(label)
		if string(cat) != label {
			return Ruleset{}, errors.Newf("unknown category label %q", c.Label)
		}
		rules = append(rules, Rule{Category: cat, TitleAny: c.TitleAny, Family: c.Family})
	}
	return NewRuleset(rules, cfg.Filters.EmployersBlock, cfg.Filters.RestrictedAny), nil
}

// TitleCategory is the tier-1 heuristic: first keyword hit in category
// priority order wins.
func (r Ruleset) TitleCategory(title string) (domain.Category, bool) {
	low := strings.ToLower(title)
	for _, rule := range r.rules {
		for _, kw := range rule.TitleAny {
			if kw != "" && strings.Contains(low, kw) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// EmployerBlocked reports whether the employer name is on the blocklist,
// case-insensitively.
func (r Ruleset) EmployerBlocked(employer string) bool {
	return r.blocklist[strings.ToLower(strings.TrimSpace(employer))]
}

// RestrictedText reports whether the text carries any restricted-requirement
// marker.
func (r Ruleset) RestrictedText(text string) bool {
	low := strings.ToLower(text)
	for _, m := range r.restricted {
		if m != "" && strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// tagMajority returns the categories whose keyword family claims the most
// skill tags. Several categories on a tie, none when no tag matches.
func (r Ruleset) tagMajority(tags []string) []domain.Category {
	counts := make(map[domain.Category]int)
	for _, tag := range tags {
		low := strings.ToLower(tag)
		for _, rule := range r.rules {
			for _, kw := range rule.Family {
				if kw != "" && strings.Contains(low, kw) {
					counts[rule.Category]++
					break
				}
			}
		}
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return nil
	}
	var out []domain.Category
	for _, rule := range r.rules {
		if counts[rule.Category] == max {
			out = append(out, rule.Category)
		}
	}
	return out
}

// textFamilies returns every category whose keyword family is mentioned in
// the description text.
func (r Ruleset) textFamilies(text string) []domain.Category {
	low := strings.ToLower(text)
	var out []domain.Category
	for _, rule := range r.rules {
		for _, kw := range rule.Family {
			if kw != "" && strings.Contains(low, kw) {
				out = append(out, rule.Category)
				break
			}
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
