package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything a deployer
// should hear about before an unattended run starts.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.EmployersBlock = trimList(out.Filters.EmployersBlock)
	out.Filters.RestrictedAny = trimList(out.Filters.RestrictedAny)
	out.Filters.AuthRedirectAny = trimList(out.Filters.AuthRedirectAny)
	for i := range out.Categories {
		out.Categories[i].TitleAny = trimList(out.Categories[i].TitleAny)
		out.Categories[i].Family = trimList(out.Categories[i].Family)
	}

	// ---- Defaults ----

	if out.Source.MaxPages <= 0 {
		out.Source.MaxPages = 25
	}
	if out.Source.RequestsPerSecond <= 0 {
		out.Source.RequestsPerSecond = 0.5
	}
	if out.Source.Burst <= 0 {
		out.Source.Burst = 1
	}
	if out.Timeouts.ContentSeconds <= 0 {
		out.Timeouts.ContentSeconds = 20
	}
	if out.Timeouts.DetailSeconds <= 0 {
		out.Timeouts.DetailSeconds = 15
	}
	if out.Timeouts.ChallengeGraceSeconds <= 0 {
		out.Timeouts.ChallengeGraceSeconds = 8
	}
	if out.Timeouts.SolveSeconds <= 0 {
		out.Timeouts.SolveSeconds = 120
	}
	if out.Timeouts.ClassifierSeconds <= 0 {
		out.Timeouts.ClassifierSeconds = 30
	}
	if out.Store.Sheet == "" {
		out.Store.Sheet = "Listings"
	}
	if out.Store.Workbook == "" {
		out.Store.Workbook = "listings.xlsx"
	}
	if out.Challenge.Callback == "" {
		out.Challenge.Callback = "__challengeSolved"
	}

	// ---- Validation rules ----

	if strings.TrimSpace(out.Source.StartURL) == "" {
		res.addErr("source.start_url is required")
	}
	if strings.TrimSpace(out.Selectors.Listing) == "" {
		res.addErr("selectors.listing is required")
	}
	if strings.TrimSpace(out.Selectors.DetailLink) == "" {
		res.addErr("selectors.detail_link is required")
	}
	if strings.TrimSpace(out.Challenge.Marker) == "" {
		res.addErr("challenge.marker is required")
	}
	if strings.TrimSpace(out.Challenge.SolverURL) == "" {
		res.addErr("challenge.solver_url is required")
	}
	if len(out.Categories) == 0 {
		res.addErr("categories must not be empty")
	}

	seen := map[string]bool{}
	for _, c := range out.Categories {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			res.addErr("category with empty label")
			continue
		}
		if seen[strings.ToLower(label)] {
			res.addErr("duplicate category label %q", label)
		}
		seen[strings.ToLower(label)] = true
		if len(c.TitleAny) == 0 {
			res.addWarn("category %q has no title keywords; tier-1 can never match it", label)
		}
		if len(c.Family) == 0 {
			res.addWarn("category %q has no keyword family; delegated classification can never pick it", label)
		}
	}

	if len(out.Filters.RestrictedAny) == 0 {
		res.addWarn("filters.restricted_any is empty; restricted-requirement exclusion is disabled")
	}
	if out.Source.RequestsPerSecond > 2 {
		res.addWarn("source.requests_per_second is high (%.1f); the source may rate-limit or block", out.Source.RequestsPerSecond)
	}

	return out, res
}
