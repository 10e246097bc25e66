package classify

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobsifter/internal/domain"
)

// ErrClassifierFailed marks an outright delegate call failure. Fatal: silent
// mis-classification is worse than stopping the run.
var ErrClassifierFailed = errors.New("classify: delegate call failed")

type Pipeline struct {
	rules    Ruleset
	enricher Enricher
	delegate Delegate
	log      *zap.SugaredLogger
}

func NewPipeline(rules Ruleset, enricher Enricher, delegate Delegate, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{rules: rules, enricher: enricher, delegate: delegate, log: log}
}

// Classify resolves a category for rec, or excludes it. The tiers run in
// fixed order and short-circuit: a title hit skips enrichment entirely, even
// where the delegated tier would disagree. Exclusion is absolute: whatever is
// already determinable from the listing fields excludes the record before the
// title heuristic can claim it.
func (p *Pipeline) Classify(ctx context.Context, rec domain.ListingRecord) (domain.ClassifiedRecord, bool, error) {
	// Exclusions visible without a detail fetch take precedence over every
	// tier; an excluded record must never reach the store.
	if p.rules.RestrictedText(rec.Title + " " + rec.Summary) {
		p.log.Infow("excluded: restricted requirement", "id", rec.ID, "title", rec.Title)
		return domain.ClassifiedRecord{}, true, nil
	}
	if p.rules.EmployerBlocked(rec.Employer) {
		p.log.Infow("excluded: blocklisted employer", "id", rec.ID, "employer", rec.Employer)
		return domain.ClassifiedRecord{}, true, nil
	}

	// Tier 1: title heuristic.
	if cat, ok := p.rules.TitleCategory(rec.Title); ok {
		return domain.ClassifiedRecord{ListingRecord: rec, Category: cat}, false, nil
	}

	// Tier 2: exclusion filters, which need the detail page. A failed fetch
	// degrades the fields to empty and processing continues.
	enr, err := p.enricher.Enrich(ctx, rec)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ClassifiedRecord{}, false, ctx.Err()
		}
		p.log.Warnw("detail fetch degraded", "id", rec.ID, "err", err)
		enr.ListingRecord = rec
	}
	if enr.HasRestrictedRequirement {
		p.log.Infow("excluded: restricted requirement", "id", rec.ID, "title", rec.Title)
		return domain.ClassifiedRecord{}, true, nil
	}

	// Tier 3: delegated skill/text classification.
	cat, err := p.delegate.Classify(ctx, enr.SkillTags, enr.FullText)
	if err != nil {
		return domain.ClassifiedRecord{}, false,
			errors.Mark(errors.Wrap(err, "delegated classification"), ErrClassifierFailed)
	}
	return domain.ClassifiedRecord{ListingRecord: rec, Category: cat}, false, nil
}
