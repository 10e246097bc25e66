package classify

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobsifter/internal/crawl/util"
	"jobsifter/internal/domain"
	"jobsifter/internal/render"
)

// Enricher fetches a record's detail page to obtain skill tags, the
// restricted-requirement indicator, and the full description text.
type Enricher interface {
	Enrich(ctx context.Context, rec domain.ListingRecord) (domain.EnrichedRecord, error)
}

type DetailConfig struct {
	BodySelector     string
	SkillTagSelector string
	Timeout          time.Duration
}

// DetailFetcher borrows the shared session to visit detail pages between
// listing pages. Never concurrent with other session use.
type DetailFetcher struct {
	session render.Session
	cfg     DetailConfig
	rules   Ruleset
	limiter *util.HostLimiter
	log     *zap.SugaredLogger
}

func NewDetailFetcher(session render.Session, cfg DetailConfig, rules Ruleset, limiter *util.HostLimiter, log *zap.SugaredLogger) *DetailFetcher {
	return &DetailFetcher{session: session, cfg: cfg, rules: rules, limiter: limiter, log: log}
}

func (f *DetailFetcher) Enrich(ctx context.Context, rec domain.ListingRecord) (domain.EnrichedRecord, error) {
	enr := domain.EnrichedRecord{ListingRecord: rec}
	if rec.DetailLink == "" {
		return enr, nil
	}

	if err := f.limiter.WaitURL(ctx, rec.DetailLink); err != nil {
		return enr, err
	}
	if err := f.session.Load(ctx, rec.DetailLink); err != nil {
		return enr, errors.Wrap(err, "load detail page")
	}
	if err := f.session.WaitVisible(ctx, f.cfg.BodySelector, f.cfg.Timeout); err != nil {
		// Missing fields degrade classification input; they do not stop it.
		return enr, errors.Wrap(err, "wait detail content")
	}

	html, err := f.session.HTML(ctx)
	if err != nil {
		return enr, errors.Wrap(err, "snapshot detail page")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return enr, errors.Wrap(err, "parse detail page")
	}

	enr.FullText = util.CleanText(doc.Find(f.cfg.BodySelector).First().Text())
	doc.Find(f.cfg.SkillTagSelector).Each(func(_ int, s *goquery.Selection) {
		if tag := util.CleanText(s.Text()); tag != "" {
			enr.SkillTags = append(enr.SkillTags, tag)
		}
	})
	enr.HasRestrictedRequirement = f.rules.RestrictedText(enr.FullText)

	return enr, nil
}
