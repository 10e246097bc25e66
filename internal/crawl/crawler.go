// Package crawl drives sequential traversal of the paginated listing surface
// and extracts raw records per page.
package crawl

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobsifter/internal/crawl/util"
	"jobsifter/internal/domain"
	"jobsifter/internal/render"
)

// Reason says why a crawl stopped. All reasons are normal completions, not
// errors; collected pages are preserved.
type Reason string

const (
	ReasonContentTimeout Reason = "content-timeout"
	ReasonNoMorePages    Reason = "no-more-pages"
	ReasonLastPage       Reason = "last-page"
	ReasonAuthRedirect   Reason = "auth-redirect"
	ReasonPageLimit      Reason = "page-limit"
)

type Termination struct {
	Reason Reason
	Pages  int
}

// Selectors locate the listing pieces on a rendered page.
type Selectors struct {
	Listing    string
	Title      string
	Employer   string
	Location   string
	Summary    string
	DetailLink string
	NextPage   string
}

type Config struct {
	Selectors       Selectors
	IDParam         string
	ContentTimeout  time.Duration
	MaxPages        int
	AuthRedirectAny []string
}

// PageHandler receives each page's records while the crawler still owns the
// pagination position. The handler may borrow the session (detail fetches);
// the crawler re-navigates by captured URL when advancing.
type PageHandler func(ctx context.Context, page int, records []domain.ListingRecord) error

type Crawler struct {
	session render.Session
	cfg     Config
	limiter *util.HostLimiter
	log     *zap.SugaredLogger
}

func New(session render.Session, cfg Config, limiter *util.HostLimiter, log *zap.SugaredLogger) *Crawler {
	return &Crawler{session: session, cfg: cfg, limiter: limiter, log: log}
}

// Run walks pages strictly sequentially until a termination condition. It
// assumes the session is already on the first listing page; the orchestrator
// performs the initial load behind the challenge gate.
func (c *Crawler) Run(ctx context.Context, handle PageHandler) (Termination, error) {
	pages := 0
	for {
		// WAIT_FOR_CONTENT
		if err := c.session.WaitVisible(ctx, c.cfg.Selectors.Listing, c.cfg.ContentTimeout); err != nil {
			if errors.Is(err, render.ErrWaitTimeout) {
				c.log.Warnw("listing content never appeared", "page", pages+1)
				return Termination{Reason: ReasonContentTimeout, Pages: pages}, nil
			}
			return Termination{}, err
		}

		// EXTRACT
		loc, err := c.session.Location(ctx)
		if err != nil {
			return Termination{}, err
		}
		html, err := c.session.HTML(ctx)
		if err != nil {
			return Termination{}, err
		}
		records, nextURL, next, err := c.extractPage(html, loc)
		if err != nil {
			return Termination{}, err
		}
		pages++
		c.log.Infow("page extracted", "page", pages, "records", len(records))

		if err := handle(ctx, pages, records); err != nil {
			return Termination{}, err
		}

		// CHECK_NEXT
		switch next {
		case nextAbsent:
			return Termination{Reason: ReasonNoMorePages, Pages: pages}, nil
		case nextDisabled:
			return Termination{Reason: ReasonLastPage, Pages: pages}, nil
		}
		if c.cfg.MaxPages > 0 && pages >= c.cfg.MaxPages {
			return Termination{Reason: ReasonPageLimit, Pages: pages}, nil
		}

		// ADVANCE
		if err := c.limiter.WaitURL(ctx, nextURL); err != nil {
			return Termination{}, err
		}
		if err := c.session.Load(ctx, nextURL); err != nil {
			return Termination{}, err
		}
		loc, err = c.session.Location(ctx)
		if err != nil {
			return Termination{}, err
		}
		if c.isAuthRedirect(loc) {
			c.log.Warnw("source redirected off the listing surface", "location", loc)
			return Termination{Reason: ReasonAuthRedirect, Pages: pages}, nil
		}
	}
}

func (c *Crawler) isAuthRedirect(loc string) bool {
	low := strings.ToLower(loc)
	for _, marker := range c.cfg.AuthRedirectAny {
		if marker != "" && strings.Contains(low, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
