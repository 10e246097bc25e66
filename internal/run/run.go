// Package run sequences one collection run: session, challenge gate, crawl,
// classification, merge, persist.
package run

import (
	"bufio"
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobsifter/internal/crawl"
	"jobsifter/internal/domain"
	"jobsifter/internal/render"
	"jobsifter/internal/store"
)

type Gate interface {
	AwaitReady(ctx context.Context) error
}

type Crawler interface {
	Run(ctx context.Context, handle crawl.PageHandler) (crawl.Termination, error)
}

type Pipeline interface {
	Classify(ctx context.Context, rec domain.ListingRecord) (domain.ClassifiedRecord, bool, error)
}

// Sink persists the record set. Lock/Unlock bracket the whole
// load-merge-save cycle so overlapping invocations serialize instead of
// overwriting each other's additions.
type Sink interface {
	Lock() error
	Unlock() error
	Load() (store.Store, error)
	Save(store.Store) error
}

type Deps struct {
	Session  render.Session
	Gate     Gate
	Crawler  Crawler
	Pipeline Pipeline
	Sink     Sink

	StartURL    string
	ManualLogin bool
	Stdin       io.Reader

	Log *zap.SugaredLogger
}

// Run drives a single unattended collection run. The session is released on
// every exit path, including fatal aborts.
func Run(ctx context.Context, d Deps) error {
	defer func() { _ = d.Session.Close() }()

	if err := d.Session.Load(ctx, d.StartURL); err != nil {
		return errors.Wrap(err, "load listing surface")
	}

	if err := d.Gate.AwaitReady(ctx); err != nil {
		return errors.Wrap(err, "challenge gate")
	}

	if d.ManualLogin {
		d.Log.Infow("manual login requested: complete it in the browser, then press Enter")
		sc := bufio.NewScanner(d.Stdin)
		sc.Scan()
	}

	// The lock spans load through save; a second invocation started by an
	// overlapping cron tick waits here rather than racing the merge.
	if err := d.Sink.Lock(); err != nil {
		return errors.Wrap(err, "lock store")
	}
	defer func() { _ = d.Sink.Unlock() }()

	existing, err := d.Sink.Load()
	if err != nil {
		return errors.Wrap(err, "load prior store")
	}
	d.Log.Infow("prior store loaded", "records", existing.Len())

	var (
		collected []domain.ClassifiedRecord
		extracted int
		excluded  int
	)
	term, err := d.Crawler.Run(ctx, func(ctx context.Context, page int, recs []domain.ListingRecord) error {
		for _, rec := range recs {
			extracted++
			cr, excl, cerr := d.Pipeline.Classify(ctx, rec)
			if cerr != nil {
				return cerr
			}
			if excl {
				excluded++
				continue
			}
			collected = append(collected, cr)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "crawl")
	}

	merged := store.Merge(existing, collected)
	added := merged.Len() - existing.Len()

	if err := d.Sink.Save(merged); err != nil {
		return errors.Wrap(err, "persist store")
	}

	d.Log.Infow("run complete",
		"reason", term.Reason,
		"pages", term.Pages,
		"extracted", extracted,
		"excluded", excluded,
		"added", added,
		"total", merged.Len(),
	)
	return nil
}
