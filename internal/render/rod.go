package render

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RodOptions controls the launched browser.
type RodOptions struct {
	Headless  bool
	UserAgent string
}

// RodSession drives a single Chromium page through go-rod. One page context;
// not safe for concurrent use, which matches the Session contract.
type RodSession struct {
	browser *rod.Browser
	page    *rod.Page
	signals chan ConsoleSignal
	cancel  context.CancelFunc
	eg      *errgroup.Group
	log     *zap.SugaredLogger
}

// NewRodSession launches a browser, opens a blank page, and starts the
// console event pump.
func NewRodSession(opts RodOptions, log *zap.SugaredLogger) (*RodSession, error) {
	u, err := launcher.New().Headless(opts.Headless).Launch()
	if err != nil {
		return nil, errors.Wrap(err, "launch browser")
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, errors.Wrap(err, "connect browser")
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, errors.Wrap(err, "open page")
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			log.Warnw("set user agent failed", "err", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &RodSession{
		browser: browser,
		page:    page,
		signals: make(chan ConsoleSignal, 32),
		cancel:  cancel,
		eg:      &errgroup.Group{},
		log:     log,
	}
	s.eg.Go(func() error {
		s.pump(ctx)
		return nil
	})
	return s, nil
}

func (s *RodSession) pump(ctx context.Context) {
	defer close(s.signals)

	wait := s.page.Context(ctx).EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		text := s.consoleText(e)
		if text == "" {
			return
		}
		select {
		case s.signals <- ConsoleSignal{Text: text}:
		default:
			// drop if slow; the gate only cares about the first match
		}
	})
	wait()
}

func (s *RodSession) consoleText(e *proto.RuntimeConsoleAPICalled) string {
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		j, err := s.page.ObjectToJSON(arg)
		if err != nil {
			continue
		}
		parts = append(parts, j.Str())
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (s *RodSession) Load(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return errors.Wrapf(err, "navigate %s", url)
	}
	if err := p.WaitLoad(); err != nil {
		return errors.Wrapf(err, "wait load %s", url)
	}
	return nil
}

func (s *RodSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrWaitTimeout
		}
		return errors.Wrapf(err, "find %s", selector)
	}
	if err := el.WaitVisible(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrWaitTimeout
		}
		return errors.Wrapf(err, "wait visible %s", selector)
	}
	return nil
}

func (s *RodSession) HTML(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", errors.Wrap(err, "snapshot html")
	}
	return html, nil
}

func (s *RodSession) Eval(ctx context.Context, js string) error {
	if _, err := s.page.Context(ctx).Eval(js); err != nil {
		return errors.Wrap(err, "eval")
	}
	return nil
}

func (s *RodSession) Location(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", errors.Wrap(err, "page info")
	}
	return info.URL, nil
}

func (s *RodSession) Signals() <-chan ConsoleSignal {
	return s.signals
}

// Close tears down the event pump, the page, and the browser. Safe on every
// exit path; errors are logged rather than propagated since there is nothing
// left to salvage.
func (s *RodSession) Close() error {
	s.cancel()
	_ = s.eg.Wait()
	if err := s.page.Close(); err != nil {
		s.log.Debugw("page close", "err", err)
	}
	return s.browser.Close()
}
