// Package render abstracts the browser session the rest of the pipeline
// drives. The core only depends on Session; the rod adapter is the one
// production implementation.
package render

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrWaitTimeout is returned by WaitVisible when the selector never shows up
// within the given window.
var ErrWaitTimeout = errors.New("render: wait for selector timed out")

// ConsoleSignal is one console message emitted by the rendered page. Args are
// joined into a single text blob; the pipeline only ever pattern-matches on
// the text.
type ConsoleSignal struct {
	Text string
}

// Session is a single exclusive page context. All methods serialize on the
// underlying page; callers must not invoke them concurrently.
type Session interface {
	// Load navigates to url and waits for the load event.
	Load(ctx context.Context, url string) error

	// WaitVisible blocks until selector matches a visible element, or
	// returns ErrWaitTimeout after timeout.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// HTML returns a snapshot of the current DOM.
	HTML(ctx context.Context) (string, error)

	// Eval runs a JavaScript expression in the page context.
	Eval(ctx context.Context, js string) error

	// Location reports the page's current URL.
	Location(ctx context.Context) (string, error)

	// Signals streams console messages for the lifetime of the session.
	// The channel closes when the session is closed.
	Signals() <-chan ConsoleSignal

	Close() error
}
