// Package challenge intercepts the anti-automation challenge a listing source
// may present on first load, obtains a solution from an external solver, and
// injects it back into the page.
package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobsifter/internal/render"
)

// ErrChallengeFailed marks a failed solve. Fatal: no record can be reached
// without a valid session.
var ErrChallengeFailed = errors.New("challenge: solve failed")

// Params is the opaque challenge payload forwarded to the solver.
type Params map[string]any

// Solution is the opaque solver output injected back into the page.
type Solution struct {
	Token string
}

// Solver produces a solution token for a challenge.
type Solver interface {
	Solve(ctx context.Context, p Params) (Solution, error)
}

type GateConfig struct {
	// Marker prefixes the console message the challenge widget emits.
	Marker string
	// Callback is the window function that accepts the solved token.
	Callback string
	// Grace is how long to wait for a challenge signal before treating its
	// absence as implicit success.
	Grace time.Duration
	// SolveTimeout bounds the solver call.
	SolveTimeout time.Duration
}

// Gate is a one-shot readiness latch over the session's console stream.
// Zero, one, or many challenge signals may arrive; only the first solve
// attempt is acted on, and the first resolution wins.
type Gate struct {
	session render.Session
	solver  Solver
	cfg     GateConfig
	log     *zap.SugaredLogger

	mu       sync.Mutex
	solving  bool
	resolved bool

	once sync.Once
	done chan error
}

func NewGate(session render.Session, solver Solver, cfg GateConfig, log *zap.SugaredLogger) *Gate {
	return &Gate{
		session: session,
		solver:  solver,
		cfg:     cfg,
		log:     log,
		done:    make(chan error, 1),
	}
}

func (g *Gate) resolve(err error) {
	g.once.Do(func() {
		g.mu.Lock()
		g.resolved = true
		g.mu.Unlock()
		g.done <- err
	})
}

// AwaitReady blocks until the gate resolves: a solved challenge, the grace
// period elapsing with no signal, or a fatal solve failure.
func (g *Gate) AwaitReady(ctx context.Context) error {
	go g.watch(ctx)

	timer := time.NewTimer(g.cfg.Grace)
	defer timer.Stop()

	select {
	case err := <-g.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	g.mu.Lock()
	solving := g.solving
	g.mu.Unlock()
	if !solving {
		g.log.Debugw("no challenge signal within grace period, treating as ready",
			"grace", g.cfg.Grace)
		g.resolve(nil)
	}
	// If a solve is in flight the grace period no longer applies; wait for
	// the solve outcome.
	select {
	case err := <-g.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) watch(ctx context.Context) {
	for {
		select {
		case sig, ok := <-g.session.Signals():
			if !ok {
				return
			}
			params, matched := g.match(sig.Text)
			if !matched {
				continue
			}
			if !g.beginSolve() {
				g.log.Debugw("ignoring extra challenge signal")
				continue
			}
			g.log.Infow("challenge detected, solving")
			g.resolve(g.solveAndInject(ctx, params))
			return
		case <-ctx.Done():
			return
		}
	}
}

// beginSolve claims the single solve attempt. False once a solve has started
// or the gate has already resolved.
func (g *Gate) beginSolve() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.solving || g.resolved {
		return false
	}
	g.solving = true
	return true
}

func (g *Gate) match(text string) (Params, bool) {
	if !strings.HasPrefix(text, g.cfg.Marker) {
		return nil, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(text, g.cfg.Marker))

	var p Params
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// Payload is opaque to us anyway; hand the solver what we saw.
		p = Params{"raw": raw}
	}
	return p, true
}

func (g *Gate) solveAndInject(ctx context.Context, p Params) error {
	sctx, cancel := context.WithTimeout(ctx, g.cfg.SolveTimeout)
	defer cancel()

	sol, err := g.solver.Solve(sctx, p)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "solve challenge"), ErrChallengeFailed)
	}

	js := fmt.Sprintf("window.%s && window.%s(%q)", g.cfg.Callback, g.cfg.Callback, sol.Token)
	if err := g.session.Eval(ctx, js); err != nil {
		return errors.Mark(errors.Wrap(err, "inject challenge solution"), ErrChallengeFailed)
	}

	g.log.Infow("challenge solved")
	return nil
}
