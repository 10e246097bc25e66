package challenge

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
)

// HTTPSolver posts challenge params to a solving service and returns the
// token it hands back. The payload is pass-through; nothing in it is
// interpreted here.
type HTTPSolver struct {
	client *resty.Client
	url    string
	key    string
}

func NewHTTPSolver(url, apiKey string, timeout time.Duration) *HTTPSolver {
	return &HTTPSolver{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		key:    apiKey,
	}
}

func (s *HTTPSolver) Solve(ctx context.Context, p Params) (Solution, error) {
	var out struct {
		Token string `json:"token"`
		Error string `json:"error"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"key": s.key, "params": p}).
		SetResult(&out).
		Post(s.url)
	if err != nil {
		return Solution{}, errors.Wrap(err, "solver call")
	}
	if resp.IsError() {
		return Solution{}, errors.Newf("solver status %s", resp.Status())
	}
	if out.Error != "" {
		return Solution{}, errors.Newf("solver: %s", out.Error)
	}
	if out.Token == "" {
		return Solution{}, errors.New("solver returned an empty token")
	}
	return Solution{Token: out.Token}, nil
}
