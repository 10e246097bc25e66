package classify

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"

	"jobsifter/internal/domain"
)

// Delegate is the tier-3 skill/text classifier. A call failure is fatal to
// the run; an ambiguous result is just Other.
type Delegate interface {
	Classify(ctx context.Context, skillTags []string, fullText string) (domain.Category, error)
}

// RuleDelegate applies the keyword-family majority rule in-process. Each
// category owns a keyword family; the skill-tag majority and the families
// mentioned in the text must agree on exactly one category, otherwise the
// result is Other. A single unambiguous side is accepted when the other side
// matched nothing.
type RuleDelegate struct {
	Rules Ruleset
}

func (d RuleDelegate) Classify(_ context.Context, skillTags []string, fullText string) (domain.Category, error) {
	tagSide := d.Rules.tagMajority(skillTags)
	textSide := d.Rules.textFamilies(fullText)

	if len(tagSide) > 1 || len(textSide) > 1 {
		return domain.CategoryOther, nil
	}
	switch {
	case len(tagSide) == 1 && len(textSide) == 1:
		if tagSide[0] == textSide[0] {
			return tagSide[0], nil
		}
		return domain.CategoryOther, nil
	case len(tagSide) == 1:
		return tagSide[0], nil
	case len(textSide) == 1:
		return textSide[0], nil
	default:
		return domain.CategoryOther, nil
	}
}

// HTTPDelegate calls a remote classification service.
type HTTPDelegate struct {
	client   *resty.Client
	endpoint string
	token    string
}

func NewHTTPDelegate(endpoint, token string, timeout time.Duration) *HTTPDelegate {
	return &HTTPDelegate{
		client:   resty.New().SetTimeout(timeout),
		endpoint: endpoint,
		token:    token,
	}
}

func (d *HTTPDelegate) Classify(ctx context.Context, skillTags []string, fullText string) (domain.Category, error) {
	var out struct {
		Category string `json:"category"`
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetAuthToken(d.token).
		SetBody(map[string]any{"skill_tags": skillTags, "full_text": fullText}).
		SetResult(&out).
		Post(d.endpoint)
	if err != nil {
		return "", errors.Wrap(err, "classifier call")
	}
	if resp.IsError() {
		return "", errors.Newf("classifier status %s", resp.Status())
	}
	// Unknown labels collapse to Other rather than widening the closed set.
	return domain.ParseCategory(out.Category), nil
}
