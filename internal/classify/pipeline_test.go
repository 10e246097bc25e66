package classify

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobsifter/internal/domain"
)

type fakeEnricher struct {
	calls  int
	result domain.EnrichedRecord
	err    error
}

func (f *fakeEnricher) Enrich(_ context.Context, rec domain.ListingRecord) (domain.EnrichedRecord, error) {
	f.calls++
	out := f.result
	out.ListingRecord = rec
	return out, f.err
}

type fakeDelegate struct {
	calls int
	cat   domain.Category
	err   error
}

func (f *fakeDelegate) Classify(context.Context, []string, string) (domain.Category, error) {
	f.calls++
	return f.cat, f.err
}

func newTestPipeline(enr *fakeEnricher, del Delegate) *Pipeline {
	return NewPipeline(testRules(), enr, del, zap.NewNop().Sugar())
}

func TestPipelineTitleHeuristicShortCircuits(t *testing.T) {
	enr := &fakeEnricher{}
	del := &fakeDelegate{cat: domain.CategoryBackend}
	p := newTestPipeline(enr, del)

	// skill tags would say otherwise; the title wins without a detail fetch
	rec := domain.ListingRecord{ID: "1", Title: "Senior React Developer"}
	out, excluded, err := p.Classify(context.Background(), rec)

	require.NoError(t, err)
	assert.False(t, excluded)
	assert.Equal(t, domain.CategoryFrontend, out.Category)
	assert.Zero(t, enr.calls)
	assert.Zero(t, del.calls)
}

func TestPipelineRestrictedBeatsTitleMatch(t *testing.T) {
	enr := &fakeEnricher{}
	p := newTestPipeline(enr, &fakeDelegate{cat: domain.CategoryOther})

	rec := domain.ListingRecord{ID: "2", Title: "PHP Engineer (Secret Clearance Required)"}
	_, excluded, err := p.Classify(context.Background(), rec)

	require.NoError(t, err)
	assert.True(t, excluded)
}

func TestPipelineBlocklistExclusion(t *testing.T) {
	for _, employer := range []string{"Amazon", "amazon", "AMAZON"} {
		enr := &fakeEnricher{}
		p := newTestPipeline(enr, &fakeDelegate{cat: domain.CategoryOther})

		rec := domain.ListingRecord{ID: "3", Title: "Staff Something", Employer: employer}
		_, excluded, err := p.Classify(context.Background(), rec)

		require.NoError(t, err)
		assert.Truef(t, excluded, "employer %q should be excluded", employer)
	}
}

func TestPipelineRestrictedFromDetailPage(t *testing.T) {
	enr := &fakeEnricher{result: domain.EnrichedRecord{HasRestrictedRequirement: true}}
	del := &fakeDelegate{cat: domain.CategoryBackend}
	p := newTestPipeline(enr, del)

	rec := domain.ListingRecord{ID: "4", Title: "Engineer III"}
	_, excluded, err := p.Classify(context.Background(), rec)

	require.NoError(t, err)
	assert.True(t, excluded)
	assert.Equal(t, 1, enr.calls)
	assert.Zero(t, del.calls)
}

func TestPipelineDelegateResolvesCategory(t *testing.T) {
	enr := &fakeEnricher{result: domain.EnrichedRecord{
		SkillTags: []string{"Kubernetes"},
		FullText:  "Terraform all day.",
	}}
	p := newTestPipeline(enr, RuleDelegate{Rules: testRules()})

	rec := domain.ListingRecord{ID: "5", Title: "Infrastructure Wrangler"}
	out, excluded, err := p.Classify(context.Background(), rec)

	require.NoError(t, err)
	assert.False(t, excluded)
	assert.Equal(t, domain.CategoryDevOps, out.Category)
}

func TestPipelineDegradedEnrichmentStillClassifies(t *testing.T) {
	enr := &fakeEnricher{err: errors.New("wait detail content: timed out")}
	p := newTestPipeline(enr, RuleDelegate{Rules: testRules()})

	rec := domain.ListingRecord{ID: "6", Title: "Generalist"}
	out, excluded, err := p.Classify(context.Background(), rec)

	require.NoError(t, err)
	assert.False(t, excluded)
	assert.Equal(t, domain.CategoryOther, out.Category)
	assert.Equal(t, "6", out.ID)
}

func TestPipelineDelegateFailureIsFatal(t *testing.T) {
	enr := &fakeEnricher{}
	del := &fakeDelegate{err: errors.New("boom")}
	p := newTestPipeline(enr, del)

	rec := domain.ListingRecord{ID: "7", Title: "Generalist"}
	_, _, err := p.Classify(context.Background(), rec)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClassifierFailed))
}
