package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobsifter/internal/domain"
)

func testWorkbook(t *testing.T) *Workbook {
	t.Helper()
	return NewWorkbook(filepath.Join(t.TempDir(), "listings.xlsx"), "Listings", zap.NewNop().Sugar())
}

func TestWorkbookLoadMissingFile(t *testing.T) {
	st, err := testWorkbook(t).Load()
	require.NoError(t, err)
	assert.Zero(t, st.Len())
}

func TestWorkbookRoundTrip(t *testing.T) {
	wb := testWorkbook(t)

	saved := Store{Records: []domain.ClassifiedRecord{
		{
			ListingRecord: domain.ListingRecord{
				ID:         "4021077",
				Title:      "Senior React Developer",
				Employer:   "Initech",
				Location:   "Remote",
				Summary:    "Build dashboards",
				DetailLink: "https://listings.example.com/jobs/view/4021077",
			},
			Category: domain.CategoryFrontend,
		},
		{
			ListingRecord: domain.ListingRecord{ID: "4021078", Title: "Mystery Role"},
			Category:      domain.CategoryOther,
		},
	}}
	require.NoError(t, wb.Save(saved))

	loaded, err := wb.Load()
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, saved.Records[0], loaded.Records[0])
	assert.Equal(t, "4021078", loaded.Records[1].ID)
}

func TestWorkbookSaveRewritesWholesale(t *testing.T) {
	wb := testWorkbook(t)

	require.NoError(t, wb.Save(Store{Records: []domain.ClassifiedRecord{
		{ListingRecord: domain.ListingRecord{ID: "old-1", Title: "Old"}, Category: domain.CategoryOther},
		{ListingRecord: domain.ListingRecord{ID: "old-2", Title: "Old"}, Category: domain.CategoryOther},
	}}))
	require.NoError(t, wb.Save(Store{Records: []domain.ClassifiedRecord{
		{ListingRecord: domain.ListingRecord{ID: "new-1", Title: "New"}, Category: domain.CategoryData},
	}}))

	loaded, err := wb.Load()
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "new-1", loaded.Records[0].ID)
}

func TestWorkbookLockExcludesSecondInvocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.xlsx")
	a := NewWorkbook(path, "Listings", zap.NewNop().Sugar())
	b := NewWorkbook(path, "Listings", zap.NewNop().Sugar())

	require.NoError(t, a.Lock())

	locked, err := b.fl.TryLock()
	require.NoError(t, err)
	assert.False(t, locked, "a second invocation must wait for the first")

	require.NoError(t, a.Unlock())
	locked, err = b.fl.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	require.NoError(t, b.Unlock())
}

// Two invocations doing load-merge-save at the same path. The second blocks
// on the lock until the first has saved, so it merges over the first run's
// additions instead of overwriting them with the stale sheet it would have
// loaded otherwise.
func TestWorkbookOverlappingRunsKeepBothAdditions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.xlsx")
	a := NewWorkbook(path, "Listings", zap.NewNop().Sugar())
	b := NewWorkbook(path, "Listings", zap.NewNop().Sugar())

	require.NoError(t, a.Lock())

	done := make(chan error, 1)
	go func() {
		if err := b.Lock(); err != nil {
			done <- err
			return
		}
		defer func() { _ = b.Unlock() }()
		prior, err := b.Load()
		if err != nil {
			done <- err
			return
		}
		done <- b.Save(Merge(prior, []domain.ClassifiedRecord{
			{ListingRecord: domain.ListingRecord{ID: "from-b"}, Category: domain.CategoryOther},
		}))
	}()

	prior, err := a.Load()
	require.NoError(t, err)
	require.NoError(t, a.Save(Merge(prior, []domain.ClassifiedRecord{
		{ListingRecord: domain.ListingRecord{ID: "from-a"}, Category: domain.CategoryOther},
	})))
	require.NoError(t, a.Unlock())

	require.NoError(t, <-done)

	final, err := a.Load()
	require.NoError(t, err)
	require.Equal(t, 2, final.Len())
	assert.Equal(t, "from-a", final.Records[0].ID)
	assert.Equal(t, "from-b", final.Records[1].ID)
}

func TestWorkbookUnknownCategoryCollapsesToOther(t *testing.T) {
	wb := testWorkbook(t)

	require.NoError(t, wb.Save(Store{Records: []domain.ClassifiedRecord{
		{ListingRecord: domain.ListingRecord{ID: "r1"}, Category: domain.Category("Bogus")},
	}}))

	loaded, err := wb.Load()
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, domain.CategoryOther, loaded.Records[0].Category)
}
