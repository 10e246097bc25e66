package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsifter/internal/domain"
)

func rec(id string, cat domain.Category) domain.ClassifiedRecord {
	return domain.ClassifiedRecord{
		ListingRecord: domain.ListingRecord{ID: id, Title: "t-" + id},
		Category:      cat,
	}
}

func ids(s Store) []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.Records {
		out = append(out, r.ID)
	}
	return out
}

func TestMergeAppendsOnlyNew(t *testing.T) {
	existing := Store{Records: []domain.ClassifiedRecord{rec("a", domain.CategoryBackend)}}
	merged := Merge(existing, []domain.ClassifiedRecord{
		rec("a", domain.CategoryOther),
		rec("b", domain.CategoryFrontend),
	})

	assert.Equal(t, []string{"a", "b"}, ids(merged))
	// the existing record wins; the duplicate is skipped silently
	assert.Equal(t, domain.CategoryBackend, merged.Records[0].Category)
}

func TestMergeIdempotent(t *testing.T) {
	existing := Store{Records: []domain.ClassifiedRecord{rec("a", domain.CategoryData)}}
	incoming := []domain.ClassifiedRecord{rec("b", domain.CategoryOther), rec("c", domain.CategoryMobile)}

	once := Merge(existing, incoming)
	twice := Merge(once, incoming)

	assert.Equal(t, once, twice)
}

func TestMergePreservesOrder(t *testing.T) {
	existing := Store{Records: []domain.ClassifiedRecord{
		rec("x", domain.CategoryOther), rec("y", domain.CategoryOther),
	}}
	merged := Merge(existing, []domain.ClassifiedRecord{
		rec("m", domain.CategoryOther), rec("n", domain.CategoryOther),
	})

	assert.Equal(t, []string{"x", "y", "m", "n"}, ids(merged))
}

func TestMergeSkipsIntraRunDuplicates(t *testing.T) {
	merged := Merge(Store{}, []domain.ClassifiedRecord{
		rec("a", domain.CategoryOther),
		rec("b", domain.CategoryOther),
		rec("a", domain.CategoryOther),
	})

	assert.Equal(t, []string{"a", "b"}, ids(merged))
}

func TestMergeDropsEmptyIDs(t *testing.T) {
	merged := Merge(Store{}, []domain.ClassifiedRecord{rec("", domain.CategoryOther)})
	assert.Zero(t, merged.Len())
}

func TestMergeTwoPageScenario(t *testing.T) {
	// page 1: a, b, c; page 2: c, d; c must appear exactly once
	page1 := []domain.ClassifiedRecord{
		rec("a", domain.CategoryFrontend),
		rec("b", domain.CategoryBackend),
		rec("c", domain.CategoryOther),
	}
	page2 := []domain.ClassifiedRecord{
		rec("c", domain.CategoryOther),
		rec("d", domain.CategoryData),
	}

	merged := Merge(Store{}, append(append([]domain.ClassifiedRecord{}, page1...), page2...))

	require.Equal(t, 4, merged.Len())
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(merged))

	seen := map[string]int{}
	for _, r := range merged.Records {
		seen[r.ID]++
	}
	for id, n := range seen {
		assert.Equalf(t, 1, n, "id %s appears %d times", id, n)
	}
}
