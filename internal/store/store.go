// Package store holds the full, deduplicated, persisted set of classified
// records across runs. The persisted form is a flat workbook sheet rewritten
// wholesale each run, not an incrementally maintained database.
package store

import "jobsifter/internal/domain"

// Store is an ordered sequence of classified records keyed by ID. Prior
// records come before those added this run; within each group, discovery
// order is preserved.
type Store struct {
	Records []domain.ClassifiedRecord
}

// Index returns the set of IDs currently present.
func (s Store) Index() map[string]bool {
	idx := make(map[string]bool, len(s.Records))
	for _, r := range s.Records {
		idx[r.ID] = true
	}
	return idx
}

func (s Store) Len() int { return len(s.Records) }

// Merge appends, in discovery order, only incoming records whose ID is not
// already present. The running index includes records accepted earlier in the
// same call, so intra-run duplicates are skipped too. Idempotent; skips are
// silent, not errors.
func Merge(existing Store, incoming []domain.ClassifiedRecord) Store {
	idx := existing.Index()

	merged := Store{Records: make([]domain.ClassifiedRecord, 0, len(existing.Records)+len(incoming))}
	merged.Records = append(merged.Records, existing.Records...)

	for _, rec := range incoming {
		if rec.ID == "" || idx[rec.ID] {
			continue
		}
		idx[rec.ID] = true
		merged.Records = append(merged.Records, rec)
	}
	return merged
}
