package domain

// ListingRecord is one entry as observed on a results page. The ID is
// extracted from the detail link and is the stable unique key across runs.
type ListingRecord struct {
	ID         string
	Title      string
	Employer   string
	Location   string
	Summary    string
	DetailLink string
}

// EnrichedRecord carries the extra fields obtained by fetching a record's
// detail page. A failed or timed-out detail fetch leaves them zero-valued.
type EnrichedRecord struct {
	ListingRecord

	SkillTags                []string
	HasRestrictedRequirement bool
	FullText                 string
}

// ClassifiedRecord is the terminal form of a record. Category is assigned
// exactly once and never recomputed.
type ClassifiedRecord struct {
	ListingRecord

	Category Category
}
