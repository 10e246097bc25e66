package domain

// Category is the closed set of labels a record can be classified into.
type Category string

const (
	CategoryFrontend  Category = "Frontend"
	CategoryBackend   Category = "Backend"
	CategoryFullstack Category = "Fullstack"
	CategoryMobile    Category = "Mobile"
	CategoryDevOps    Category = "DevOps"
	CategoryData      Category = "Data"
	CategoryOther     Category = "Other"
)

// Categories lists every label except the catch-all, in the fixed priority
// order used by the title heuristic.
var Categories = []Category{
	CategoryFrontend,
	CategoryBackend,
	CategoryFullstack,
	CategoryMobile,
	CategoryDevOps,
	CategoryData,
}

// ParseCategory maps a label string onto the closed set; anything unknown
// collapses to Other so stray values can never widen the set.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryFrontend, CategoryBackend, CategoryFullstack,
		CategoryMobile, CategoryDevOps, CategoryData:
		return Category(s)
	default:
		return CategoryOther
	}
}
