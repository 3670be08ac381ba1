package dto

type GroupFilters struct {
	Archived    *bool
	VariantType string
	SearchQuery string // name or base SKU
	Page        int
	PageSize    int
}
