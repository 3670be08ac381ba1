package dto

type ProductFilters struct {
	CategoryID  string
	SupplierID  string
	GroupID     string
	Status      string
	Archived    *bool
	SearchQuery string // name or sku search
	SortBy      string // name, price, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}
