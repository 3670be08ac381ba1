package dto

type CategoryFilters struct {
	ParentID *string // nil = all, "" = roots only
	IsActive *bool
	AsTree   bool
	Page     int
	PageSize int
}
