package dto

type OrganisationFilters struct {
	Kind            string
	CustomerGroupID string
	IsActive        *bool
	SearchQuery     string // legal name search
	Page            int
	PageSize        int
}
