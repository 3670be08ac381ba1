package dto

type CreateOrganisationInput struct {
	Kind         string
	LegalName    string
	ContactEmail *string
	ContactPhone *string
	AddressLine  *string
	City         *string
	PostalCode   *string
	Country      *string

	CustomerGroupID  *string
	PaymentTermsDays int
}

type UpdateOrganisationInput struct {
	ID           string
	LegalName    *string
	ContactEmail *string
	ContactPhone *string
	AddressLine  *string
	City         *string
	PostalCode   *string
	Country      *string

	CustomerGroupID  *string
	PaymentTermsDays *int
	IsActive         *bool
}

type CreateCustomerGroupInput struct {
	Name         string
	DiscountRate float64
}

type UpdateCustomerGroupInput struct {
	ID           string
	Name         *string
	DiscountRate *float64
}
