package model

type OrganisationKind string

const (
	KindSupplier OrganisationKind = "supplier"
	KindCustomer OrganisationKind = "customer"
)

// Organisation is a supplier or customer record.
type Organisation struct {
	BaseModel
	Kind         OrganisationKind `db:"kind" json:"kind"`
	LegalName    string           `db:"legal_name" json:"legal_name"`
	ContactEmail *string          `db:"contact_email" json:"contact_email"`
	ContactPhone *string          `db:"contact_phone" json:"contact_phone"`
	AddressLine  *string          `db:"address_line" json:"address_line"`
	City         *string          `db:"city" json:"city"`
	PostalCode   *string          `db:"postal_code" json:"postal_code"`
	Country      *string          `db:"country" json:"country"`

	// Customers only: pricing group and payment terms.
	CustomerGroupID  *string `db:"customer_group_id" json:"customer_group_id"`
	PaymentTermsDays int     `db:"payment_terms_days" json:"payment_terms_days"`

	IsActive bool `db:"is_active" json:"is_active"`
}

// CustomerGroup carries a flat discount rate applied at the customer-group
// pricing tier.
type CustomerGroup struct {
	BaseModel
	Name         string  `db:"name" json:"name"`
	DiscountRate float64 `db:"discount_rate" json:"discount_rate"`
}
