package model

import "time"

type ProductStatus string

const (
	StatusInStock      ProductStatus = "in_stock"
	StatusDiscontinued ProductStatus = "discontinued"
)

// Product is a sellable unit, optionally belonging to exactly one variant
// group. Name and SKU are derived from the group template while grouped.
type Product struct {
	BaseModel
	Name string `db:"name" json:"name"`
	SKU  string `db:"sku" json:"sku"`

	GroupID  *string `db:"group_id" json:"group_id"`
	Position *int    `db:"position" json:"position"`

	VariantAttrs AttributeMap `db:"variant_attrs" json:"variant_attrs"`

	CategoryID *string `db:"category_id" json:"category_id"`
	SupplierID *string `db:"supplier_id" json:"supplier_id"`

	BasePrice float64  `db:"base_price" json:"base_price"`
	CostPrice *float64 `db:"cost_price" json:"cost_price"`

	Length        *float64 `db:"length_cm" json:"length_cm"`
	Width         *float64 `db:"width_cm" json:"width_cm"`
	Height        *float64 `db:"height_cm" json:"height_cm"`
	DimensionUnit *string  `db:"dimension_unit" json:"dimension_unit"`
	Weight        *float64 `db:"weight_kg" json:"weight_kg"`

	RoomTags StringList `db:"room_tags" json:"room_tags"`

	Status     ProductStatus `db:"status" json:"status"`
	ArchivedAt *time.Time    `db:"archived_at" json:"archived_at"`
}

func (p *Product) Grouped() bool {
	return p.GroupID != nil && *p.GroupID != ""
}

func (p *Product) Archived() bool {
	return p.ArchivedAt != nil
}

// VariantValue returns the product's value for the given variant dimension,
// or "" when absent.
func (p *Product) VariantValue(t VariantType) string {
	if p.VariantAttrs == nil {
		return ""
	}
	return p.VariantAttrs[string(t)]
}
