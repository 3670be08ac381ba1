package model

import "time"

// VariantType is the single attribute key a group uses to distinguish its
// members.
type VariantType string

const (
	VariantColor    VariantType = "color"
	VariantMaterial VariantType = "material"
	VariantSize     VariantType = "size"
	VariantOther    VariantType = "other"
)

func (t VariantType) Valid() bool {
	switch t {
	case VariantColor, VariantMaterial, VariantSize, VariantOther:
		return true
	}
	return false
}

// VariantGroup is a family of product variants sharing a subset of
// attributes (e.g. the same chair in different colors).
type VariantGroup struct {
	BaseModel
	Name        string      `db:"name" json:"name"`
	BaseSKU     string      `db:"base_sku" json:"base_sku"`
	VariantType VariantType `db:"variant_type" json:"variant_type"`

	CategoryID        *string `db:"category_id" json:"category_id"`
	SupplierID        *string `db:"supplier_id" json:"supplier_id"`
	HasCommonSupplier bool    `db:"has_common_supplier" json:"has_common_supplier"`

	Length              *float64 `db:"length_cm" json:"length_cm"`
	Width               *float64 `db:"width_cm" json:"width_cm"`
	Height              *float64 `db:"height_cm" json:"height_cm"`
	DimensionUnit       *string  `db:"dimension_unit" json:"dimension_unit"`
	HasCommonDimensions bool     `db:"has_common_dimensions" json:"has_common_dimensions"`

	Weight          *float64 `db:"weight_kg" json:"weight_kg"`
	HasCommonWeight bool     `db:"has_common_weight" json:"has_common_weight"`

	// Style is group-only metadata: products carry no style column, so it
	// is never cascaded.
	Style    *string    `db:"style" json:"style"`
	RoomTags StringList `db:"room_tags" json:"room_tags"`

	MemberCount int        `db:"member_count" json:"member_count"`
	ArchivedAt  *time.Time `db:"archived_at" json:"archived_at"`
}

func (g *VariantGroup) Archived() bool {
	return g.ArchivedAt != nil
}
