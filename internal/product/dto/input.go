package dto

type CreateProductInput struct {
	Name         string
	SKU          string
	VariantAttrs map[string]string
	CategoryID   *string
	SupplierID   *string
	BasePrice    float64
	CostPrice    *float64

	Length        *float64
	Width         *float64
	Height        *float64
	DimensionUnit *string
	Weight        *float64

	RoomTags []string
}

type UpdateProductInput struct {
	ID         string
	Name       string
	SKU        string
	CategoryID *string
	SupplierID *string
	BasePrice  float64
	CostPrice  *float64

	Length        *float64
	Width         *float64
	Height        *float64
	DimensionUnit *string
	Weight        *float64

	RoomTags []string
	Status   string
}
