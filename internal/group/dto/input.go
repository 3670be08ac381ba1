package dto

type CreateGroupInput struct {
	Name        string
	BaseSKU     string
	VariantType string

	CategoryID        *string
	SupplierID        *string
	HasCommonSupplier bool

	Length              *float64
	Width               *float64
	Height              *float64
	DimensionUnit       *string
	HasCommonDimensions bool

	Weight          *float64
	HasCommonWeight bool

	Style    *string
	RoomTags []string
}

// UpdateGroupInput is a partial patch: nil fields are left untouched.
type UpdateGroupInput struct {
	ID string

	Name    *string
	BaseSKU *string

	CategoryID        *string
	SupplierID        *string
	HasCommonSupplier *bool

	Length              *float64
	Width               *float64
	Height              *float64
	DimensionUnit       *string
	HasCommonDimensions *bool

	Weight          *float64
	HasCommonWeight *bool

	Style    *string
	RoomTags []string
}

type AddMembersInput struct {
	GroupID    string
	ProductIDs []string
}

type CreateMemberInput struct {
	GroupID      string
	VariantValue string
	BasePrice    float64
	CostPrice    *float64
}

type UpdateMemberAttributeInput struct {
	ProductID string
	Key       string
	Value     string
}
