package dto

type CreateCategoryInput struct {
	ParentID    *string
	Name        string
	Description string
	SortOrder   int
}

type UpdateCategoryInput struct {
	ID          string
	ParentID    *string
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
}
