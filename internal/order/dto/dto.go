package dto

type OrderFilters struct {
	CustomerID string
	ChannelID  string
	Status     string
	Page       int
	PageSize   int
}
