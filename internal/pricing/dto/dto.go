package dto

type ContractFilters struct {
	ProductID  string
	CustomerID string
}
