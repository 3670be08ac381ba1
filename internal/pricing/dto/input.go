package dto

import "time"

type ResolveInput struct {
	ProductID    string
	Quantity     int
	CustomerID   string
	CustomerType string
	ChannelID    string
	AsOf         time.Time // zero value = now
}

type CreateContractInput struct {
	ProductID    string
	CustomerID   string
	MinQty       int
	UnitPrice    float64
	DiscountRate float64
	StartsAt     *time.Time
	EndsAt       *time.Time
}

type SetChannelRateInput struct {
	ProductID    string
	ChannelID    string
	UnitPrice    float64
	DiscountRate float64
}
