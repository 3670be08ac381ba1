package dto

type CreateOrderInput struct {
	CustomerID string
	ChannelID  *string
	Lines      []CreateOrderLine
}

type CreateOrderLine struct {
	ProductID string
	Quantity  int
}
