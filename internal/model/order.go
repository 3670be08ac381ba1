package model

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
)

type SalesOrder struct {
	BaseModel
	Reference   string      `db:"reference" json:"reference"`
	CustomerID  string      `db:"customer_id" json:"customer_id"`
	ChannelID   *string     `db:"channel_id" json:"channel_id"`
	Status      OrderStatus `db:"status" json:"status"`
	TotalAmount float64     `db:"total_amount" json:"total_amount"`
	Lines       []OrderLine `db:"-" json:"lines"`
}

type OrderLine struct {
	ID           string    `db:"id" json:"id"`
	OrderID      string    `db:"order_id" json:"order_id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	Quantity     int       `db:"quantity" json:"quantity"`
	UnitPrice    float64   `db:"unit_price" json:"unit_price"`
	DiscountRate float64   `db:"discount_rate" json:"discount_rate"`
	PriceTier    PriceTier `db:"price_tier" json:"price_tier"`
	LineTotal    float64   `db:"line_total" json:"line_total"`
}
