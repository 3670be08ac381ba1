package model

import "time"

// PriceTier identifies which source supplied a resolved price, in strict
// priority order: customer contract, customer group, sales channel, then
// the catalog base price.
type PriceTier string

const (
	TierCustomerSpecific PriceTier = "customer_specific"
	TierCustomerGroup    PriceTier = "customer_group"
	TierChannel          PriceTier = "channel"
	TierBaseCatalog      PriceTier = "base_catalog"
)

// Resolution is the outcome of a price lookup. Ephemeral, never persisted.
type Resolution struct {
	UnitPrice    float64   `json:"unit_price"`
	DiscountRate float64   `json:"discount_rate"`
	Tier         PriceTier `json:"tier"`
}

// PriceContract is a customer-specific negotiated price, optionally
// quantity-tiered and date-windowed.
type PriceContract struct {
	BaseModel
	ProductID    string     `db:"product_id" json:"product_id"`
	CustomerID   string     `db:"customer_id" json:"customer_id"`
	MinQty       int        `db:"min_qty" json:"min_qty"`
	UnitPrice    float64    `db:"unit_price" json:"unit_price"`
	DiscountRate float64    `db:"discount_rate" json:"discount_rate"`
	StartsAt     *time.Time `db:"starts_at" json:"starts_at"`
	EndsAt       *time.Time `db:"ends_at" json:"ends_at"`
}

// ChannelRate is a per-sales-channel price for a product.
type ChannelRate struct {
	BaseModel
	ProductID    string  `db:"product_id" json:"product_id"`
	ChannelID    string  `db:"channel_id" json:"channel_id"`
	UnitPrice    float64 `db:"unit_price" json:"unit_price"`
	DiscountRate float64 `db:"discount_rate" json:"discount_rate"`
}
