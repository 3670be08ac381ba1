package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/pricing/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindProductByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.DB.GetContext(ctx, &product, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindBestContract(ctx context.Context, productID, customerID string, qty int, asOf time.Time) (*model.PriceContract, error) {
	var contract model.PriceContract
	query := `
        SELECT * FROM price_contracts
        WHERE product_id = $1
          AND customer_id = $2
          AND min_qty <= $3
          AND (starts_at IS NULL OR starts_at <= $4)
          AND (ends_at IS NULL OR ends_at >= $4)
        ORDER BY min_qty DESC
        LIMIT 1
    `
	err := r.DB.GetContext(ctx, &contract, query, productID, customerID, qty, asOf)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *PGRepository) FindCustomerGroup(ctx context.Context, customerID string) (*model.CustomerGroup, error) {
	var group model.CustomerGroup
	query := `
        SELECT cg.* FROM customer_groups cg
        JOIN organisations o ON o.customer_group_id = cg.id
        WHERE o.id = $1
        LIMIT 1
    `
	err := r.DB.GetContext(ctx, &group, query, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *PGRepository) FindChannelRate(ctx context.Context, productID, channelID string) (*model.ChannelRate, error) {
	var rate model.ChannelRate
	query := `SELECT * FROM channel_rates WHERE product_id = $1 AND channel_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &rate, query, productID, channelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

func (r *PGRepository) CreateContract(ctx context.Context, c *model.PriceContract) error {
	query := `
        INSERT INTO price_contracts (
            id, product_id, customer_id, min_qty, unit_price, discount_rate,
            starts_at, ends_at, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :customer_id, :min_qty, :unit_price, :discount_rate,
            :starts_at, :ends_at, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindContracts(ctx context.Context, f *dto.ContractFilters) ([]model.PriceContract, error) {
	var contracts []model.PriceContract

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}

	query := "SELECT * FROM price_contracts"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &contracts, args)
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *PGRepository) DeleteContract(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM price_contracts WHERE id = $1`, id)
	return err
}

func (r *PGRepository) UpsertChannelRate(ctx context.Context, rate *model.ChannelRate) error {
	query := `
        INSERT INTO channel_rates (id, product_id, channel_id, unit_price, discount_rate, created_at, updated_at)
        VALUES (:id, :product_id, :channel_id, :unit_price, :discount_rate, :created_at, :updated_at)
        ON CONFLICT (product_id, channel_id) DO UPDATE
        SET unit_price = EXCLUDED.unit_price,
            discount_rate = EXCLUDED.discount_rate,
            updated_at = EXCLUDED.updated_at
    `
	_, err := r.DB.NamedExecContext(ctx, query, rate)
	return err
}

func (r *PGRepository) FindChannelRates(ctx context.Context, productID string) ([]model.ChannelRate, error) {
	var rates []model.ChannelRate
	err := r.DB.SelectContext(ctx, &rates, `SELECT * FROM channel_rates WHERE product_id = $1 ORDER BY channel_id ASC`, productID)
	return rates, err
}

func (r *PGRepository) DeleteChannelRate(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM channel_rates WHERE id = $1`, id)
	return err
}
