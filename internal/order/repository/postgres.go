package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/order/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateWithLines(ctx context.Context, o *model.SalesOrder) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	headerQuery := `
        INSERT INTO sales_orders (
            id, reference, customer_id, channel_id, status, total_amount,
            created_at, updated_at
        )
        VALUES (
            :id, :reference, :customer_id, :channel_id, :status, :total_amount,
            :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, headerQuery, o); err != nil {
		return err
	}

	lineQuery := `
        INSERT INTO sales_order_lines (
            id, order_id, product_id, quantity, unit_price, discount_rate,
            price_tier, line_total
        )
        VALUES (
            :id, :order_id, :product_id, :quantity, :unit_price, :discount_rate,
            :price_tier, :line_total
        )
    `
	for i := range o.Lines {
		if _, err := tx.NamedExecContext(ctx, lineQuery, &o.Lines[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.SalesOrder, error) {
	var order model.SalesOrder
	err := r.DB.GetContext(ctx, &order, `SELECT * FROM sales_orders WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &order.Lines, `SELECT * FROM sales_order_lines WHERE order_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.SalesOrder, int, error) {
	var orders []model.SalesOrder
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	if f.ChannelID != "" {
		conditions = append(conditions, "channel_id = :channel_id")
		args["channel_id"] = f.ChannelID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM sales_orders" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM sales_orders" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &orders, args)
	if err != nil {
		return nil, 0, err
	}

	return orders, count, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, o *model.SalesOrder) error {
	query := `
        UPDATE sales_orders
        SET status = :status,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, o)
	return err
}
