package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/verone/catalog-service/internal/inventory/dto"
	"github.com/verone/catalog-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByProduct(ctx context.Context, productID string) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.DB.GetContext(ctx, &inv, `SELECT * FROM inventory WHERE product_id = $1 LIMIT 1`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error) {
	var items []model.Inventory
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LowStock {
		conditions = append(conditions, "available_quantity <= reorder_point AND reorder_point > 0")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM inventory" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM inventory" + whereClause + " ORDER BY updated_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) CreateOrUpdate(ctx context.Context, inv *model.Inventory) error {
	query := `
        INSERT INTO inventory (
            id, product_id, quantity, reserved_quantity,
            reorder_point, reorder_quantity, last_counted_at, updated_at
        )
        VALUES (
            :id, :product_id, :quantity, :reserved_quantity,
            :reorder_point, :reorder_quantity, :last_counted_at, :updated_at
        )
        ON CONFLICT (product_id)
        DO UPDATE SET
            quantity = EXCLUDED.quantity,
            reserved_quantity = EXCLUDED.reserved_quantity,
            reorder_point = EXCLUDED.reorder_point,
            reorder_quantity = EXCLUDED.reorder_quantity,
            last_counted_at = EXCLUDED.last_counted_at,
            updated_at = EXCLUDED.updated_at
    `
	// available_quantity is a generated column
	_, err := r.DB.NamedExecContext(ctx, query, inv)
	return err
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, product_id, movement_type, quantity_change, quantity_before,
            quantity_after, reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :quantity_change, :quantity_before,
            :quantity_after, :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	var items []model.InventoryMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM inventory_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) MovementExistsByReference(ctx context.Context, referenceType, referenceID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM inventory_movements WHERE reference_type = $1 AND reference_id = $2`
	err := r.DB.GetContext(ctx, &count, query, referenceType, referenceID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, inv *model.Inventory, movement *model.InventoryMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	invQuery := `
        INSERT INTO inventory (
            id, product_id, quantity, reserved_quantity,
            reorder_point, reorder_quantity, last_counted_at, updated_at
        )
        VALUES (
            :id, :product_id, :quantity, :reserved_quantity,
            :reorder_point, :reorder_quantity, :last_counted_at, :updated_at
        )
        ON CONFLICT (product_id)
        DO UPDATE SET
            quantity = EXCLUDED.quantity,
            reserved_quantity = EXCLUDED.reserved_quantity,
            reorder_point = EXCLUDED.reorder_point,
            reorder_quantity = EXCLUDED.reorder_quantity,
            last_counted_at = EXCLUDED.last_counted_at,
            updated_at = EXCLUDED.updated_at
    `
	if _, err := tx.NamedExecContext(ctx, invQuery, inv); err != nil {
		return err
	}

	movementQuery := `
        INSERT INTO inventory_movements (
            id, product_id, movement_type, quantity_change, quantity_before,
            quantity_after, reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :quantity_change, :quantity_before,
            :quantity_after, :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, movementQuery, movement); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) Reserve(ctx context.Context, productID string, qty float64) (bool, error) {
	query := `
        UPDATE inventory
        SET reserved_quantity = reserved_quantity + $2,
            updated_at = now()
        WHERE product_id = $1
          AND quantity - reserved_quantity >= $2
    `
	res, err := r.DB.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PGRepository) Release(ctx context.Context, productID string, qty float64) error {
	query := `
        UPDATE inventory
        SET reserved_quantity = GREATEST(reserved_quantity - $2, 0),
            updated_at = now()
        WHERE product_id = $1
    `
	_, err := r.DB.ExecContext(ctx, query, productID, qty)
	return err
}

func (r *PGRepository) CommitReservation(ctx context.Context, productID string, qty float64) error {
	query := `
        UPDATE inventory
        SET quantity = quantity - $2,
            reserved_quantity = GREATEST(reserved_quantity - $2, 0),
            updated_at = now()
        WHERE product_id = $1
    `
	_, err := r.DB.ExecContext(ctx, query, productID, qty)
	return err
}

func (r *PGRepository) SaleCommitted(ctx context.Context, orderID string) (bool, error) {
	return r.MovementExistsByReference(ctx, "order", orderID)
}

// RestoreSale puts quantity back after an order that already went through
// CommitReservation is cancelled, with a compensating movement for the audit
// trail.
func (r *PGRepository) RestoreSale(ctx context.Context, orderID, productID string, qty float64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var before float64
	err = tx.GetContext(ctx, &before,
		`SELECT quantity FROM inventory WHERE product_id = $1 FOR UPDATE`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tx.Commit()
		}
		return err
	}

	updateQuery := `
        UPDATE inventory
        SET quantity = quantity + $2,
            updated_at = now()
        WHERE product_id = $1
    `
	if _, err := tx.ExecContext(ctx, updateQuery, productID, qty); err != nil {
		return err
	}

	refType := "order_cancel"
	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		MovementType:   "cancellation",
		QuantityChange: qty,
		QuantityBefore: before,
		QuantityAfter:  before + qty,
		ReferenceType:  &refType,
		ReferenceID:    &orderID,
		Notes:          fmt.Sprintf("order %s cancelled after sale", orderID),
		CreatedAt:      time.Now(),
	}
	movementQuery := `
        INSERT INTO inventory_movements (
            id, product_id, movement_type, quantity_change, quantity_before,
            quantity_after, reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :quantity_change, :quantity_before,
            :quantity_after, :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, movementQuery, movement); err != nil {
		return err
	}

	return tx.Commit()
}
