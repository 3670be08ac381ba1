package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/verone/catalog-service/internal/group/dto"
	"github.com/verone/catalog-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const groupUpdateQuery = `
    UPDATE variant_groups
    SET name = :name,
        base_sku = :base_sku,
        variant_type = :variant_type,
        category_id = :category_id,
        supplier_id = :supplier_id,
        has_common_supplier = :has_common_supplier,
        length_cm = :length_cm,
        width_cm = :width_cm,
        height_cm = :height_cm,
        dimension_unit = :dimension_unit,
        has_common_dimensions = :has_common_dimensions,
        weight_kg = :weight_kg,
        has_common_weight = :has_common_weight,
        style = :style,
        room_tags = :room_tags,
        member_count = :member_count,
        archived_at = :archived_at,
        updated_at = :updated_at
    WHERE id = :id
`

const memberUpdateQuery = `
    UPDATE products
    SET name = :name,
        sku = :sku,
        group_id = :group_id,
        position = :position,
        variant_attrs = :variant_attrs,
        category_id = :category_id,
        supplier_id = :supplier_id,
        length_cm = :length_cm,
        width_cm = :width_cm,
        height_cm = :height_cm,
        dimension_unit = :dimension_unit,
        weight_kg = :weight_kg,
        room_tags = :room_tags,
        status = :status,
        archived_at = :archived_at,
        updated_at = :updated_at
    WHERE id = :id
`

func (r *PGRepository) CreateGroup(ctx context.Context, g *model.VariantGroup) error {
	query := `
        INSERT INTO variant_groups (
            id, name, base_sku, variant_type, category_id, supplier_id,
            has_common_supplier, length_cm, width_cm, height_cm, dimension_unit,
            has_common_dimensions, weight_kg, has_common_weight, style, room_tags,
            member_count, archived_at, created_at, updated_at
        )
        VALUES (
            :id, :name, :base_sku, :variant_type, :category_id, :supplier_id,
            :has_common_supplier, :length_cm, :width_cm, :height_cm, :dimension_unit,
            :has_common_dimensions, :weight_kg, :has_common_weight, :style, :room_tags,
            :member_count, :archived_at, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, g)
	return err
}

func (r *PGRepository) FindGroupByID(ctx context.Context, id string) (*model.VariantGroup, error) {
	var g model.VariantGroup
	err := r.DB.GetContext(ctx, &g, `SELECT * FROM variant_groups WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *PGRepository) FindGroups(ctx context.Context, f *dto.GroupFilters) ([]model.VariantGroup, int, error) {
	var groups []model.VariantGroup
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Archived != nil {
		if *f.Archived {
			conditions = append(conditions, "archived_at IS NOT NULL")
		} else {
			conditions = append(conditions, "archived_at IS NULL")
		}
	}
	if f.VariantType != "" {
		conditions = append(conditions, "variant_type = :variant_type")
		args["variant_type"] = f.VariantType
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR base_sku ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM variant_groups" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM variant_groups" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &groups, args)
	if err != nil {
		return nil, 0, err
	}

	return groups, count, nil
}

func (r *PGRepository) SaveGroup(ctx context.Context, g *model.VariantGroup) error {
	_, err := r.DB.NamedExecContext(ctx, groupUpdateQuery, g)
	return err
}

func (r *PGRepository) DeleteGroup(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        UPDATE products
        SET group_id = NULL, position = NULL, updated_at = NOW()
        WHERE group_id = $1
    `, id)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM variant_groups WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) FindMembers(ctx context.Context, groupID string) ([]model.Product, error) {
	var members []model.Product
	err := r.DB.SelectContext(ctx, &members, `
        SELECT * FROM products WHERE group_id = $1 ORDER BY position ASC
    `, groupID)
	return members, err
}

func (r *PGRepository) FindProductByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindProducts(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var products []model.Product
	err = r.DB.SelectContext(ctx, &products, query, args...)
	return products, err
}

func (r *PGRepository) InsertMember(ctx context.Context, g *model.VariantGroup, p *model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertQuery := `
        INSERT INTO products (
            id, name, sku, group_id, position, variant_attrs, category_id,
            supplier_id, base_price, cost_price, length_cm, width_cm, height_cm,
            dimension_unit, weight_kg, room_tags, status, archived_at,
            created_at, updated_at
        )
        VALUES (
            :id, :name, :sku, :group_id, :position, :variant_attrs, :category_id,
            :supplier_id, :base_price, :cost_price, :length_cm, :width_cm, :height_cm,
            :dimension_unit, :weight_kg, :room_tags, :status, :archived_at,
            :created_at, :updated_at
        )
    `
	if _, err = tx.NamedExecContext(ctx, insertQuery, p); err != nil {
		return err
	}

	if _, err = tx.NamedExecContext(ctx, groupUpdateQuery, g); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) SaveMember(ctx context.Context, p *model.Product) error {
	_, err := r.DB.NamedExecContext(ctx, memberUpdateQuery, p)
	return err
}

func (r *PGRepository) SaveCascade(ctx context.Context, g *model.VariantGroup, members []model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, groupUpdateQuery, g); err != nil {
		return err
	}

	for i := range members {
		if _, err = tx.NamedExecContext(ctx, memberUpdateQuery, &members[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}
