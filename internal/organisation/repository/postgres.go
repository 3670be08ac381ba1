package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/organisation/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Organisation) error {
	query := `
        INSERT INTO organisations (
            id, kind, legal_name, contact_email, contact_phone, address_line,
            city, postal_code, country, customer_group_id, payment_terms_days,
            is_active, created_at, updated_at
        )
        VALUES (
            :id, :kind, :legal_name, :contact_email, :contact_phone, :address_line,
            :city, :postal_code, :country, :customer_group_id, :payment_terms_days,
            :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, o)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Organisation, error) {
	var org model.Organisation
	err := r.DB.GetContext(ctx, &org, `SELECT * FROM organisations WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrganisationFilters) ([]model.Organisation, int, error) {
	var orgs []model.Organisation
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Kind != "" {
		conditions = append(conditions, "kind = :kind")
		args["kind"] = f.Kind
	}
	if f.CustomerGroupID != "" {
		conditions = append(conditions, "customer_group_id = :customer_group_id")
		args["customer_group_id"] = f.CustomerGroupID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "legal_name ILIKE :search")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM organisations" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM organisations" + whereClause + " ORDER BY legal_name ASC"

	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &orgs, args)
	if err != nil {
		return nil, 0, err
	}

	return orgs, count, nil
}

func (r *PGRepository) Update(ctx context.Context, o *model.Organisation) error {
	query := `
        UPDATE organisations
        SET legal_name = :legal_name,
            contact_email = :contact_email,
            contact_phone = :contact_phone,
            address_line = :address_line,
            city = :city,
            postal_code = :postal_code,
            country = :country,
            customer_group_id = :customer_group_id,
            payment_terms_days = :payment_terms_days,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, o)
	return err
}

func (r *PGRepository) CreateGroup(ctx context.Context, g *model.CustomerGroup) error {
	query := `
        INSERT INTO customer_groups (id, name, discount_rate, created_at, updated_at)
        VALUES (:id, :name, :discount_rate, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, g)
	return err
}

func (r *PGRepository) FindGroupByID(ctx context.Context, id string) (*model.CustomerGroup, error) {
	var group model.CustomerGroup
	err := r.DB.GetContext(ctx, &group, `SELECT * FROM customer_groups WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *PGRepository) FindGroups(ctx context.Context) ([]model.CustomerGroup, error) {
	var groups []model.CustomerGroup
	err := r.DB.SelectContext(ctx, &groups, `SELECT * FROM customer_groups ORDER BY name ASC`)
	return groups, err
}

func (r *PGRepository) UpdateGroup(ctx context.Context, g *model.CustomerGroup) error {
	query := `
        UPDATE customer_groups
        SET name = :name,
            discount_rate = :discount_rate,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, g)
	return err
}

func (r *PGRepository) DeleteGroup(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM customer_groups WHERE id = $1`, id)
	return err
}

func (r *PGRepository) CountGroupMembers(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM organisations WHERE customer_group_id = $1`, groupID)
	return count, err
}
