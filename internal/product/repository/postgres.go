package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/fekuna/omnipos-marketplace-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

var _ product.Repository = (*PGRepository)(nil)

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func classify(err error, p *model.Product) error {
	if err == nil {
		return nil
	}
	if constraint, ok := postgres.UniqueViolation(err); ok && constraint == "products_web_id_key" {
		return apperror.Conflict(fmt.Sprintf("web_id %q is already in use", p.WebID))
	}
	if constraint, ok := postgres.ForeignKeyViolation(err); ok {
		if strings.Contains(constraint, "category") && p.CategoryID != nil {
			return apperror.DanglingReference("category", *p.CategoryID)
		}
		if p.SellerID != nil {
			return apperror.DanglingReference("seller", *p.SellerID)
		}
	}
	return err
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, web_id, slug, name, category_id, seller_id, description,
            is_active, is_new, created_at, updated_at
        )
        VALUES (
            :id, :web_id, :slug, :name, :category_id, :seller_id, :description,
            :is_active, :is_new, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return classify(err, p)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
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

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	conditions := []string{}
	args := map[string]any{}

	if f.SellerID != "" {
		conditions = append(conditions, "seller_id = :seller_id")
		args["seller_id"] = f.SellerID
	}
	if len(f.CategoryIDs) > 0 {
		conditions = append(conditions, "category_id IN (:category_ids)")
		args["category_ids"] = f.CategoryIDs
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR web_id ILIKE :search OR description ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := r.bind("SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	if f.SortBy != "" {
		// whitelisted columns only
		switch f.SortBy {
		case "name":
			orderBy = "name"
		case "created_at":
			orderBy = "created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s, id", whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	listQuery, listArgs, err := r.bind(query, args)
	if err != nil {
		return nil, 0, err
	}
	products := []model.Product{}
	if err := r.DB.SelectContext(ctx, &products, listQuery, listArgs...); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

// bind expands named parameters and IN lists into positional arguments.
func (r *PGRepository) bind(query string, args map[string]any) (string, []any, error) {
	q, a, err := sqlx.Named(query, args)
	if err != nil {
		return "", nil, err
	}
	q, a, err = sqlx.In(q, a...)
	if err != nil {
		return "", nil, err
	}
	return r.DB.Rebind(q), a, nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET slug = :slug,
            name = :name,
            category_id = :category_id,
            description = :description,
            is_active = :is_active,
            is_new = :is_new,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return classify(err, p)
}

// Delete removes the product together with its inventory rows.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM stock_movements WHERE inventory_id IN (SELECT id FROM product_inventories WHERE product_id = $1)`,
		`DELETE FROM stocks WHERE inventory_id IN (SELECT id FROM product_inventories WHERE product_id = $1)`,
		`DELETE FROM product_inventory_attribute_values WHERE inventory_id IN (SELECT id FROM product_inventories WHERE product_id = $1)`,
		`DELETE FROM product_inventories WHERE product_id = $1`,
		`DELETE FROM products WHERE id = $1`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
