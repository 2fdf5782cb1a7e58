package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

var _ attribute.Repository = (*PGRepository)(nil)

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateAttribute(ctx context.Context, a *model.ProductAttribute) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO product_attributes (id, name, description)
        VALUES (:id, :name, :description)`, a)
	if _, ok := postgres.UniqueViolation(err); ok {
		return apperror.Conflict(fmt.Sprintf("attribute %q already exists", a.Name))
	}
	return err
}

func (r *PGRepository) FindAttribute(ctx context.Context, id string) (*model.ProductAttribute, error) {
	var a model.ProductAttribute
	if err := r.DB.GetContext(ctx, &a, `SELECT * FROM product_attributes WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) ListAttributes(ctx context.Context) ([]model.ProductAttribute, error) {
	out := []model.ProductAttribute{}
	err := r.DB.SelectContext(ctx, &out, `SELECT * FROM product_attributes ORDER BY name`)
	return out, err
}

func (r *PGRepository) MissingAttributes(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM product_attributes WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var found []string
	if err := r.DB.SelectContext(ctx, &found, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *PGRepository) CreateValue(ctx context.Context, v *model.ProductAttributeValue) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO product_attribute_values (id, attribute_id, value)
        VALUES (:id, :attribute_id, :value)`, v)
	if _, ok := postgres.ForeignKeyViolation(err); ok {
		return apperror.DanglingReference("attribute", v.AttributeID)
	}
	return err
}

func (r *PGRepository) ListValues(ctx context.Context, attributeID string) ([]model.ProductAttributeValue, error) {
	out := []model.ProductAttributeValue{}
	err := r.DB.SelectContext(ctx, &out, `
        SELECT * FROM product_attribute_values WHERE attribute_id = $1 ORDER BY value`, attributeID)
	return out, err
}

func (r *PGRepository) FindValues(ctx context.Context, ids []string) ([]model.ProductAttributeValue, error) {
	out := []model.ProductAttributeValue{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM product_attribute_values WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	err = r.DB.SelectContext(ctx, &out, r.DB.Rebind(query), args...)
	return out, err
}

func (r *PGRepository) CreateProductType(ctx context.Context, pt *model.ProductType) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO product_types (id, name) VALUES ($1, $2)`, pt.ID, pt.Name); err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return apperror.Conflict(fmt.Sprintf("product type %q already exists", pt.Name))
		}
		return err
	}
	for _, a := range pt.Attributes {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO product_type_attributes (product_type_id, attribute_id)
            VALUES ($1, $2) ON CONFLICT DO NOTHING`, pt.ID, a.ID)
		if _, ok := postgres.ForeignKeyViolation(err); ok {
			return apperror.DanglingReference("attribute", a.ID)
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PGRepository) FindProductType(ctx context.Context, id string) (*model.ProductType, error) {
	var pt model.ProductType
	if err := r.DB.GetContext(ctx, &pt, `SELECT id, name FROM product_types WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	pt.Attributes = []model.ProductAttribute{}
	err := r.DB.SelectContext(ctx, &pt.Attributes, `
        SELECT a.* FROM product_attributes a
        JOIN product_type_attributes pta ON pta.attribute_id = a.id
        WHERE pta.product_type_id = $1
        ORDER BY a.name`, id)
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

func (r *PGRepository) ListProductTypes(ctx context.Context) ([]model.ProductType, error) {
	out := []model.ProductType{}
	err := r.DB.SelectContext(ctx, &out, `SELECT id, name FROM product_types ORDER BY name`)
	return out, err
}
