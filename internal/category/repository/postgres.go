package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const slugConstraint = "categories_slug_key"

type PGRepository struct {
	DB *sqlx.DB
}

var _ category.Repository = (*PGRepository)(nil)

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	query := `SELECT * FROM categories WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(ctx, r.DB, slug)
}

func (r *PGRepository) Snapshot(ctx context.Context) ([]model.Category, []model.CategoryCount, error) {
	tx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var cats []model.Category
	if err := tx.SelectContext(ctx, &cats, `SELECT * FROM categories ORDER BY name, id`); err != nil {
		return nil, nil, fmt.Errorf("select categories: %w", err)
	}

	var counts []model.CategoryCount
	if err := tx.SelectContext(ctx, &counts, `
        SELECT category_id, count(*) AS count
        FROM products
        WHERE category_id IS NOT NULL
        GROUP BY category_id`); err != nil {
		return nil, nil, fmt.Errorf("count products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return cats, counts, nil
}

func (r *PGRepository) MutateTree(ctx context.Context, fn func(ctx context.Context, tx category.TreeTx) error) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Readers are not blocked; concurrent tree writers queue here.
	if _, err := tx.ExecContext(ctx, `LOCK TABLE categories IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock categories: %w", err)
	}

	if err := fn(ctx, &treeTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type treeTx struct {
	tx *sqlx.Tx
}

func (t *treeTx) All(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	err := t.tx.SelectContext(ctx, &cats, `SELECT * FROM categories ORDER BY name, id`)
	return cats, err
}

func (t *treeTx) SlugExists(ctx context.Context, slug string) (bool, error) {
	return slugExists(ctx, t.tx, slug)
}

func (t *treeTx) Insert(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, name, slug, parent_id, level, created_at, updated_at)
        VALUES (:id, :name, :slug, :parent_id, :level, :created_at, :updated_at)
    `
	_, err := t.tx.NamedExecContext(ctx, query, c)
	return classify(err, c)
}

func (t *treeTx) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET name = :name,
            slug = :slug,
            parent_id = :parent_id,
            level = :level,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := t.tx.NamedExecContext(ctx, query, c)
	return classify(err, c)
}

func (t *treeTx) DeleteSubtree(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE products SET category_id = NULL, updated_at = NOW() WHERE category_id IN (?)`, ids)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, t.tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("clear product categories: %w", err)
	}

	// ids arrive children first, so no row is deleted while a child still
	// references it.
	for _, id := range ids {
		if _, err := t.tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}
	}
	return nil
}

func slugExists(ctx context.Context, q sqlx.QueryerContext, slug string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug)
	return exists, err
}

func classify(err error, c *model.Category) error {
	if err == nil {
		return nil
	}
	if constraint, ok := postgres.UniqueViolation(err); ok && constraint == slugConstraint {
		return apperror.UniquenessRaceLost(constraint, err)
	}
	if _, ok := postgres.ForeignKeyViolation(err); ok && c.ParentID != nil {
		return apperror.DanglingReference("parent category", *c.ParentID)
	}
	return err
}
