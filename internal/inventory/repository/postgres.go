package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

var _ inventory.Repository = (*PGRepository)(nil)

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, inv *model.Inventory, stock *model.Stock) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO product_inventories (
            id, product_type_id, product_id, sku, upc, moq,
            retail_price, store_price, is_active, is_default, is_digital,
            weight, created_at, updated_at
        )
        VALUES (
            :id, :product_type_id, :product_id, :sku, :upc, :moq,
            :retail_price, :store_price, :is_active, :is_default, :is_digital,
            :weight, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, inv); err != nil {
		if constraint, ok := postgres.UniqueViolation(err); ok {
			field := "sku"
			if strings.Contains(constraint, "upc") {
				field = "upc"
			}
			return apperror.Conflict(field + " is already in use")
		}
		return fmt.Errorf("failed to insert inventory: %w", err)
	}

	for _, v := range inv.AttributeValues {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO product_inventory_attribute_values (inventory_id, attribute_value_id)
            VALUES ($1, $2)`, inv.ID, v.ID); err != nil {
			return fmt.Errorf("failed to link attribute value: %w", err)
		}
	}

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO stocks (inventory_id, units, units_sold, last_checked_at, status)
        VALUES (:inventory_id, :units, :units_sold, :last_checked_at, :status)`, stock); err != nil {
		return fmt.Errorf("failed to insert stock: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Inventory, error) {
	return r.findOne(ctx, `SELECT * FROM product_inventories WHERE id = $1`, id)
}

func (r *PGRepository) FindBySKU(ctx context.Context, sku string) (*model.Inventory, error) {
	return r.findOne(ctx, `SELECT * FROM product_inventories WHERE sku = $1`, sku)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg any) (*model.Inventory, error) {
	var inv model.Inventory
	if err := r.DB.GetContext(ctx, &inv, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	items := []model.Inventory{inv}
	if err := r.loadDetails(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *PGRepository) ListByProduct(ctx context.Context, productID string) ([]model.Inventory, error) {
	items := []model.Inventory{}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM product_inventories WHERE product_id = $1
        ORDER BY is_default DESC, created_at`, productID)
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadDetails fills attribute values and stock for items in two queries.
func (r *PGRepository) loadDetails(ctx context.Context, items []model.Inventory) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
		items[i].AttributeValues = []model.ProductAttributeValue{}
	}

	var values []struct {
		InventoryID string `db:"inventory_id"`
		model.ProductAttributeValue
	}
	query, args, err := sqlx.In(`
        SELECT iav.inventory_id, v.id, v.attribute_id, v.value
        FROM product_inventory_attribute_values iav
        JOIN product_attribute_values v ON v.id = iav.attribute_value_id
        WHERE iav.inventory_id IN (?)
        ORDER BY v.value`, ids)
	if err != nil {
		return err
	}
	if err := r.DB.SelectContext(ctx, &values, r.DB.Rebind(query), args...); err != nil {
		return err
	}
	for _, v := range values {
		i := index[v.InventoryID]
		items[i].AttributeValues = append(items[i].AttributeValues, v.ProductAttributeValue)
	}

	var stocks []model.Stock
	query, args, err = sqlx.In(`SELECT * FROM stocks WHERE inventory_id IN (?)`, ids)
	if err != nil {
		return err
	}
	if err := r.DB.SelectContext(ctx, &stocks, r.DB.Rebind(query), args...); err != nil {
		return err
	}
	for _, s := range stocks {
		s := s
		items[index[s.InventoryID]].Stock = &s
	}
	return nil
}

func (r *PGRepository) AdjustStock(ctx context.Context, inventoryID string, change inventory.StockChange) (*model.Stock, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var stock model.Stock
	if err := tx.GetContext(ctx, &stock, `SELECT * FROM stocks WHERE inventory_id = $1 FOR UPDATE`, inventoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("stock")
		}
		return nil, err
	}

	movement, err := change(&stock)
	if err != nil {
		return nil, err
	}

	if _, err := tx.NamedExecContext(ctx, `
        UPDATE stocks
        SET units = :units, units_sold = :units_sold, status = :status, last_checked_at = :last_checked_at
        WHERE inventory_id = :inventory_id`, &stock); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO stock_movements (
            id, inventory_id, movement_type, units_change, units_before, units_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :inventory_id, :movement_type, :units_change, :units_before, :units_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )`, movement); err != nil {
		return nil, fmt.Errorf("failed to log movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{"inventory_id = :inventory_id"}
	args := map[string]any{"inventory_id": f.InventoryID}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM stock_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC, id"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	items := []model.StockMovement{}
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListStocks(ctx context.Context) ([]model.Stock, error) {
	out := []model.Stock{}
	err := r.DB.SelectContext(ctx, &out, `SELECT * FROM stocks ORDER BY inventory_id`)
	return out, err
}

func (r *PGRepository) MarkChecked(ctx context.Context, stocks []model.Stock, at time.Time) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE stocks SET status = $2, last_checked_at = $3 WHERE inventory_id = $1`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stocks {
		if _, err := stmt.ExecContext(ctx, s.InventoryID, s.Status, at); err != nil {
			return err
		}
	}
	return tx.Commit()
}
