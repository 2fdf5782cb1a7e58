package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StockStatusOutOfStock = "out-of-stock"
	StockStatusCritical   = "critical"
	StockStatusInStock    = "in-stock"
)

type Inventory struct {
	BaseModel
	ProductTypeID string          `db:"product_type_id" json:"product_type_id"`
	ProductID     string          `db:"product_id" json:"product_id"`
	SKU           string          `db:"sku" json:"sku"`
	UPC           string          `db:"upc" json:"upc"`
	MOQ           *int            `db:"moq" json:"moq"`
	RetailPrice   decimal.Decimal `db:"retail_price" json:"retail_price"`
	StorePrice    decimal.Decimal `db:"store_price" json:"store_price"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	IsDefault     bool            `db:"is_default" json:"is_default"`
	IsDigital     bool            `db:"is_digital" json:"is_digital"`
	Weight        float64         `db:"weight" json:"weight"`

	AttributeValues []ProductAttributeValue `db:"-" json:"attribute_values"`
	Stock           *Stock                  `db:"-" json:"stock,omitempty"`
}

type Stock struct {
	InventoryID   string     `db:"inventory_id" json:"inventory_id"`
	Units         int        `db:"units" json:"units"`
	UnitsSold     int        `db:"units_sold" json:"units_sold"`
	LastCheckedAt *time.Time `db:"last_checked_at" json:"last_checked_at"`
	Status        string     `db:"status" json:"status"`
}

// StockStatus classifies a unit count against the critical threshold.
func StockStatus(units, critical int) string {
	switch {
	case units <= 0:
		return StockStatusOutOfStock
	case units <= critical:
		return StockStatusCritical
	default:
		return StockStatusInStock
	}
}

type StockMovement struct {
	ID            string    `db:"id" json:"id"`
	InventoryID   string    `db:"inventory_id" json:"inventory_id"`
	MovementType  string    `db:"movement_type" json:"movement_type"`
	UnitsChange   int       `db:"units_change" json:"units_change"`
	UnitsBefore   int       `db:"units_before" json:"units_before"`
	UnitsAfter    int       `db:"units_after" json:"units_after"`
	ReferenceType *string   `db:"reference_type" json:"reference_type"`
	ReferenceID   *string   `db:"reference_id" json:"reference_id"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedBy     *string   `db:"created_by" json:"created_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
