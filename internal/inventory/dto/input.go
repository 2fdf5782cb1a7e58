package dto

import "github.com/shopspring/decimal"

type CreateInventoryInput struct {
	ProductID         string          `json:"product_id" binding:"required,uuid"`
	ProductTypeID     string          `json:"product_type_id" binding:"required,uuid"`
	SKU               string          `json:"sku" binding:"required,max=32"`
	UPC               string          `json:"upc" binding:"required,len=12,numeric"`
	MOQ               *int            `json:"moq" binding:"omitempty,min=1"`
	RetailPrice       decimal.Decimal `json:"retail_price"`
	StorePrice        decimal.Decimal `json:"store_price"`
	IsActive          bool            `json:"is_active"`
	IsDefault         bool            `json:"is_default"`
	IsDigital         bool            `json:"is_digital"`
	Weight            float64         `json:"weight" binding:"min=0"`
	AttributeValueIDs []string        `json:"attribute_value_ids" binding:"dive,uuid"`
}

// AdjustStockInput moves units by UnitsChange. SellerID, when set, must own
// the inventory's product.
type AdjustStockInput struct {
	InventoryID   string `json:"-"`
	SellerID      string `json:"-"`
	UnitsChange   int    `json:"units_change" binding:"required,ne=0"`
	Notes         string `json:"notes" binding:"max=255"`
	MovementType  string `json:"-"`
	ReferenceType string `json:"-"`
	ReferenceID   string `json:"-"`
}
