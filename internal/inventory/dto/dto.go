package dto

import "time"

// MovementFilters narrows a movement log. SellerID, when set, must own the
// inventory's product.
type MovementFilters struct {
	InventoryID  string `form:"-"`
	SellerID     string `form:"-"`
	MovementType string `form:"movement_type" binding:"omitempty,oneof=adjustment sale"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderCreatedEvent is consumed from the orders topic.
type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID    string             `json:"id"`
	Items []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}
