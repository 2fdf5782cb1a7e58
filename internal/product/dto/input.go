package dto

type CreateProductInput struct {
	WebID       string  `json:"web_id" binding:"required,max=64"`
	Name        string  `json:"name" binding:"required,max=255"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"is_active"`
	IsNew       bool    `json:"is_new"`
}

// UpdateProductInput replaces the mutable fields. web_id never changes.
type UpdateProductInput struct {
	ID          string  `json:"-"`
	Name        string  `json:"name" binding:"required,max=255"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	Description string  `json:"description"`
	IsActive    bool    `json:"is_active"`
	IsNew       bool    `json:"is_new"`
}

type ProductFilters struct {
	SellerID           string `form:"seller_id" json:"seller_id,omitempty"`
	CategoryID         string `form:"category_id" json:"category_id,omitempty"`
	IncludeDescendants bool   `form:"include_descendants" json:"include_descendants,omitempty"`
	IsActive           *bool  `form:"is_active" json:"is_active,omitempty"`
	SearchQuery        string `form:"search" json:"search,omitempty"`
	SortBy             string `form:"sort_by" json:"sort_by,omitempty" binding:"omitempty,oneof=name created_at"`
	SortOrder          string `form:"sort_order" json:"sort_order,omitempty" binding:"omitempty,oneof=asc desc"`
	Page               int    `form:"page" json:"page" binding:"omitempty,min=1"`
	PageSize           int    `form:"page_size" json:"page_size" binding:"omitempty,min=1,max=100"`

	// CategoryIDs is resolved from CategoryID and IncludeDescendants.
	CategoryIDs []string `form:"-" json:"category_ids,omitempty"`
}
