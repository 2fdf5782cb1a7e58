package dto

import "github.com/fekuna/omnipos-marketplace-service/internal/model"

type CategoryNode struct {
	model.Category
	HasChildren            bool `json:"has_children"`
	DirectProductCount     int  `json:"direct_product_count"`
	CumulativeProductCount int  `json:"cumulative_product_count"`
}

type CategoryDetail struct {
	CategoryNode
	Ancestors []model.Category `json:"ancestors"`
	Children  []CategoryNode   `json:"children"`
}

type TreeEntry struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	Slug                   string  `json:"slug"`
	ParentID               *string `json:"parent_id"`
	Level                  int     `json:"level"`
	HasChildren            bool    `json:"has_children"`
	DirectProductCount     int     `json:"direct_product_count"`
	CumulativeProductCount int     `json:"cumulative_product_count"`
}

// SubtreeDeletedEvent is published after a cascade delete.
type SubtreeDeletedEvent struct {
	CategoryID string   `json:"category_id"`
	DeletedIDs []string `json:"deleted_ids"`
}
