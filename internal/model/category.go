package model

type Category struct {
	BaseModel
	Name     string  `db:"name" json:"name"`
	Slug     string  `db:"slug" json:"slug"`
	ParentID *string `db:"parent_id" json:"parent_id"` // nil for roots
	Level    int     `db:"level" json:"level"`
}

// CategoryCount is one row of the products-per-category aggregate.
type CategoryCount struct {
	CategoryID string `db:"category_id"`
	Count      int    `db:"count"`
}
