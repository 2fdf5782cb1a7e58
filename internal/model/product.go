package model

type Product struct {
	BaseModel
	WebID       string  `db:"web_id" json:"web_id"`
	Slug        string  `db:"slug" json:"slug"`
	Name        string  `db:"name" json:"name"`
	CategoryID  *string `db:"category_id" json:"category_id"` // cleared when the category is deleted
	SellerID    *string `db:"seller_id" json:"seller_id"`
	Description string  `db:"description" json:"description"`
	IsActive    bool    `db:"is_active" json:"is_active"`
	IsNew       bool    `db:"is_new" json:"is_new"`
}
