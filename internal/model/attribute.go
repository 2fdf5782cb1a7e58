package model

type ProductAttribute struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
}

type ProductAttributeValue struct {
	ID          string `db:"id" json:"id"`
	AttributeID string `db:"attribute_id" json:"attribute_id"`
	Value       string `db:"value" json:"value"`
}

type ProductType struct {
	ID         string             `db:"id" json:"id"`
	Name       string             `db:"name" json:"name"`
	Attributes []ProductAttribute `db:"-" json:"attributes,omitempty"`
}
