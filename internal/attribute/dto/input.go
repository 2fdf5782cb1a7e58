package dto

type CreateAttributeInput struct {
	Name        string  `json:"name" binding:"required,max=128"`
	Description *string `json:"description"`
}

type AddValueInput struct {
	AttributeID string `json:"-"`
	Value       string `json:"value" binding:"required,max=255"`
}

type CreateProductTypeInput struct {
	Name         string   `json:"name" binding:"required,max=255"`
	AttributeIDs []string `json:"attribute_ids" binding:"dive,uuid"`
}
