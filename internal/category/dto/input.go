package dto

type CreateCategoryInput struct {
	Name     string  `json:"name" binding:"required,max=64"`
	Slug     string  `json:"slug" binding:"omitempty,max=128"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
}

// UpdateCategoryInput replaces name and parent; a nil ParentID makes the
// category a root. Slug is only changed when set, and an empty slug is
// rejected rather than re-allocated.
type UpdateCategoryInput struct {
	ID       string  `json:"-"`
	Name     string  `json:"name" binding:"required,max=64"`
	Slug     *string `json:"slug" binding:"omitempty,max=128"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
}
