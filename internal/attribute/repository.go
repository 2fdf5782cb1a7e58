package attribute

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type Repository interface {
	CreateAttribute(ctx context.Context, a *model.ProductAttribute) error
	FindAttribute(ctx context.Context, id string) (*model.ProductAttribute, error)
	ListAttributes(ctx context.Context) ([]model.ProductAttribute, error)
	// MissingAttributes returns the ids with no matching attribute.
	MissingAttributes(ctx context.Context, ids []string) ([]string, error)

	CreateValue(ctx context.Context, v *model.ProductAttributeValue) error
	ListValues(ctx context.Context, attributeID string) ([]model.ProductAttributeValue, error)
	FindValues(ctx context.Context, ids []string) ([]model.ProductAttributeValue, error)

	// CreateProductType inserts the type and its attribute links atomically.
	CreateProductType(ctx context.Context, pt *model.ProductType) error
	FindProductType(ctx context.Context, id string) (*model.ProductType, error)
	ListProductTypes(ctx context.Context) ([]model.ProductType, error)
}
