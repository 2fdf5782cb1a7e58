package attribute

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/attribute/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type UseCase interface {
	CreateAttribute(ctx context.Context, input *dto.CreateAttributeInput) (*model.ProductAttribute, error)
	ListAttributes(ctx context.Context) ([]model.ProductAttribute, error)
	AddAttributeValue(ctx context.Context, input *dto.AddValueInput) (*model.ProductAttributeValue, error)
	ListAttributeValues(ctx context.Context, attributeID string) ([]model.ProductAttributeValue, error)
	// GetAttributeValues returns the values in ids; unknown ids are skipped.
	GetAttributeValues(ctx context.Context, ids []string) ([]model.ProductAttributeValue, error)

	CreateProductType(ctx context.Context, input *dto.CreateProductTypeInput) (*model.ProductType, error)
	GetProductType(ctx context.Context, id string) (*model.ProductType, error)
	ListProductTypes(ctx context.Context) ([]model.ProductType, error)
}
