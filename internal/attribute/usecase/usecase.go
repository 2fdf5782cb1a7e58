package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute"
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type attributeUseCase struct {
	repo   attribute.Repository
	logger logger.ZapLogger
}

func NewAttributeUseCase(repo attribute.Repository, log logger.ZapLogger) attribute.UseCase {
	return &attributeUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *attributeUseCase) CreateAttribute(ctx context.Context, input *dto.CreateAttributeInput) (*model.ProductAttribute, error) {
	a := &model.ProductAttribute{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	if err := uc.repo.CreateAttribute(ctx, a); err != nil {
		return nil, err
	}
	uc.logger.Info("attribute created", zap.String("attribute_id", a.ID), zap.String("name", a.Name))
	return a, nil
}

func (uc *attributeUseCase) ListAttributes(ctx context.Context) ([]model.ProductAttribute, error) {
	return uc.repo.ListAttributes(ctx)
}

func (uc *attributeUseCase) AddAttributeValue(ctx context.Context, input *dto.AddValueInput) (*model.ProductAttributeValue, error) {
	a, err := uc.repo.FindAttribute(ctx, input.AttributeID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperror.DanglingReference("attribute", input.AttributeID)
	}

	v := &model.ProductAttributeValue{
		ID:          uuid.New().String(),
		AttributeID: a.ID,
		Value:       strings.TrimSpace(input.Value),
	}
	if err := uc.repo.CreateValue(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (uc *attributeUseCase) ListAttributeValues(ctx context.Context, attributeID string) ([]model.ProductAttributeValue, error) {
	a, err := uc.repo.FindAttribute(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperror.NotFound("attribute")
	}
	return uc.repo.ListValues(ctx, attributeID)
}

func (uc *attributeUseCase) GetAttributeValues(ctx context.Context, ids []string) ([]model.ProductAttributeValue, error) {
	return uc.repo.FindValues(ctx, ids)
}

// CreateProductType rejects unknown attribute ids with one field error
// listing all of them.
func (uc *attributeUseCase) CreateProductType(ctx context.Context, input *dto.CreateProductTypeInput) (*model.ProductType, error) {
	ids := dedupe(input.AttributeIDs)
	missing, err := uc.repo.MissingAttributes(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperror.FieldInvalid("attribute_ids", "unknown attributes: "+strings.Join(missing, ", "))
	}

	pt := &model.ProductType{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(input.Name),
		Attributes: make([]model.ProductAttribute, 0, len(ids)),
	}
	for _, id := range ids {
		pt.Attributes = append(pt.Attributes, model.ProductAttribute{ID: id})
	}
	if err := uc.repo.CreateProductType(ctx, pt); err != nil {
		return nil, err
	}

	uc.logger.Info("product type created", zap.String("product_type_id", pt.ID), zap.Int("attributes", len(ids)))
	return uc.GetProductType(ctx, pt.ID)
}

func (uc *attributeUseCase) GetProductType(ctx context.Context, id string) (*model.ProductType, error) {
	pt, err := uc.repo.FindProductType(ctx, id)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, apperror.NotFound("product type")
	}
	return pt, nil
}

func (uc *attributeUseCase) ListProductTypes(ctx context.Context) ([]model.ProductType, error) {
	return uc.repo.ListProductTypes(ctx)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
