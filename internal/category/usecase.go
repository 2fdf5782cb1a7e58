package category

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// TreeCacheKey holds the cached pre-order listing; product writes invalidate it too.
const TreeCacheKey = "categories:tree"

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*dto.CategoryDetail, error)
	ListChildren(ctx context.Context, id string) ([]dto.CategoryNode, error)
	ListTree(ctx context.Context) ([]dto.TreeEntry, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string, confirm bool) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
	// SubtreeIDs returns id plus all of its descendants.
	SubtreeIDs(ctx context.Context, id string) ([]string, error)
}
