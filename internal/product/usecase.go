package product

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/fekuna/omnipos-marketplace-service/pkg/search"
)

const (
	SearchIndex     = "products"
	ListCachePrefix = "products:list:"
)

type UseCase interface {
	CreateProduct(ctx context.Context, sellerID string, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, sellerID string, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, sellerID, id string) error
}

// CategoryTree is the part of the category module products depend on.
type CategoryTree interface {
	Exists(ctx context.Context, id string) (bool, error)
	SubtreeIDs(ctx context.Context, id string) ([]string, error)
}

// Searcher is satisfied by *search.Client.
type Searcher interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Search(ctx context.Context, index string, query map[string]any) (*search.SearchResponse, error)
	Delete(ctx context.Context, index, id string) error
}
