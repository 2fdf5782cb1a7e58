package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/identifier"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/fekuna/omnipos-marketplace-service/pkg/cache"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	listCacheTTL    = 5 * time.Minute
	defaultPageSize = 20
)

type productUseCase struct {
	repo       product.Repository
	categories product.CategoryTree
	cache      cache.Store
	es         product.Searcher
	logger     logger.ZapLogger
	now        func() time.Time

	indexOnce sync.Once
	// bg tracks search index syncs running after a write returned.
	bg sync.WaitGroup
	// syncTails holds the last pending sync per product id.
	syncMu    sync.Mutex
	syncTails map[string]chan struct{}
}

// NewProductUseCase accepts nil cache and es; listing then always hits Postgres.
func NewProductUseCase(repo product.Repository, categories product.CategoryTree, cache cache.Store, es product.Searcher, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:       repo,
		categories: categories,
		cache:      cache,
		es:         es,
		logger:     log,
		now:        time.Now,
		syncTails:  map[string]chan struct{}{},
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, sellerID string, input *dto.CreateProductInput) (*model.Product, error) {
	if err := uc.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := uc.now()
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	p := &model.Product{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		WebID:       input.WebID,
		Slug:        identifier.Slugify(input.Name),
		Name:        input.Name,
		CategoryID:  emptyToNil(input.CategoryID),
		SellerID:    &sellerID,
		Description: input.Description,
		IsActive:    isActive,
		IsNew:       input.IsNew,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.afterWrite(ctx, sellerID)
	uc.syncToElastic(p)
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("product")
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = defaultPageSize
	}
	if err := uc.resolveCategories(ctx, filters); err != nil {
		return nil, 0, err
	}

	cacheKey := uc.cacheKey(filters)
	if uc.cache != nil && cacheKey != "" {
		var cached listResult
		hit, err := uc.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			uc.logger.Warn("failed to read product list cache", zap.String("key", cacheKey), zap.Error(err))
		}
		if hit {
			return cached.Products, cached.Count, nil
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		products, total, err := uc.search(ctx, filters)
		if err == nil {
			return products, total, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if uc.cache != nil && cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, listResult{Products: products, Count: count}, listCacheTTL); err != nil {
			uc.logger.Warn("failed to cache product list", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return products, count, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, sellerID string, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.owned(ctx, sellerID, input.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	p.Name = input.Name
	p.Slug = identifier.Slugify(input.Name)
	p.CategoryID = emptyToNil(input.CategoryID)
	p.Description = input.Description
	p.IsActive = input.IsActive
	p.IsNew = input.IsNew
	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.afterWrite(ctx, sellerID)
	uc.syncToElastic(p)
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, sellerID, id string) error {
	if _, err := uc.owned(ctx, sellerID, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.afterWrite(ctx, sellerID)
	uc.removeFromElastic(id)
	return nil
}

// owned loads the product and checks it belongs to sellerID. Other sellers'
// products are reported as missing.
func (uc *productUseCase) owned(ctx context.Context, sellerID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.SellerID == nil || *p.SellerID != sellerID {
		return nil, apperror.NotFound("product")
	}
	return p, nil
}

func (uc *productUseCase) checkCategory(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	ok, err := uc.categories.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.DanglingReference("category", *id)
	}
	return nil
}

func (uc *productUseCase) resolveCategories(ctx context.Context, f *dto.ProductFilters) error {
	f.CategoryIDs = nil
	if f.CategoryID == "" {
		return nil
	}
	if !f.IncludeDescendants {
		f.CategoryIDs = []string{f.CategoryID}
		return nil
	}
	ids, err := uc.categories.SubtreeIDs(ctx, f.CategoryID)
	if err != nil {
		return err
	}
	f.CategoryIDs = ids
	return nil
}

type listResult struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
}

// cacheKey groups list keys by seller so a seller's writes only drop their
// own lists plus the unscoped ones.
func (uc *productUseCase) cacheKey(f *dto.ProductFilters) string {
	data, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%s:%x", product.ListCachePrefix, sellerScope(f.SellerID), md5.Sum(data))
}

func sellerScope(sellerID string) string {
	if sellerID == "" {
		return "all"
	}
	return sellerID
}

// afterWrite drops the cached lists the write may affect and the category
// tree, whose product counts changed.
func (uc *productUseCase) afterWrite(ctx context.Context, sellerID string) {
	if uc.cache == nil {
		return
	}
	for _, scope := range []string{sellerID, sellerScope("")} {
		pattern := product.ListCachePrefix + scope + ":*"
		if err := uc.cache.DeletePattern(ctx, pattern); err != nil {
			uc.logger.Warn("failed to invalidate product list cache", zap.String("pattern", pattern), zap.Error(err))
		}
	}
	if err := uc.cache.Delete(ctx, category.TreeCacheKey); err != nil {
		uc.logger.Warn("failed to invalidate category tree cache", zap.Error(err))
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
