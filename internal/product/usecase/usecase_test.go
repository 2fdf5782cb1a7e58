package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu       sync.Mutex
	products map[string]model.Product
	findAll  int
}

func newMemRepo() *memRepo { return &memRepo{products: map[string]model.Product{}} }

func (r *memRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.products {
		if other.WebID == p.WebID {
			return apperror.Conflict("web_id is already in use")
		}
	}
	r.products[p.ID] = *p
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *memRepo) FindAll(_ context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findAll++

	out := []model.Product{}
	for _, p := range r.products {
		if f.SellerID != "" && (p.SellerID == nil || *p.SellerID != f.SellerID) {
			continue
		}
		if len(f.CategoryIDs) > 0 && (p.CategoryID == nil || !slices.Contains(f.CategoryIDs, *p.CategoryID)) {
			continue
		}
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if f.SearchQuery != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.SearchQuery)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (r *memRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

// fakeTree knows electronics -> tv and an unrelated garden category.
type fakeTree struct{}

func (fakeTree) Exists(_ context.Context, id string) (bool, error) {
	return id == "electronics" || id == "tv" || id == "garden", nil
}

func (fakeTree) SubtreeIDs(_ context.Context, id string) ([]string, error) {
	switch id {
	case "electronics":
		return []string{"electronics", "tv"}, nil
	case "tv", "garden":
		return []string{id}, nil
	}
	return nil, apperror.NotFound("category")
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type fakeSearcher struct {
	mu         sync.Mutex
	indexes    int
	docs       map[string]model.Product
	failQuery  bool
	lastQuery  map[string]any
	// indexDelay slows index writes down so later operations could overtake them.
	indexDelay time.Duration
}

func newFakeSearcher() *fakeSearcher { return &fakeSearcher{docs: map[string]model.Product{}} }

func (s *fakeSearcher) CreateIndex(context.Context, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes++
	return nil
}

func (s *fakeSearcher) Index(_ context.Context, _, id string, doc any) error {
	time.Sleep(s.indexDelay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = doc.(model.Product)
	return nil
}

func (s *fakeSearcher) Search(_ context.Context, _ string, query map[string]any) (*search.SearchResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = query
	if s.failQuery {
		return nil, errors.New("cluster unavailable")
	}

	type hit struct {
		ID     string        `json:"_id"`
		Source model.Product `json:"_source"`
	}
	var hits []hit
	for id, p := range s.docs {
		hits = append(hits, hit{ID: id, Source: p})
	}
	raw, _ := json.Marshal(map[string]any{
		"hits": map[string]any{"total": map[string]any{"value": len(hits)}, "hits": hits},
	})
	var res search.SearchResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *fakeSearcher) Delete(_ context.Context, _, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

type fixture struct {
	uc    *productUseCase
	repo  *memRepo
	cache *memCache
	es    *fakeSearcher
}

func newFixture() *fixture {
	f := &fixture{repo: newMemRepo(), cache: newMemCache(), es: newFakeSearcher()}
	f.uc = NewProductUseCase(f.repo, fakeTree{}, f.cache, f.es, logger.NewNop()).(*productUseCase)
	return f
}

func (f *fixture) create(t *testing.T, seller, webID, name, categoryID string) *model.Product {
	t.Helper()
	in := &dto.CreateProductInput{WebID: webID, Name: name}
	if categoryID != "" {
		in.CategoryID = &categoryID
	}
	p, err := f.uc.CreateProduct(context.Background(), seller, in)
	require.NoError(t, err)
	return p
}

func TestCreateProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := f.create(t, "seller-1", "W-1", "Smart TV 55\"", "tv")
	assert.Equal(t, "smart-tv-55", p.Slug)
	assert.True(t, p.IsActive)
	assert.Equal(t, "seller-1", *p.SellerID)

	unknown := "nope"
	_, err := f.uc.CreateProduct(ctx, "seller-1", &dto.CreateProductInput{WebID: "W-2", Name: "X", CategoryID: &unknown})
	assert.ErrorIs(t, err, apperror.ErrDanglingReference)

	_, err = f.uc.CreateProduct(ctx, "seller-2", &dto.CreateProductInput{WebID: "W-1", Name: "Dup"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	f.uc.bg.Wait()
	assert.Contains(t, f.es.docs, p.ID)
	assert.Equal(t, 1, f.es.indexes)
}

func TestListProductsIncludesDescendants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create(t, "s", "1", "Radio", "electronics")
	f.create(t, "s", "2", "TV", "tv")
	f.create(t, "s", "3", "Rake", "garden")

	got, total, err := f.uc.ListProducts(ctx, &dto.ProductFilters{CategoryID: "electronics"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Radio", got[0].Name)

	got, total, err = f.uc.ListProducts(ctx, &dto.ProductFilters{CategoryID: "electronics", IncludeDescendants: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"Radio", "TV"}, []string{got[0].Name, got[1].Name})

	_, _, err = f.uc.ListProducts(ctx, &dto.ProductFilters{CategoryID: "missing", IncludeDescendants: true})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListProductsCacheInvalidatedBySellerWrites(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create(t, "s1", "1", "Radio", "")

	_, _, err := f.uc.ListProducts(ctx, &dto.ProductFilters{})
	require.NoError(t, err)
	_, _, err = f.uc.ListProducts(ctx, &dto.ProductFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.findAll, "second call is served from cache")

	_, _, err = f.uc.ListProducts(ctx, &dto.ProductFilters{SellerID: "s2"})
	require.NoError(t, err)
	require.NoError(t, f.cache.SetJSON(ctx, category.TreeCacheKey, []string{"stale"}, time.Minute))

	f.create(t, "s1", "2", "TV", "")
	var keys []string
	for k := range f.cache.data {
		keys = append(keys, k)
	}
	require.Len(t, keys, 1, "only the other seller's list survives")
	assert.True(t, strings.HasPrefix(keys[0], product.ListCachePrefix+"s2:"))

	got, total, err := f.uc.ListProducts(ctx, &dto.ProductFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, got, 2)
}

func TestListProductsSearchFallsBackToPostgres(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create(t, "s", "1", "Radio", "")
	f.create(t, "s", "2", "TV", "")
	f.uc.bg.Wait()

	got, total, err := f.uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "radio", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "served by the search index")
	assert.Len(t, got, 2)
	assert.Equal(t, 10, f.es.lastQuery["size"])
	assert.Equal(t, 0, f.repo.findAll)

	f.es.failQuery = true
	got, total, err = f.uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "radio", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Radio", got[0].Name)
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.create(t, "owner", "1", "Radio", "")

	_, err := f.uc.UpdateProduct(ctx, "intruder", &dto.UpdateProductInput{ID: p.ID, Name: "Mine"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, f.uc.DeleteProduct(ctx, "intruder", p.ID), apperror.ErrNotFound)

	tv := "tv"
	updated, err := f.uc.UpdateProduct(ctx, "owner", &dto.UpdateProductInput{ID: p.ID, Name: "Pocket Radio", CategoryID: &tv, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "pocket-radio", updated.Slug)
	assert.Equal(t, "tv", *updated.CategoryID)

	require.NoError(t, f.uc.DeleteProduct(ctx, "owner", p.ID))
	f.uc.bg.Wait()
	assert.NotContains(t, f.es.docs, p.ID)

	_, err = f.uc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteAfterUpdateLeavesIndexEmpty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.es.indexDelay = 20 * time.Millisecond

	for i := 0; i < 5; i++ {
		p := f.create(t, "owner", fmt.Sprintf("W-%d", i), "Radio", "")
		_, err := f.uc.UpdateProduct(ctx, "owner", &dto.UpdateProductInput{ID: p.ID, Name: "Pocket Radio", IsActive: true})
		require.NoError(t, err)
		require.NoError(t, f.uc.DeleteProduct(ctx, "owner", p.ID))
	}
	f.uc.bg.Wait()

	assert.Empty(t, f.es.docs)
	assert.Empty(t, f.uc.syncTails)
}
