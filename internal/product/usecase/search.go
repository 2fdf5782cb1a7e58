package usecase

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"go.uber.org/zap"
)

const searchMapping = `{
	"mappings": {
		"properties": {
			"web_id": { "type": "keyword" },
			"slug": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"category_id": { "type": "keyword" },
			"seller_id": { "type": "keyword" },
			"is_active": { "type": "boolean" },
			"is_new": { "type": "boolean" },
			"created_at": { "type": "date" },
			"updated_at": { "type": "date" }
		}
	}
}`

// syncToElastic indexes p in the background. The index is created lazily on
// the first sync.
func (uc *productUseCase) syncToElastic(p *model.Product) {
	if uc.es == nil {
		return
	}
	doc := *p

	uc.enqueueSync(doc.ID, func(ctx context.Context) {
		uc.indexOnce.Do(func() {
			if err := uc.es.CreateIndex(ctx, product.SearchIndex, searchMapping); err != nil {
				uc.logger.Warn("failed to create product index", zap.Error(err))
			}
		})
		if err := uc.es.Index(ctx, product.SearchIndex, doc.ID, doc); err != nil {
			uc.logger.Error("failed to index product", zap.String("product_id", doc.ID), zap.Error(err))
		}
	})
}

func (uc *productUseCase) removeFromElastic(id string) {
	if uc.es == nil {
		return
	}
	uc.enqueueSync(id, func(ctx context.Context) {
		if err := uc.es.Delete(ctx, product.SearchIndex, id); err != nil {
			uc.logger.Error("failed to delete product from ES", zap.String("product_id", id), zap.Error(err))
		}
	})
}

// enqueueSync runs job after every job queued earlier for the same product,
// so a delete can never be overtaken by an older index write.
func (uc *productUseCase) enqueueSync(id string, job func(ctx context.Context)) {
	uc.syncMu.Lock()
	prev := uc.syncTails[id]
	done := make(chan struct{})
	uc.syncTails[id] = done
	uc.syncMu.Unlock()

	uc.bg.Add(1)
	go func() {
		defer uc.bg.Done()
		if prev != nil {
			<-prev
		}
		job(context.Background())
		close(done)

		uc.syncMu.Lock()
		if uc.syncTails[id] == done {
			delete(uc.syncTails, id)
		}
		uc.syncMu.Unlock()
	}()
}

func (uc *productUseCase) search(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	filter := []map[string]any{}
	if f.SellerID != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"seller_id": f.SellerID}})
	}
	if len(f.CategoryIDs) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"category_id": f.CategoryIDs}})
	}
	if f.IsActive != nil {
		filter = append(filter, map[string]any{"term": map[string]any{"is_active": *f.IsActive}})
	}

	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					{
						"multi_match": map[string]any{
							"query":     f.SearchQuery,
							"fields":    []string{"name^3", "web_id", "description"},
							"fuzziness": "AUTO",
						},
					},
				},
				"filter": filter,
			},
		},
		"from": (f.Page - 1) * f.PageSize,
		"size": f.PageSize,
	}

	res, err := uc.es.Search(ctx, product.SearchIndex, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err != nil {
			uc.logger.Warn("skipping undecodable search hit", zap.Error(err))
			continue
		}
		products = append(products, p)
	}
	return products, res.Hits.Total.Value, nil
}
