package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/category/tree"
	"github.com/fekuna/omnipos-marketplace-service/internal/identifier"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/pkg/broker"
	"github.com/fekuna/omnipos-marketplace-service/pkg/cache"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	treeCacheTTL = 10 * time.Minute

	EventSubtreeDeleted = "CategorySubtreeDeleted"
)

type categoryUseCase struct {
	repo      category.Repository
	allocator *identifier.Allocator
	cache     cache.Store
	publisher broker.Publisher
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewCategoryUseCase wires the category use case. cache and publisher may be nil.
func NewCategoryUseCase(repo category.Repository, allocator *identifier.Allocator, cache cache.Store, publisher broker.Publisher, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:      repo,
		allocator: allocator,
		cache:     cache,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if input.Name == "" {
		return nil, apperror.FieldInvalid("name", "this field is required")
	}

	var created *model.Category
	err := uc.allocator.Commit(ctx, "category slug", func(ctx context.Context) error {
		return uc.repo.MutateTree(ctx, func(ctx context.Context, tx category.TreeTx) error {
			level := 0
			var parentID *string
			if input.ParentID != nil && *input.ParentID != "" {
				cats, err := tx.All(ctx)
				if err != nil {
					return err
				}
				t, err := tree.Build(cats)
				if err != nil {
					return err
				}
				parent, ok := t.Get(*input.ParentID)
				if !ok {
					return apperror.DanglingReference("parent category", *input.ParentID)
				}
				level = parent.Level + 1
				parentID = &parent.ID
			}

			slug, err := uc.resolveSlug(ctx, tx, input.Name, input.Slug)
			if err != nil {
				return err
			}

			now := uc.now()
			c := &model.Category{
				BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				Name:      input.Name,
				Slug:      slug,
				ParentID:  parentID,
				Level:     level,
			}
			if err := tx.Insert(ctx, c); err != nil {
				if input.Slug != "" && errors.Is(err, apperror.ErrUniquenessRaceLost) {
					return apperror.Conflict("slug is already taken")
				}
				return err
			}
			created = c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateTree(ctx)
	return created, nil
}

// resolveSlug checks an explicit slug or allocates one from the name.
func (uc *categoryUseCase) resolveSlug(ctx context.Context, tx category.TreeTx, name, requested string) (string, error) {
	if requested == "" {
		return uc.allocator.Slug(ctx, name, tx.SlugExists)
	}

	slug := identifier.Slugify(requested)
	if slug == "" {
		return "", apperror.FieldInvalid("slug", "must contain letters or digits")
	}
	taken, err := tx.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperror.Conflict("slug is already taken")
	}
	return slug, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*dto.CategoryDetail, error) {
	t, counts, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	c, ok := t.Get(id)
	if !ok {
		return nil, apperror.NotFound("category")
	}

	detail := &dto.CategoryDetail{
		CategoryNode: node(t, counts, c),
		Ancestors:    t.Ancestors(id),
		Children:     children(t, counts, id),
	}
	if detail.Ancestors == nil {
		detail.Ancestors = []model.Category{}
	}
	return detail, nil
}

func (uc *categoryUseCase) ListChildren(ctx context.Context, id string) ([]dto.CategoryNode, error) {
	t, counts, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := t.Get(id); !ok {
		return nil, apperror.NotFound("category")
	}
	return children(t, counts, id), nil
}

func (uc *categoryUseCase) ListTree(ctx context.Context) ([]dto.TreeEntry, error) {
	if uc.cache != nil {
		var cached []dto.TreeEntry
		hit, err := uc.cache.GetJSON(ctx, category.TreeCacheKey, &cached)
		if err != nil {
			uc.logger.Warn("category tree cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	t, counts, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	flat := t.Flatten(counts)
	entries := make([]dto.TreeEntry, 0, len(flat))
	for _, e := range flat {
		entries = append(entries, dto.TreeEntry{
			ID:                     e.Category.ID,
			Name:                   e.Category.Name,
			Slug:                   e.Category.Slug,
			ParentID:               e.Category.ParentID,
			Level:                  e.Level,
			HasChildren:            e.HasChild,
			DirectProductCount:     e.Counts.Direct,
			CumulativeProductCount: e.Counts.Cumulative,
		})
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, category.TreeCacheKey, entries, treeCacheTTL); err != nil {
			uc.logger.Warn("category tree cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	if input.Name == "" {
		return nil, apperror.FieldInvalid("name", "this field is required")
	}
	if input.Slug != nil && *input.Slug == "" {
		return nil, apperror.FieldInvalid("slug", "must not be empty; omit it to keep the current slug")
	}

	var updated *model.Category
	err := uc.repo.MutateTree(ctx, func(ctx context.Context, tx category.TreeTx) error {
		cats, err := tx.All(ctx)
		if err != nil {
			return err
		}
		t, err := tree.Build(cats)
		if err != nil {
			return err
		}

		current, ok := t.Get(input.ID)
		if !ok {
			return apperror.NotFound("category")
		}

		newParent := ""
		if input.ParentID != nil {
			newParent = *input.ParentID
		}
		oldParent := ""
		if current.ParentID != nil {
			oldParent = *current.ParentID
		}

		now := uc.now()
		var changed []model.Category
		if newParent != oldParent {
			changed, err = t.Move(input.ID, newParent)
			if err != nil {
				return err
			}
		} else {
			changed = []model.Category{current}
		}

		self := changed[0]
		self.Name = input.Name
		if input.Slug != nil && identifier.Slugify(*input.Slug) != self.Slug {
			slug, err := uc.resolveSlug(ctx, tx, self.Name, *input.Slug)
			if err != nil {
				return err
			}
			self.Slug = slug
		}
		changed[0] = self

		for i := range changed {
			changed[i].UpdatedAt = now
			if err := tx.Update(ctx, &changed[i]); err != nil {
				if errors.Is(err, apperror.ErrUniquenessRaceLost) {
					return apperror.Conflict("slug is already taken")
				}
				return err
			}
		}
		updated = &changed[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateTree(ctx)
	uc.invalidateProductLists(ctx)
	return updated, nil
}

// DeleteCategory removes the category and its whole subtree. A category with
// descendants is only deleted when confirm is set.
func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string, confirm bool) ([]string, error) {
	var removed []string
	err := uc.repo.MutateTree(ctx, func(ctx context.Context, tx category.TreeTx) error {
		cats, err := tx.All(ctx)
		if err != nil {
			return err
		}
		t, err := tree.Build(cats)
		if err != nil {
			return err
		}
		if _, ok := t.Get(id); !ok {
			return apperror.NotFound("category")
		}
		if t.HasChildren(id) && !confirm {
			return apperror.Validation("category has subcategories, deletion must be confirmed",
				map[string]string{"confirm": "required to delete " + strconv.Itoa(len(t.Descendants(id))) + " subcategories"})
		}

		removed = t.Remove(id)
		return tx.DeleteSubtree(ctx, removed)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateTree(ctx)
	uc.invalidateProductLists(ctx)
	uc.publish(ctx, id, removed)
	return removed, nil
}

func (uc *categoryUseCase) Exists(ctx context.Context, id string) (bool, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

func (uc *categoryUseCase) SubtreeIDs(ctx context.Context, id string) ([]string, error) {
	t, _, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := t.Get(id); !ok {
		return nil, apperror.NotFound("category")
	}
	return append([]string{id}, t.Descendants(id)...), nil
}

func (uc *categoryUseCase) snapshot(ctx context.Context) (*tree.Tree, map[string]tree.Counts, error) {
	cats, rows, err := uc.repo.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	t, err := tree.Build(cats)
	if err != nil {
		return nil, nil, err
	}

	direct := make(map[string]int, len(rows))
	for _, r := range rows {
		direct[r.CategoryID] = r.Count
	}
	return t, t.Aggregate(direct), nil
}

func (uc *categoryUseCase) invalidateTree(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, category.TreeCacheKey); err != nil {
		uc.logger.Warn("failed to invalidate category tree cache", zap.Error(err))
	}
}

// invalidateProductLists drops cached product listings, which embed subtree
// membership through include_descendants.
func (uc *categoryUseCase) invalidateProductLists(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeletePattern(ctx, product.ListCachePrefix+"*"); err != nil {
		uc.logger.Warn("failed to invalidate product list cache", zap.Error(err))
	}
}

func (uc *categoryUseCase) publish(ctx context.Context, id string, removed []string) {
	if uc.publisher == nil {
		return
	}
	event := broker.Event{
		EventID:   uuid.New().String(),
		EventType: EventSubtreeDeleted,
		Payload:   dto.SubtreeDeletedEvent{CategoryID: id, DeletedIDs: removed},
		Timestamp: uc.now(),
	}
	if err := uc.publisher.Publish(ctx, id, event); err != nil {
		uc.logger.Error("failed to publish category event",
			zap.String("category_id", id), zap.Error(err))
	}
}

func node(t *tree.Tree, counts map[string]tree.Counts, c model.Category) dto.CategoryNode {
	n := counts[c.ID]
	return dto.CategoryNode{
		Category:               c,
		HasChildren:            t.HasChildren(c.ID),
		DirectProductCount:     n.Direct,
		CumulativeProductCount: n.Cumulative,
	}
}

func children(t *tree.Tree, counts map[string]tree.Counts, id string) []dto.CategoryNode {
	kids := t.Children(id)
	out := make([]dto.CategoryNode, 0, len(kids))
	for _, c := range kids {
		out = append(out, node(t, counts, c))
	}
	return out
}
