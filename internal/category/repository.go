package category

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Snapshot reads every category and the per-category product counts in
	// one consistent read-only transaction.
	Snapshot(ctx context.Context) ([]model.Category, []model.CategoryCount, error)
	// MutateTree runs fn in one transaction that holds the tree write lock.
	MutateTree(ctx context.Context, fn func(ctx context.Context, tx TreeTx) error) error
}

// TreeTx is the transaction-bound view handed to MutateTree callbacks.
type TreeTx interface {
	All(ctx context.Context) ([]model.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Insert(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) error
	// DeleteSubtree clears product references to ids and deletes them in the
	// given order.
	DeleteSubtree(ctx context.Context, ids []string) error
}
