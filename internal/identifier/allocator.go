package identifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
)

const (
	SuffixLength = 9
	CodeLength   = 4

	DefaultMaxAttempts = 100
	DefaultRaceRetries = 3

	digits  = "0123456789"
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ExistsFunc reports whether candidate is already taken in one namespace.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Allocator proposes identifiers that are free at the moment of the check.
// The storage uniqueness constraint stays authoritative; see Commit.
type Allocator struct {
	maxAttempts int
	raceRetries int

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Allocator)

func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

func WithRaceRetries(n int) Option {
	return func(a *Allocator) {
		if n >= 0 {
			a.raceRetries = n
		}
	}
}

func WithRandom(r *rand.Rand) Option {
	return func(a *Allocator) {
		if r != nil {
			a.rnd = r
		}
	}
}

func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		maxAttempts: DefaultMaxAttempts,
		raceRetries: DefaultRaceRetries,
		rnd:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Slug allocates from the slugified label. A taken base gets "-" plus nine
// random digits; an empty base is the nine digits alone.
func (a *Allocator) Slug(ctx context.Context, label string, exists ExistsFunc) (string, error) {
	base := Slugify(label)
	if base != "" {
		taken, err := exists(ctx, base)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", base, err)
		}
		if !taken {
			return base, nil
		}
	}

	for i := 0; i < a.maxAttempts; i++ {
		candidate := a.random(digits, SuffixLength)
		if base != "" {
			candidate = base + "-" + candidate
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperror.AllocationExhausted("slug", a.maxAttempts, nil)
}

// Code allocates a company code. The derived form is tried once; after a
// collision only random four-letter codes are proposed.
func (a *Allocator) Code(ctx context.Context, label string, exists ExistsFunc) (string, error) {
	if derived := DeriveCode(label); derived != "" {
		taken, err := exists(ctx, derived)
		if err != nil {
			return "", fmt.Errorf("check code %q: %w", derived, err)
		}
		if !taken {
			return derived, nil
		}
	}

	for i := 0; i < a.maxAttempts; i++ {
		candidate := a.random(letters, CodeLength)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check code %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperror.AllocationExhausted("code", a.maxAttempts, nil)
}

// Commit runs attempt, which allocates and persists, and re-runs it while it
// fails with UniquenessRaceLost. Other errors are returned unchanged.
func (a *Allocator) Commit(ctx context.Context, namespace string, attempt func(ctx context.Context) error) error {
	var lastErr error
	for i := 0; i <= a.raceRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperror.ErrUniquenessRaceLost) {
			return err
		}
		lastErr = err
	}
	return apperror.AllocationExhausted(namespace, a.raceRetries+1, lastErr)
}

func (a *Allocator) random(alphabet string, n int) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[a.rnd.IntN(len(alphabet))])
	}
	return b.String()
}
