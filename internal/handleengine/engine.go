package handleengine

import (
	"context"

	"github.com/entativa/eid/internal/cachekv"
	"github.com/entativa/eid/internal/store"
)

// Status is the outcome of Validate (spec §4.4 step 6 plus the failure
// taxonomy).
type Status string

const (
	StatusAvailable Status = "available"
	StatusRejected  Status = "rejected"
)

// Result is Validate's return value.
type Result struct {
	Status      Status
	Err         error
	Suggestions []string
}

// Engine runs the full validation pipeline, cache-backed per spec §4.4
// ("cached under the key handle:validation:<folded> for 60 min").
type Engine struct {
	handles *store.HandleRepo
	cache   cachekv.Cache
}

func NewEngine(handles *store.HandleRepo, cache cachekv.Cache) *Engine {
	return &Engine{handles: handles, cache: cache}
}

func cacheKey(folded string) string {
	return cachekv.PrefixHandleValid + folded
}

// Validate runs the six-step pipeline from spec §4.4 and caches the result.
func (e *Engine) Validate(ctx context.Context, h string) Result {
	folded := Fold(h)

	if cached, ok, _ := e.cache.Get(ctx, cacheKey(folded)); ok {
		return Result{Status: Status(cached)}
	}

	if err := CheckFormat(h); err != nil {
		return e.reject(err)
	}
	if err := CheckAvailable(ctx, e.handles, h); err != nil {
		return e.reject(err)
	}
	if err := CheckReserved(ctx, e.handles, folded); err != nil {
		return e.reject(err)
	}
	if _, err := CheckProtected(ctx, e.handles, h); err != nil {
		return e.reject(err)
	}
	if err := CheckModeration(folded); err != nil {
		return e.reject(err)
	}

	_ = e.cache.Set(ctx, cacheKey(folded), string(StatusAvailable), cachekv.HandleValidationTTL)
	suggestions := e.suggest(ctx, h)
	return Result{Status: StatusAvailable, Suggestions: suggestions}
}

func (e *Engine) reject(err error) Result {
	return Result{Status: StatusRejected, Err: err}
}

func (e *Engine) suggest(ctx context.Context, base string) []string {
	return Suggest(ctx, base, func(ctx context.Context, candidate string) bool {
		return e.Validate(ctx, candidate).Status == StatusAvailable
	})
}

// Invalidate drops the cached validation result for h, called on any
// mutation that changes availability (creation, release, protected-set
// change — spec §4.4).
func (e *Engine) Invalidate(ctx context.Context, h string) error {
	return e.cache.Delete(ctx, cacheKey(Fold(h)))
}

// InvalidateAll drops every cached validation result, for bulk mutations
// like a reserved_handles or protected_entries import.
func (e *Engine) InvalidateAll(ctx context.Context) error {
	return e.cache.InvalidatePrefix(ctx, cachekv.PrefixHandleValid)
}
