// Package fetcher retrieves complete item sets from capped list endpoints
// by recursively bisecting the requested time window whenever a page looks
// truncated.
package fetcher

import (
	"context"

	"github.com/pkg/errors"

	"eurledger/internal/domain"
)

// maxDepth bounds the bisection recursion. 2^20 sub-windows of the account
// lifetime is far beyond anything a real history can require.
const maxDepth = 20

// PageFunc fetches up to limit items inside the window, in ascending time
// order.
type PageFunc[T any] func(ctx context.Context, w domain.Window) ([]T, error)

// Fetch returns every item inside the window exactly once, in ascending
// time order. A page holding exactly limit items is treated as truncated:
// the window is split at its midpoint and both halves are fetched
// sequentially, left (earlier) half first, so the global request throttle
// stays the single point of pacing. A window that still truncates at one
// millisecond wide, or recursion past maxDepth, fails with
// ErrWindowSplitExhausted.
func Fetch[T any](ctx context.Context, w domain.Window, limit int, page PageFunc[T]) ([]T, error) {
	return fetch(ctx, w, limit, page, 0)
}

func fetch[T any](ctx context.Context, w domain.Window, limit int, page PageFunc[T], depth int) ([]T, error) {
	if depth > maxDepth {
		return nil, errors.Wrapf(domain.ErrWindowSplitExhausted, "split depth %d at window %s", depth, w)
	}

	items, err := page(ctx, w)
	if err != nil {
		return nil, err
	}
	if len(items) < limit {
		return items, nil
	}

	left, right, ok := w.Split()
	if !ok {
		return nil, errors.Wrapf(domain.ErrWindowSplitExhausted, "window %s is full but cannot be split", w)
	}

	leftItems, err := fetch(ctx, left, limit, page, depth+1)
	if err != nil {
		return nil, err
	}
	rightItems, err := fetch(ctx, right, limit, page, depth+1)
	if err != nil {
		return nil, err
	}

	return append(leftItems, rightItems...), nil
}
