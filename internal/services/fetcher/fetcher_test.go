package fetcher

import (
	"context"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"eurledger/internal/domain"
)

// timestampEndpoint simulates a capped list endpoint over a fixed set of
// item timestamps.
type timestampEndpoint struct {
	timestamps []int64
	limit      int
	calls      int
}

func (e *timestampEndpoint) page(_ context.Context, w domain.Window) ([]int64, error) {
	e.calls++
	var items []int64
	for _, ts := range e.timestamps {
		if ts >= w.StartMs && ts <= w.EndMs {
			items = append(items, ts)
			if len(items) == e.limit {
				break
			}
		}
	}
	return items, nil
}

func TestFetchSinglePage(t *testing.T) {
	endpoint := &timestampEndpoint{timestamps: []int64{10, 20, 30}, limit: 5}

	items, err := Fetch(context.Background(), domain.Window{StartMs: 0, EndMs: 100}, 5, endpoint.page)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20, 30}, items)
	require.Equal(t, 1, endpoint.calls)
}

func TestFetchSplitsTruncatedWindow(t *testing.T) {
	timestamps := make([]int64, 0, 20)
	for i := int64(0); i < 20; i++ {
		timestamps = append(timestamps, i*5)
	}
	endpoint := &timestampEndpoint{timestamps: timestamps, limit: 3}

	items, err := Fetch(context.Background(), domain.Window{StartMs: 0, EndMs: 100}, 3, endpoint.page)
	require.NoError(t, err)

	// same multiset as an unlimited fetch, no duplicates, ascending order
	require.Equal(t, timestamps, items)
	require.True(t, sort.SliceIsSorted(items, func(i, j int) bool { return items[i] < items[j] }))
}

func TestFetchFailsWhenWindowCannotSplit(t *testing.T) {
	// two items on the same millisecond with a page limit of one: no
	// sub-window can ever come back incomplete
	endpoint := &timestampEndpoint{timestamps: []int64{42, 42}, limit: 1}

	_, err := Fetch(context.Background(), domain.Window{StartMs: 42, EndMs: 42}, 1, endpoint.page)
	require.ErrorIs(t, err, domain.ErrWindowSplitExhausted)
}

func TestFetchDepthCap(t *testing.T) {
	full := func(_ context.Context, _ domain.Window) ([]int64, error) {
		return []int64{1, 2}, nil
	}

	_, err := Fetch(context.Background(), domain.Window{StartMs: 0, EndMs: 1 << 40}, 2, full)
	require.ErrorIs(t, err, domain.ErrWindowSplitExhausted)
}

func TestFetchPropagatesPageError(t *testing.T) {
	boom := errors.New("transport down")
	failing := func(_ context.Context, _ domain.Window) ([]int64, error) {
		return nil, boom
	}

	_, err := Fetch(context.Background(), domain.Window{StartMs: 0, EndMs: 100}, 5, failing)
	require.ErrorIs(t, err, boom)
}
