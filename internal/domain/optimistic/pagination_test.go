package optimistic

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/internal/entity"
)

func pageOf(info entity.PaginatorInfo, ids ...string) entity.Page {
	page := entity.Page{PaginatorInfo: info}
	for _, id := range ids {
		page.Data = append(page.Data, entity.Message{ID: id})
	}

	return page
}

func TestNextPageParam(t *testing.T) {
	testcases := []struct {
		name   string
		page   entity.Page
		param  int
		wantOK bool
	}{
		{
			name:   "more pages available",
			page:   pageOf(entity.PaginatorInfo{CurrentPage: 2, LastPage: 5, HasMorePages: true}, "a"),
			param:  3,
			wantOK: true,
		},
		{
			name:   "no more pages",
			page:   pageOf(entity.PaginatorInfo{CurrentPage: 5, LastPage: 5, HasMorePages: false}, "a"),
			wantOK: false,
		},
		{
			name:   "empty page never advances",
			page:   pageOf(entity.PaginatorInfo{CurrentPage: 2, LastPage: 5, HasMorePages: true}),
			wantOK: false,
		},
		{
			name:   "server overreports hasMorePages",
			page:   pageOf(entity.PaginatorInfo{CurrentPage: 5, LastPage: 5, HasMorePages: true}, "a"),
			wantOK: false,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			param, ok := NextPageParam(tc.page)
			require.Equal(t, tc.wantOK, ok)
			if ok {
				require.Equal(t, tc.param, param)
			}
		})
	}
}

func TestPreviousPageParam(t *testing.T) {
	param, ok := PreviousPageParam(
		pageOf(entity.PaginatorInfo{CurrentPage: 3, LastPage: 5}, "a"))
	require.True(t, ok)
	require.Equal(t, 2, param)

	_, ok = PreviousPageParam(pageOf(entity.PaginatorInfo{CurrentPage: 1, LastPage: 5}, "a"))
	require.False(t, ok)

	_, ok = PreviousPageParam(pageOf(entity.PaginatorInfo{CurrentPage: 3, LastPage: 5}))
	require.False(t, ok)
}

func TestNextPageParamMonotonic(t *testing.T) {
	// Walking pages forward must yield strictly increasing parameters until
	// the walk stops.
	last := 4
	page := pageOf(entity.PaginatorInfo{CurrentPage: 1, LastPage: last, HasMorePages: true}, "a")

	seen := []int{1}
	for {
		param, ok := NextPageParam(page)
		if !ok {
			break
		}

		require.Greater(t, param, seen[len(seen)-1])
		seen = append(seen, param)
		page = pageOf(entity.PaginatorInfo{
			CurrentPage:  param,
			LastPage:     last,
			HasMorePages: param < last,
		}, "a")
	}

	require.Equal(t, []int{1, 2, 3, 4}, seen)
}

func TestChronological(t *testing.T) {
	// Storage order is newest-first in both dimensions. Display order is the
	// full reversal.
	list := entity.CachedList{
		Pages: []entity.Page{
			pageOf(entity.PaginatorInfo{CurrentPage: 1}, "d", "c"),
			pageOf(entity.PaginatorInfo{CurrentPage: 2}, "b", "a"),
		},
		PageParams: []int{1, 2},
	}

	out := Chronological(list)
	var ids []string
	for _, m := range out {
		ids = append(ids, m.ID)
	}

	require.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestChronologicalCopies(t *testing.T) {
	list := entity.CachedList{
		Pages:      []entity.Page{pageOf(entity.PaginatorInfo{CurrentPage: 1}, "a")},
		PageParams: []int{1},
	}

	out := Chronological(list)
	out[0].Content = "mutated"
	require.Empty(t, list.Pages[0].Data[0].Content)
}

func TestMergePage(t *testing.T) {
	list := entity.CachedList{
		Pages:      []entity.Page{pageOf(entity.PaginatorInfo{CurrentPage: 2}, "b")},
		PageParams: []int{2},
	}

	list = MergePage(list, 3, pageOf(entity.PaginatorInfo{CurrentPage: 3}, "c"))
	require.Equal(t, []int{2, 3}, list.PageParams)

	list = MergePage(list, 1, pageOf(entity.PaginatorInfo{CurrentPage: 1}, "a"))
	require.Equal(t, []int{1, 2, 3}, list.PageParams)
	require.Equal(t, "a", list.Pages[0].Data[0].ID)

	// Refetching an existing param replaces in place.
	list = MergePage(list, 2, pageOf(entity.PaginatorInfo{CurrentPage: 2}, "b2"))
	require.Equal(t, []int{1, 2, 3}, list.PageParams)
	require.Equal(t, "b2", list.Pages[1].Data[0].ID)
}

func TestMergePageRestartsOnGap(t *testing.T) {
	list := entity.CachedList{
		Pages:      []entity.Page{pageOf(entity.PaginatorInfo{CurrentPage: 1}, "a")},
		PageParams: []int{1},
	}

	// Jumping past the cached window would leave a hole; the fetched page
	// becomes the new anchor instead.
	list = MergePage(list, 3, pageOf(entity.PaginatorInfo{CurrentPage: 3}, "c"))
	require.Equal(t, []int{3}, list.PageParams)
	require.Equal(t, "c", list.Pages[0].Data[0].ID)

	list = MergePage(list, 2, pageOf(entity.PaginatorInfo{CurrentPage: 2}, "b"))
	require.Equal(t, []int{2, 3}, list.PageParams)
}
