package optimistic

import (
	"github.com/zunou-lab/chatsync/internal/entity"
)

// NextPageParam decides the page number for scrolling toward older content.
// The guard against currentPage >= lastPage defends against servers that
// report hasMorePages one page too long.
func NextPageParam(last entity.Page) (int, bool) {
	info := last.PaginatorInfo
	if info.HasMorePages && len(last.Data) > 0 && info.CurrentPage < info.LastPage {
		return info.CurrentPage + 1, true
	}

	return 0, false
}

// PreviousPageParam decides the page number for scrolling toward newer
// content after the initial anchor landed on a page greater than one.
func PreviousPageParam(first entity.Page) (int, bool) {
	info := first.PaginatorInfo
	if info.CurrentPage > 1 && len(first.Data) > 0 {
		return info.CurrentPage - 1, true
	}

	return 0, false
}

// Chronological flattens a cached list into display order. Storage keeps the
// server's newest-first ordering for both pages and items; the reversal
// happens only here, at the read boundary.
func Chronological(list entity.CachedList) []entity.Message {
	var out []entity.Message
	for pi := len(list.Pages) - 1; pi >= 0; pi-- {
		page := list.Pages[pi]
		for mi := len(page.Data) - 1; mi >= 0; mi-- {
			out = append(out, page.Data[mi].Clone())
		}
	}

	return out
}

// MergePage inserts a freshly fetched page into the list. A refetch of a
// cached param replaces that page in place; a new param must extend the
// cached window by exactly one page on either side. Anything farther away
// restarts the list around the fetched page, since a hole in the page-number
// space would break the contiguity Chronological relies on.
func MergePage(list entity.CachedList, param int, page entity.Page) entity.CachedList {
	for i, existing := range list.PageParams {
		if existing == param {
			list.Pages[i] = page
			return list
		}
	}

	if len(list.PageParams) > 0 {
		switch param {
		case list.PageParams[0] - 1:
			list.Pages = append([]entity.Page{page}, list.Pages...)
			list.PageParams = append([]int{param}, list.PageParams...)
			return list

		case list.PageParams[len(list.PageParams)-1] + 1:
			list.Pages = append(list.Pages, page)
			list.PageParams = append(list.PageParams, param)
			return list
		}
	}

	return entity.CachedList{
		Pages:      []entity.Page{page},
		PageParams: []int{param},
	}
}
