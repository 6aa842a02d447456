package entity

// PaginatorInfo mirrors the paginator block the server attaches to every
// message page.
type PaginatorInfo struct {
	CurrentPage  int  `json:"currentPage"`
	LastPage     int  `json:"lastPage"`
	HasMorePages bool `json:"hasMorePages"`
	Total        int  `json:"total"`
}

// Page is one fetched page of messages. The server returns newest messages
// first; page ordering is only reversed at the presentation boundary.
type Page struct {
	Data          []Message     `json:"data"`
	PaginatorInfo PaginatorInfo `json:"paginatorInfo"`
}

func (p Page) Clone() Page {
	out := p
	if p.Data != nil {
		out.Data = make([]Message, len(p.Data))
		for i, m := range p.Data {
			out.Data[i] = m.Clone()
		}
	}

	return out
}

// CachedList is the infinite-scroll accumulation of pages for one cache key,
// together with the page parameters they were fetched with. Pages stay
// contiguous in page-number space.
type CachedList struct {
	Pages      []Page `json:"pages"`
	PageParams []int  `json:"pageParams"`
}

func (l CachedList) Clone() CachedList {
	out := CachedList{}
	if l.Pages != nil {
		out.Pages = make([]Page, len(l.Pages))
		for i, p := range l.Pages {
			out.Pages[i] = p.Clone()
		}
	}

	if l.PageParams != nil {
		out.PageParams = make([]int, len(l.PageParams))
		copy(out.PageParams, l.PageParams)
	}

	return out
}

// FindMessage scans all pages for a message id and reports its page and
// offset, or false when the id is not cached.
func (l CachedList) FindMessage(id string) (int, int, bool) {
	for pi, page := range l.Pages {
		for mi, msg := range page.Data {
			if msg.ID == id {
				return pi, mi, true
			}
		}
	}

	return 0, 0, false
}
