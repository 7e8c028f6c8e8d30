package domain

import "slices"

// FeedState is the incrementally loaded product list.
//
// len(Items) <= TotalCount and HasMore == (len(Items) < TotalCount) hold
// after every successful fetch.
type FeedState struct {
	Items      []Product
	Page       int
	HasMore    bool
	TotalCount int
	Status     Status
	LastError  string
	Filters    ProductFilters
	Sort       Sort
}

func NewFeedState(f ProductFilters, s Sort) FeedState {
	return FeedState{
		Items:   []Product{},
		HasMore: true,
		Status:  StatusIdle,
		Filters: f,
		Sort:    s,
	}
}

func (s FeedState) Clone() FeedState {
	s.Items = slices.Clone(s.Items)
	return s
}

// ApplyPage merges a successfully fetched page into the state.
//
// Page 1 replaces the items, later pages are appended without the
// products already present. An empty later page marks the end of the
// catalog, whatever total the server reported.
func (s FeedState) ApplyPage(page int, p ProductPage) FeedState {
	if page <= 1 {
		s.Items = dedupe(nil, p.Results)
	} else {
		s.Items = dedupe(s.Items, p.Results)
	}

	s.Page = page
	s.TotalCount = max(p.Total, 0)
	if len(s.Items) > s.TotalCount || (page > 1 && len(p.Results) == 0) {
		s.TotalCount = len(s.Items)
	}
	s.HasMore = len(s.Items) < s.TotalCount
	s.Status = StatusSucceeded
	s.LastError = ""
	return s
}

func dedupe(items, more []Product) []Product {
	seen := make(map[int64]struct{}, len(items)+len(more))
	out := make([]Product, 0, len(items)+len(more))
	for _, p := range items {
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	for _, p := range more {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
