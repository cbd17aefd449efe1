package content

import (
	"context"
	"errors"
	"sync"
)

// ErrFetchInProgress is returned when Next is called while a fetch is running.
var ErrFetchInProgress = errors.New("fetch already in progress")

// PageFetcher loads one page of articles.
type PageFetcher interface {
	FetchPage(ctx context.Context, offset int, f Filter) (Page, error)
}

// Pager accumulates pages for an infinite-scroll listing.
type Pager struct {
	fetcher PageFetcher

	mu       sync.Mutex
	filter   Filter
	items    []*Article
	offset   int
	hasMore  bool
	fetching bool
}

// NewPager creates a pager positioned before the first page.
func NewPager(fetcher PageFetcher, f Filter) *Pager {
	return &Pager{fetcher: fetcher, filter: f, hasMore: true}
}

// Reset drops loaded items and starts over with a new filter.
func (p *Pager) Reset(f Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = f
	p.items = nil
	p.offset = 0
	p.hasMore = true
}

// Next loads the following page and returns the newly fetched items. It
// returns no items once the listing is exhausted.
func (p *Pager) Next(ctx context.Context) ([]*Article, error) {
	p.mu.Lock()
	if p.fetching {
		p.mu.Unlock()
		return nil, ErrFetchInProgress
	}
	if !p.hasMore {
		p.mu.Unlock()
		return nil, nil
	}
	p.fetching = true
	offset, filter := p.offset, p.filter
	p.mu.Unlock()

	page, err := p.fetcher.FetchPage(ctx, offset, filter)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetching = false
	if err != nil {
		return nil, err
	}
	// A Reset during the fetch invalidates this page.
	if p.offset != offset || p.filter != filter {
		return nil, nil
	}
	p.items = append(p.items, page.Items...)
	p.offset = page.NextOffset
	p.hasMore = page.HasMore
	return page.Items, nil
}

// Items returns everything loaded so far.
func (p *Pager) Items() []*Article {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Article(nil), p.items...)
}

// HasMore reports whether another page may exist.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}
