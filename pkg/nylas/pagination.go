package nylas

import (
	"context"
	"iter"

	"github.com/nylas/nylas-go/internal/constants"
)

type iteratorState int

const (
	// stateReady means another page can be fetched with cursor.
	stateReady iteratorState = iota
	stateExhausted
)

// ListIterator walks the pages of a list call by following next_cursor.
//
// The first page is fetched at most once: First memoizes it and the first
// call to Next returns the same page. After the page without a cursor has
// been returned, Next reports ErrNoMorePages; the iterator never restarts.
// A failed fetch leaves the state unchanged so the call can be retried.
//
// A ListIterator is not safe for concurrent use.
type ListIterator[T any] struct {
	requester Requester
	opts      RequestOptions

	state  iteratorState
	cursor string

	first        *ListResponse[T]
	firstPending bool
	fetched      int
}

// NewListIterator creates an iterator over the pages of opts. Query
// parameters in opts are sent with every page.
func NewListIterator[T any](r Requester, opts RequestOptions) *ListIterator[T] {
	opts = opts.Clone()
	opts.Query.Del(constants.PageTokenParam)

	return &ListIterator[T]{
		requester: r,
		opts:      opts,
		state:     stateReady,
	}
}

// First returns the first page, fetching it if needed.
func (it *ListIterator[T]) First(ctx context.Context) (*ListResponse[T], error) {
	if it.first != nil {
		return it.first, nil
	}

	page, err := it.fetch(ctx)
	if err != nil {
		return nil, err
	}

	it.first = page
	it.firstPending = true

	return page, nil
}

// Next returns the following page, or ErrNoMorePages once exhausted.
func (it *ListIterator[T]) Next(ctx context.Context) (*ListResponse[T], error) {
	if it.firstPending {
		it.firstPending = false

		return it.first, nil
	}

	if it.state == stateExhausted {
		return nil, ErrNoMorePages
	}

	page, err := it.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if it.first == nil {
		it.first = page
	}

	return page, nil
}

// Done reports whether every page has been returned by Next.
func (it *ListIterator[T]) Done() bool {
	return it.state == stateExhausted && !it.firstPending
}

// Requests returns how many pages have been fetched.
func (it *ListIterator[T]) Requests() int {
	return it.fetched
}

// Pages yields each remaining page. Iteration stops after the first error,
// which is yielded with a nil page.
func (it *ListIterator[T]) Pages(ctx context.Context) iter.Seq2[*ListResponse[T], error] {
	return func(yield func(*ListResponse[T], error) bool) {
		for !it.Done() {
			page, err := it.Next(ctx)
			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(page, nil) {
				return
			}
		}
	}
}

// All collects the items of every remaining page.
func (it *ListIterator[T]) All(ctx context.Context) ([]T, error) {
	var items []T

	for page, err := range it.Pages(ctx) {
		if err != nil {
			return items, err
		}

		items = append(items, page.Data...)
	}

	return items, nil
}

// fetch performs the single transition Ready(cursor) -> (page, next state).
func (it *ListIterator[T]) fetch(ctx context.Context) (*ListResponse[T], error) {
	opts := it.opts.Clone()
	if it.cursor != "" {
		opts.Query.Set(constants.PageTokenParam, it.cursor)
	}

	page, err := requestPage[T](ctx, it.requester, &opts)
	if err != nil {
		return nil, err
	}

	it.fetched++

	if page.HasMore() {
		it.cursor = page.NextCursor
	} else {
		it.cursor = ""
		it.state = stateExhausted
	}

	return page, nil
}
