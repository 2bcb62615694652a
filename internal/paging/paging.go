package paging

import (
	"context"
	"strings"

	"octoterm/internal/apperr"
	"octoterm/internal/store"
)

// UnknownTotal marks a response that does not report a total count.
const UnknownTotal = -1

// Phase is the derived loading state of a list.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
	LoadingMore
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "loaded"
	case Failed:
		return "failed"
	case LoadingMore:
		return "loading_more"
	default:
		return "idle"
	}
}

// List is a paged, optionally query-driven collection.
type List[T any] struct {
	Items         []T
	CurrentPage   int
	TotalCount    int
	HasMore       bool
	IsLoading     bool
	IsLoadingMore bool
	Err           error
	CanRetry      bool

	Query     string
	Filter    string
	Submitted bool
}

// Phase derives where the list is in its load cycle.
func (l List[T]) Phase() Phase {
	switch {
	case l.IsLoading:
		return Loading
	case l.IsLoadingMore:
		return LoadingMore
	case !l.Submitted:
		return Idle
	case l.Err != nil && len(l.Items) == 0:
		return Failed
	default:
		return Ready
	}
}

// Request is what a fetch is asked for.
type Request struct {
	Query   string
	Filter  string
	Page    int
	PerPage int
}

// Response is one page of results.
type Response[T any] struct {
	Items      []T
	TotalCount int
	// Incomplete is set when the server could not finish collecting results
	// and the page cannot be trusted to continue.
	Incomplete bool
}

// Config describes one list instance.
type Config[T any] struct {
	ID           store.EffectID
	PerPage      int
	RequireQuery bool
	Fetch        func(ctx context.Context, req Request) (Response[T], error)
}

func (c Config[T]) canFetch(l List[T]) bool {
	return !c.RequireQuery || strings.TrimSpace(l.Query) != ""
}

func (c Config[T]) hasMore(l List[T], resp Response[T]) bool {
	if resp.Incomplete || len(resp.Items) < c.PerPage {
		return false
	}
	return resp.TotalCount == UnknownTotal || len(l.Items) < resp.TotalCount
}

func (c Config[T]) begin(l List[T]) (List[T], []store.Effect[Action]) {
	l.IsLoading = true
	l.IsLoadingMore = false
	l.CurrentPage = 1
	l.Err = nil
	l.CanRetry = false
	l.Submitted = true
	return l, []store.Effect[Action]{c.fetch(l, 1, false)}
}

func (c Config[T]) fetch(l List[T], page int, more bool) store.Effect[Action] {
	req := Request{
		Query:   strings.TrimSpace(l.Query),
		Filter:  l.Filter,
		Page:    page,
		PerPage: c.PerPage,
	}
	fetch := c.Fetch
	return store.Perform(c.ID,
		func(ctx context.Context) (Response[T], error) { return fetch(ctx, req) },
		func(r store.Result[Response[T]]) Action {
			return Loaded[T]{Page: page, More: more, Response: r.Value, Err: r.Err}
		})
}

// Reducer returns the reducer for a list described by cfg.
func Reducer[T any](cfg Config[T]) store.Reducer[List[T], Action] {
	return func(l List[T], action Action) (List[T], []store.Effect[Action]) {
		switch a := action.(type) {
		case QueryChanged:
			if strings.TrimSpace(a.Query) != "" {
				l.Query = a.Query
				return l, nil
			}
			var effects []store.Effect[Action]
			if l.IsLoading || l.IsLoadingMore {
				effects = append(effects, store.Cancel[Action](cfg.ID))
			}
			return List[T]{Query: a.Query, Filter: l.Filter}, effects

		case FilterChanged:
			l.Filter = a.Filter
			if !cfg.canFetch(l) || (cfg.RequireQuery && !l.Submitted) {
				return l, nil
			}
			return cfg.begin(l)

		case Submit:
			if !cfg.canFetch(l) {
				return l, nil
			}
			return cfg.begin(l)

		case Refresh:
			if !cfg.canFetch(l) || (cfg.RequireQuery && !l.Submitted) {
				return l, nil
			}
			return cfg.begin(l)

		case LoadMore:
			if !l.HasMore || l.IsLoadingMore || l.IsLoading {
				return l, nil
			}
			l.CurrentPage++
			l.IsLoadingMore = true
			return l, []store.Effect[Action]{cfg.fetch(l, l.CurrentPage, true)}

		case Loaded[T]:
			return cfg.apply(l, a), nil
		}
		return l, nil
	}
}

func (c Config[T]) apply(l List[T], a Loaded[T]) List[T] {
	if a.More {
		if !l.IsLoadingMore || a.Page != l.CurrentPage {
			return l
		}
		l.IsLoadingMore = false
		if a.Err != nil {
			// Keep what we have and retry this page next time.
			l.CurrentPage--
			l.Err = a.Err
			l.CanRetry = apperr.Retryable(a.Err)
			return l
		}
		items := make([]T, 0, len(l.Items)+len(a.Response.Items))
		items = append(items, l.Items...)
		l.Items = append(items, a.Response.Items...)
		l.Err = nil
		l.CanRetry = false
		l.HasMore = c.hasMore(l, a.Response)
		l.TotalCount = total(l, a.Response)
		return l
	}

	if !l.IsLoading || a.Page != 1 {
		return l
	}
	l.IsLoading = false
	if a.Err != nil {
		l.Items = nil
		l.TotalCount = 0
		l.HasMore = false
		l.Err = a.Err
		l.CanRetry = apperr.Retryable(a.Err)
		return l
	}
	l.Items = append([]T(nil), a.Response.Items...)
	l.HasMore = c.hasMore(l, a.Response)
	l.TotalCount = total(l, a.Response)
	return l
}

func total[T any](l List[T], resp Response[T]) int {
	if resp.TotalCount == UnknownTotal {
		return len(l.Items)
	}
	return resp.TotalCount
}
