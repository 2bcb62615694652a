package paging

// Action is the closed set of list actions.
type Action interface{ pagingAction() }

// QueryChanged records new query text. An empty query resets the list.
type QueryChanged struct{ Query string }

// FilterChanged switches the server-side filter and reloads when possible.
type FilterChanged struct{ Filter string }

// Submit starts a full reload from page one.
type Submit struct{}

// LoadMore requests the next page.
type LoadMore struct{}

// Refresh reloads with the current query and filter.
type Refresh struct{}

// Loaded delivers the outcome of a page fetch.
type Loaded[T any] struct {
	Page     int
	More     bool
	Response Response[T]
	Err      error
}

func (QueryChanged) pagingAction()  {}
func (FilterChanged) pagingAction() {}
func (Submit) pagingAction()        {}
func (LoadMore) pagingAction()      {}
func (Refresh) pagingAction()       {}
func (Loaded[T]) pagingAction()     {}

// Failure implements apperr.Carrier.
func (a Loaded[T]) Failure() error { return a.Err }
