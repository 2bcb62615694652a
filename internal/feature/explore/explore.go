// Package explore searches public repositories.
package explore

import (
	"context"

	"octoterm/internal/github"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/paging"
	"octoterm/internal/store"
)

const (
	SearchID  store.EffectID = "explore.search"
	PopularID store.EffectID = "explore.popular"

	PerPage        = 20
	PopularPerPage = 10
	popularQuery   = "stars:>10000"
)

// Category narrows a search to one language.
type Category string

const (
	CategoryAll        Category = "all"
	CategoryGo         Category = "go"
	CategoryRust       Category = "rust"
	CategoryTypeScript Category = "typescript"
	CategoryPython     Category = "python"
)

// Categories is the order categories are offered in.
var Categories = []Category{CategoryAll, CategoryGo, CategoryRust, CategoryTypeScript, CategoryPython}

// Qualifier is the search qualifier for the category.
func (c Category) Qualifier() string {
	if c == CategoryAll || c == "" {
		return ""
	}
	return "language:" + string(c)
}

// API is the part of the GitHub client explore needs.
type API interface {
	SearchRepositories(ctx context.Context, params github.SearchParams) (github.SearchResult, error)
}

type Deps struct {
	API  API
	Text *i18n.Catalog
}

type State struct {
	Search   paging.List[model.Repository]
	Category Category

	Popular        []model.Repository
	PopularLoading bool
	PopularLoaded  bool

	ErrorMessage string
}

func NewState() State {
	return State{Category: CategoryAll}
}

// ShowingResults reports whether search results replace the popular list.
func (s State) ShowingResults() bool {
	return s.Search.Submitted
}

// Repositories returns whatever list is on screen.
func (s State) Repositories() []model.Repository {
	if s.ShowingResults() {
		return s.Search.Items
	}
	return s.Popular
}

type Action interface{ exploreAction() }

// Search wraps a pagination action for the search results.
type Search struct{ paging.Action }

// Failure implements apperr.Carrier.
func (a Search) Failure() error {
	if l, ok := a.Action.(paging.Loaded[model.Repository]); ok {
		return l.Err
	}
	return nil
}

type (
	Appeared         struct{}
	CategorySelected struct{ Category Category }
	ClearSearch      struct{}
	PopularLoaded    struct{ store.Result[github.SearchResult] }
)

// RepositorySelected is handled by the parent, which opens the detail screen.
type RepositorySelected struct{ Repository model.Repository }

func (Search) exploreAction()             {}
func (Appeared) exploreAction()           {}
func (CategorySelected) exploreAction()   {}
func (ClearSearch) exploreAction()        {}
func (PopularLoaded) exploreAction()      {}
func (RepositorySelected) exploreAction() {}

func Reducer(deps Deps) store.Reducer[State, Action] {
	search := store.Scope(
		paging.Reducer(paging.Config[model.Repository]{
			ID:           SearchID,
			PerPage:      PerPage,
			RequireQuery: true,
			Fetch:        searchFetch(deps.API),
		}),
		store.Lens[State, paging.List[model.Repository]]{
			Get: func(s State) (paging.List[model.Repository], bool) { return s.Search, true },
			Set: func(s State, l paging.List[model.Repository]) State { s.Search = l; return s },
		},
		store.Case[Action, paging.Action]{
			Extract: func(a Action) (paging.Action, bool) {
				s, ok := a.(Search)
				return s.Action, ok
			},
			Embed: func(a paging.Action) Action { return Search{a} },
		},
	)

	return store.Combine(search, func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case Search:
			s.ErrorMessage = deps.Text.Describe(s.Search.Err)
			return s, nil

		case Appeared:
			if s.PopularLoaded || s.PopularLoading {
				return s, nil
			}
			s.PopularLoading = true
			api := deps.API
			return s, []store.Effect[Action]{store.Perform(PopularID,
				func(ctx context.Context) (github.SearchResult, error) {
					return api.SearchRepositories(ctx, github.SearchParams{
						Qualifiers: popularQuery,
						Sort:       "stars",
						Order:      "desc",
						Page:       1,
						PerPage:    PopularPerPage,
					})
				},
				func(r store.Result[github.SearchResult]) Action { return PopularLoaded{r} },
			)}

		case PopularLoaded:
			if !s.PopularLoading {
				return s, nil
			}
			s.PopularLoading = false
			if a.Err != nil {
				// The popular list is decoration; the screen still works without it.
				return s, nil
			}
			s.PopularLoaded = true
			s.Popular = a.Value.Items
			return s, nil

		case CategorySelected:
			if a.Category == s.Category {
				return s, nil
			}
			s.Category = a.Category
			return delegate(search, deps, s, paging.FilterChanged{Filter: a.Category.Qualifier()})

		case ClearSearch:
			return delegate(search, deps, s, paging.QueryChanged{Query: ""})
		}
		return s, nil
	})
}

// delegate feeds a pagination action through the search reducer and keeps the
// error message in step.
func delegate(search store.Reducer[State, Action], deps Deps, s State, a paging.Action) (State, []store.Effect[Action]) {
	s, fx := search(s, Search{a})
	s.ErrorMessage = deps.Text.Describe(s.Search.Err)
	return s, fx
}

func searchFetch(api API) func(context.Context, paging.Request) (paging.Response[model.Repository], error) {
	return func(ctx context.Context, req paging.Request) (paging.Response[model.Repository], error) {
		result, err := api.SearchRepositories(ctx, github.SearchParams{
			Query:      req.Query,
			Qualifiers: req.Filter,
			Page:       req.Page,
			PerPage:    req.PerPage,
		})
		if err != nil {
			return paging.Response[model.Repository]{}, err
		}
		return paging.Response[model.Repository]{
			Items:      result.Items,
			TotalCount: result.TotalCount,
			Incomplete: result.Incomplete,
		}, nil
	}
}
