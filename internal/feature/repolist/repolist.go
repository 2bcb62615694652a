// Package repolist pages through the signed-in user's repositories.
package repolist

import (
	"context"
	"strings"

	"octoterm/internal/github"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/paging"
	"octoterm/internal/store"
)

const (
	ItemsID store.EffectID = "repolist.items"
	PerPage                = 30
)

// Source picks between repositories the user has access to and ones they starred.
type Source string

const (
	SourceOwned   Source = "owned"
	SourceStarred Source = "starred"
)

var (
	Affiliations = []string{"all", "owner", "member"}
	Sorts        = []string{"updated", "created", "pushed", "full_name"}
)

// Filter is everything that changes what the server returns.
type Filter struct {
	Source      Source
	Affiliation string
	Sort        string
}

// Encode packs the filter into the list's filter string.
func (f Filter) Encode() string {
	return string(f.Source) + ":" + f.Affiliation + ":" + f.Sort
}

// ParseFilter reverses Encode. Missing parts take their defaults.
func ParseFilter(s string) Filter {
	f := Filter{Source: SourceOwned, Affiliation: "all", Sort: "updated"}
	parts := strings.SplitN(s, ":", 3)
	if len(parts) > 0 && parts[0] != "" {
		f.Source = Source(parts[0])
	}
	if len(parts) > 1 && parts[1] != "" {
		f.Affiliation = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		f.Sort = parts[2]
	}
	return f
}

type API interface {
	ListCurrentUserRepositories(ctx context.Context, opts github.RepoListOptions) ([]model.Repository, error)
	ListStarred(ctx context.Context, opts github.RepoListOptions) ([]model.Repository, error)
}

type Deps struct {
	API  API
	Text *i18n.Catalog
}

type State struct {
	Items        paging.List[model.Repository]
	SearchText   string
	ErrorMessage string
}

func NewState(source Source) State {
	f := ParseFilter("")
	f.Source = source
	return State{Items: paging.List[model.Repository]{Filter: f.Encode()}}
}

func (s State) Filter() Filter {
	return ParseFilter(s.Items.Filter)
}

// Visible returns loaded repositories matching the local search text.
func (s State) Visible() []model.Repository {
	needle := strings.ToLower(strings.TrimSpace(s.SearchText))
	if needle == "" {
		return s.Items.Items
	}
	var out []model.Repository
	for _, r := range s.Items.Items {
		if strings.Contains(strings.ToLower(r.FullName), needle) ||
			strings.Contains(strings.ToLower(r.Description), needle) {
			out = append(out, r)
		}
	}
	return out
}

type Action interface{ repoListAction() }

// Items wraps a pagination action for the list.
type Items struct{ paging.Action }

// Failure implements apperr.Carrier.
func (a Items) Failure() error {
	if l, ok := a.Action.(paging.Loaded[model.Repository]); ok {
		return l.Err
	}
	return nil
}

type (
	Appeared            struct{}
	SourceSelected      struct{ Source Source }
	AffiliationSelected struct{ Affiliation string }
	SortSelected        struct{ Sort string }
	SearchTextChanged   struct{ Text string }
	RepositorySelected  struct{ Repository model.Repository }
)

func (Items) repoListAction()               {}
func (Appeared) repoListAction()            {}
func (SourceSelected) repoListAction()      {}
func (AffiliationSelected) repoListAction() {}
func (SortSelected) repoListAction()        {}
func (SearchTextChanged) repoListAction()   {}
func (RepositorySelected) repoListAction()  {}

func Reducer(deps Deps) store.Reducer[State, Action] {
	items := store.Scope(
		paging.Reducer(paging.Config[model.Repository]{
			ID:      ItemsID,
			PerPage: PerPage,
			Fetch:   fetch(deps.API),
		}),
		store.Lens[State, paging.List[model.Repository]]{
			Get: func(s State) (paging.List[model.Repository], bool) { return s.Items, true },
			Set: func(s State, l paging.List[model.Repository]) State { s.Items = l; return s },
		},
		store.Case[Action, paging.Action]{
			Extract: func(a Action) (paging.Action, bool) {
				i, ok := a.(Items)
				return i.Action, ok
			},
			Embed: func(a paging.Action) Action { return Items{a} },
		},
	)

	refilter := func(s State, f Filter) (State, []store.Effect[Action]) {
		if f.Encode() == s.Items.Filter {
			return s, nil
		}
		s, fx := items(s, Items{paging.FilterChanged{Filter: f.Encode()}})
		s.ErrorMessage = deps.Text.Describe(s.Items.Err)
		return s, fx
	}

	return store.Combine(items, func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case Items:
			s.ErrorMessage = deps.Text.Describe(s.Items.Err)

		case Appeared:
			if s.Items.Submitted && s.Items.Phase() != paging.Failed {
				return s, nil
			}
			var fx []store.Effect[Action]
			s, fx = items(s, Items{paging.Submit{}})
			s.ErrorMessage = ""
			return s, fx

		case SourceSelected:
			f := s.Filter()
			f.Source = a.Source
			return refilter(s, f)

		case AffiliationSelected:
			f := s.Filter()
			f.Affiliation = a.Affiliation
			return refilter(s, f)

		case SortSelected:
			f := s.Filter()
			f.Sort = a.Sort
			return refilter(s, f)

		case SearchTextChanged:
			s.SearchText = a.Text
		}
		return s, nil
	})
}

func fetch(api API) func(context.Context, paging.Request) (paging.Response[model.Repository], error) {
	return func(ctx context.Context, req paging.Request) (paging.Response[model.Repository], error) {
		f := ParseFilter(req.Filter)
		opts := github.RepoListOptions{
			Affiliation: f.Affiliation,
			Sort:        f.Sort,
			Page:        req.Page,
			PerPage:     req.PerPage,
		}

		var (
			repos []model.Repository
			err   error
		)
		if f.Source == SourceStarred {
			opts.Affiliation = ""
			repos, err = api.ListStarred(ctx, opts)
		} else {
			repos, err = api.ListCurrentUserRepositories(ctx, opts)
		}
		if err != nil {
			return paging.Response[model.Repository]{}, err
		}
		return paging.Response[model.Repository]{Items: repos, TotalCount: paging.UnknownTotal}, nil
	}
}
