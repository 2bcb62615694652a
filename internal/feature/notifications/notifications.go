// Package notifications is the notification inbox.
package notifications

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
	ItemsID   store.EffectID = "notifications.items"
	ReadAllID store.EffectID = "notifications.readall"

	PerPage = 30
)

// ReadID is the effect ID for marking one thread read.
func ReadID(threadID string) store.EffectID {
	return store.EffectID("notifications.read:" + threadID)
}

// Filter selects which notifications the server returns.
type Filter string

const (
	FilterAll           Filter = "all"
	FilterUnread        Filter = "unread"
	FilterParticipating Filter = "participating"
)

var Filters = []Filter{FilterAll, FilterUnread, FilterParticipating}

func (f Filter) options() github.NotificationOptions {
	switch f {
	case FilterUnread:
		return github.NotificationOptions{}
	case FilterParticipating:
		return github.NotificationOptions{All: true, Participating: true}
	default:
		return github.NotificationOptions{All: true}
	}
}

type API interface {
	ListNotifications(ctx context.Context, opts github.NotificationOptions) ([]model.Notification, error)
	MarkThreadRead(ctx context.Context, threadID string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

type Deps struct {
	API  API
	Text *i18n.Catalog
}

type State struct {
	Feed paging.List[model.Notification]

	// Local narrowing applied on top of the loaded feed.
	Repository string
	SearchText string

	ErrorMessage string
	Notice       string
}

func NewState() State {
	return State{Feed: paging.List[model.Notification]{Filter: string(FilterAll)}}
}

func (s State) Filter() Filter {
	if s.Feed.Filter == "" {
		return FilterAll
	}
	return Filter(s.Feed.Filter)
}

// Visible returns the loaded notifications after local filtering.
func (s State) Visible() []model.Notification {
	needle := strings.ToLower(strings.TrimSpace(s.SearchText))
	var out []model.Notification
	for _, n := range s.Feed.Items {
		if s.Repository != "" && n.Repository != s.Repository {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(n.Title), needle) &&
			!strings.Contains(strings.ToLower(n.Repository), needle) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s State) UnreadCount() int {
	n := 0
	for _, item := range s.Feed.Items {
		if item.Unread {
			n++
		}
	}
	return n
}

// Repositories lists the distinct repositories in the feed, in feed order.
func (s State) Repositories() []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range s.Feed.Items {
		if !seen[n.Repository] {
			seen[n.Repository] = true
			out = append(out, n.Repository)
		}
	}
	return out
}

type Action interface{ notificationsAction() }

// Feed wraps a pagination action for the inbox.
type Feed struct{ paging.Action }

// Failure implements apperr.Carrier.
func (a Feed) Failure() error {
	if l, ok := a.Action.(paging.Loaded[model.Notification]); ok {
		return l.Err
	}
	return nil
}

type (
	Appeared                struct{}
	Polled                  struct{}
	FilterSelected          struct{ Filter Filter }
	RepositoryFilterChanged struct{ Repository string }
	SearchTextChanged       struct{ Text string }
	MarkAsRead              struct{ ThreadID string }
	MarkAllAsRead           struct{}
)

type MarkedRead struct {
	ThreadID string
	Err      error
}

type MarkedAllRead struct {
	ThreadIDs []string
	Err       error
}

// NotificationSelected marks the thread read; the parent opens its detail.
type NotificationSelected struct{ Notification model.Notification }

func (a MarkedRead) Failure() error    { return a.Err }
func (a MarkedAllRead) Failure() error { return a.Err }

func (Feed) notificationsAction()                    {}
func (Appeared) notificationsAction()                {}
func (Polled) notificationsAction()                  {}
func (FilterSelected) notificationsAction()          {}
func (RepositoryFilterChanged) notificationsAction() {}
func (SearchTextChanged) notificationsAction()       {}
func (MarkAsRead) notificationsAction()              {}
func (MarkedRead) notificationsAction()              {}
func (MarkAllAsRead) notificationsAction()           {}
func (MarkedAllRead) notificationsAction()           {}
func (NotificationSelected) notificationsAction()    {}

func Reducer(deps Deps) store.Reducer[State, Action] {
	feed := store.Scope(
		paging.Reducer(paging.Config[model.Notification]{
			ID:      ItemsID,
			PerPage: PerPage,
			Fetch:   feedFetch(deps.API),
		}),
		store.Lens[State, paging.List[model.Notification]]{
			Get: func(s State) (paging.List[model.Notification], bool) { return s.Feed, true },
			Set: func(s State, l paging.List[model.Notification]) State { s.Feed = l; return s },
		},
		store.Case[Action, paging.Action]{
			Extract: func(a Action) (paging.Action, bool) {
				f, ok := a.(Feed)
				return f.Action, ok
			},
			Embed: func(a paging.Action) Action { return Feed{a} },
		},
	)
	api := deps.API

	markRead := func(s State, threadID string) (State, []store.Effect[Action]) {
		items, changed := setUnread(s.Feed.Items, false, threadID)
		if !changed {
			return s, nil
		}
		s.Feed.Items = items
		return s, []store.Effect[Action]{store.Run(ReadID(threadID), func(ctx context.Context, send func(Action)) {
			err := api.MarkThreadRead(ctx, threadID)
			if ctx.Err() == nil {
				send(MarkedRead{ThreadID: threadID, Err: err})
			}
		})}
	}

	run := func(s State, a paging.Action) (State, []store.Effect[Action]) {
		s, fx := feed(s, Feed{a})
		s.ErrorMessage = deps.Text.Describe(s.Feed.Err)
		return s, fx
	}

	return store.Combine(feed, func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case Feed:
			s.ErrorMessage = deps.Text.Describe(s.Feed.Err)

		case Appeared:
			// A feed that failed outright is retried on the next visit.
			if !s.Feed.Submitted || s.Feed.Phase() == paging.Failed {
				return run(s, paging.Submit{})
			}

		case Polled:
			if s.Feed.Submitted && !s.Feed.IsLoading && !s.Feed.IsLoadingMore {
				return run(s, paging.Refresh{})
			}

		case FilterSelected:
			if a.Filter == s.Filter() {
				return s, nil
			}
			return run(s, paging.FilterChanged{Filter: string(a.Filter)})

		case RepositoryFilterChanged:
			s.Repository = a.Repository

		case SearchTextChanged:
			s.SearchText = a.Text

		case MarkAsRead:
			s.Notice = ""
			return markRead(s, a.ThreadID)

		case NotificationSelected:
			return markRead(s, a.Notification.ID)

		case MarkedRead:
			if a.Err == nil {
				return s, nil
			}
			s.Feed.Items, _ = setUnread(s.Feed.Items, true, a.ThreadID)
			s.Notice = deps.Text.Text(i18n.NoticeMarkReadFailed)

		case MarkAllAsRead:
			var ids []string
			for _, n := range s.Feed.Items {
				if n.Unread {
					ids = append(ids, n.ID)
				}
			}
			if len(ids) == 0 {
				return s, nil
			}
			s.Feed.Items, _ = setUnread(s.Feed.Items, false, ids...)
			s.Notice = ""
			return s, []store.Effect[Action]{store.Run(ReadAllID, func(ctx context.Context, send func(Action)) {
				err := api.MarkAllNotificationsRead(ctx)
				if ctx.Err() == nil {
					send(MarkedAllRead{ThreadIDs: ids, Err: err})
				}
			})}

		case MarkedAllRead:
			if a.Err == nil {
				return s, nil
			}
			s.Feed.Items, _ = setUnread(s.Feed.Items, true, a.ThreadIDs...)
			s.Notice = deps.Text.Text(i18n.NoticeMarkReadFailed)
		}
		return s, nil
	})
}

// setUnread returns a copy of items with the given threads' unread flag set.
func setUnread(items []model.Notification, unread bool, ids ...string) ([]model.Notification, bool) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]model.Notification, len(items))
	copy(out, items)
	changed := false
	for i := range out {
		if want[out[i].ID] && out[i].Unread != unread {
			out[i].Unread = unread
			changed = true
		}
	}
	return out, changed
}

func feedFetch(api API) func(context.Context, paging.Request) (paging.Response[model.Notification], error) {
	return func(ctx context.Context, req paging.Request) (paging.Response[model.Notification], error) {
		opts := Filter(req.Filter).options()
		opts.Page = req.Page
		opts.PerPage = req.PerPage
		items, err := api.ListNotifications(ctx, opts)
		if err != nil {
			return paging.Response[model.Notification]{}, err
		}
		return paging.Response[model.Notification]{Items: items, TotalCount: paging.UnknownTotal}, nil
	}
}
