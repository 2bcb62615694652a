package notifications

import (
	"context"
	"errors"
	"testing"

	"octoterm/internal/apperr"
	"octoterm/internal/github"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/paging"
	"octoterm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	items   []model.Notification
	listErr error
	readErr error
	lists   []github.NotificationOptions
	reads   []string
	readAll int
}

func (f *fakeAPI) ListNotifications(_ context.Context, opts github.NotificationOptions) ([]model.Notification, error) {
	f.lists = append(f.lists, opts)
	return f.items, f.listErr
}

func (f *fakeAPI) MarkThreadRead(_ context.Context, id string) error {
	f.reads = append(f.reads, id)
	return f.readErr
}

func (f *fakeAPI) MarkAllNotificationsRead(context.Context) error {
	f.readAll++
	return f.readErr
}

func inbox() []model.Notification {
	return []model.Notification{
		{ID: "1", Repository: "octo/cat", Title: "Crash on start", Unread: true, Reason: model.ReasonMention},
		{ID: "2", Repository: "octo/dog", Title: "Add docs", Unread: false},
		{ID: "3", Repository: "octo/cat", Title: "Release v2", Unread: true},
	}
}

func setup(t *testing.T, api *fakeAPI) (store.Reducer[State, Action], State) {
	t.Helper()
	text, err := i18n.New("en")
	require.NoError(t, err)
	r := Reducer(Deps{API: api, Text: text})
	s, fx := r(NewState(), Appeared{})
	return r, drain(r, s, fx)
}

func drain(r store.Reducer[State, Action], s State, fx []store.Effect[Action]) State {
	for len(fx) > 0 {
		e := fx[0]
		fx = fx[1:]
		e.Exec(context.Background(), func(a Action) {
			var more []store.Effect[Action]
			s, more = r(s, a)
			fx = append(fx, more...)
		})
	}
	return s
}

func unread(s State) map[string]bool {
	out := map[string]bool{}
	for _, n := range s.Feed.Items {
		out[n.ID] = n.Unread
	}
	return out
}

func TestAppearedLoadsOnce(t *testing.T) {
	api := &fakeAPI{items: inbox()}
	r, s := setup(t, api)

	assert.Len(t, s.Feed.Items, 3)
	assert.Equal(t, 2, s.UnreadCount())
	assert.Equal(t, []github.NotificationOptions{{All: true, Page: 1, PerPage: PerPage}}, api.lists)

	_, fx := r(s, Appeared{})
	assert.Empty(t, fx)
}

func TestAppearedRetriesFailedFeed(t *testing.T) {
	api := &fakeAPI{listErr: apperr.New(apperr.KindAuth, "notifications", "Bad credentials")}
	r, s := setup(t, api)
	require.Equal(t, paging.Failed, s.Feed.Phase())

	api.listErr = nil
	api.items = inbox()
	s, fx := r(s, Appeared{})
	require.Len(t, fx, 1)
	s = drain(r, s, fx)
	assert.Len(t, s.Feed.Items, 3)
	assert.Empty(t, s.ErrorMessage)
}

func TestFilterSelectedReloadsWithServerOptions(t *testing.T) {
	api := &fakeAPI{items: inbox()}
	r, s := setup(t, api)

	s, fx := r(s, FilterSelected{Filter: FilterParticipating})
	require.Len(t, fx, 1)
	assert.Equal(t, ItemsID, fx[0].ID)
	s = drain(r, s, fx)
	assert.Equal(t, FilterParticipating, s.Filter())
	assert.Equal(t, github.NotificationOptions{All: true, Participating: true, Page: 1, PerPage: PerPage}, api.lists[1])

	_, fx = r(s, FilterSelected{Filter: FilterParticipating})
	assert.Empty(t, fx)
}

func TestLocalFilters(t *testing.T) {
	r, s := setup(t, &fakeAPI{items: inbox()})

	s, _ = r(s, RepositoryFilterChanged{Repository: "octo/cat"})
	assert.Len(t, s.Visible(), 2)

	s, _ = r(s, SearchTextChanged{Text: "CRASH"})
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, "1", s.Visible()[0].ID)

	assert.Equal(t, []string{"octo/cat", "octo/dog"}, s.Repositories())
}

func TestMarkAsReadIsOptimistic(t *testing.T) {
	api := &fakeAPI{items: inbox()}
	r, s := setup(t, api)

	s, fx := r(s, MarkAsRead{ThreadID: "1"})
	assert.False(t, unread(s)["1"])
	require.Len(t, fx, 1)
	assert.Equal(t, ReadID("1"), fx[0].ID)

	s = drain(r, s, fx)
	assert.False(t, unread(s)["1"])
	assert.Equal(t, []string{"1"}, api.reads)
	assert.Empty(t, s.Notice)
}

func TestMarkAsReadRollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{items: inbox(), readErr: errors.New("boom")}
	r, s := setup(t, api)

	s, fx := r(s, MarkAsRead{ThreadID: "3"})
	s = drain(r, s, fx)

	assert.True(t, unread(s)["3"])
	assert.Equal(t, "Could not mark as read.", s.Notice)
}

func TestMarkAsReadOnReadThreadDoesNothing(t *testing.T) {
	api := &fakeAPI{items: inbox()}
	r, s := setup(t, api)

	_, fx := r(s, MarkAsRead{ThreadID: "2"})
	assert.Empty(t, fx)
}

func TestMarkAllAsReadRollsBackOnlyWhatItChanged(t *testing.T) {
	api := &fakeAPI{items: inbox(), readErr: apperr.New(apperr.KindNetwork, "notifications", "timeout")}
	r, s := setup(t, api)

	s, fx := r(s, MarkAllAsRead{})
	assert.Equal(t, 0, s.UnreadCount())
	s = drain(r, s, fx)

	assert.Equal(t, map[string]bool{"1": true, "2": false, "3": true}, unread(s))
	assert.Equal(t, 1, api.readAll)
}

func TestNotificationSelectedMarksRead(t *testing.T) {
	api := &fakeAPI{items: inbox()}
	r, s := setup(t, api)

	s, fx := r(s, NotificationSelected{Notification: inbox()[0]})
	drain(r, s, fx)
	assert.Equal(t, []string{"1"}, api.reads)
}

func TestPolledRefreshesLoadedFeed(t *testing.T) {
	api := &fakeAPI{items: inbox()}
	r := Reducer(Deps{API: api, Text: mustCatalog(t)})

	_, fx := r(NewState(), Polled{})
	assert.Empty(t, fx, "nothing to refresh before the first load")

	_, s := setup(t, api)
	_, fx = r(s, Polled{})
	require.Len(t, fx, 1)
	assert.Equal(t, ItemsID, fx[0].ID)
}

func TestFeedFailureSetsMessage(t *testing.T) {
	api := &fakeAPI{listErr: apperr.New(apperr.KindAuth, "notifications", "Requires authentication")}
	_, s := setup(t, api)

	assert.Equal(t, paging.Failed, s.Feed.Phase())
	assert.Equal(t, "Your session is no longer valid. Please sign in again.", s.ErrorMessage)
	assert.False(t, s.Feed.CanRetry)
}

func mustCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	c, err := i18n.New("en")
	require.NoError(t, err)
	return c
}
