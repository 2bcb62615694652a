package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"octoterm/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(StaticToken("secret"), Options{BaseURL: srv.URL, RatePerSecond: 1000, Burst: 1000})
}

func TestSearchRepositories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "bubbletea language:go", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))

		fmt.Fprint(w, `{"total_count": 42, "incomplete_results": true, "items": [
			{"id": 1, "name": "bubbletea", "full_name": "charmbracelet/bubbletea",
			 "owner": {"login": "charmbracelet"}, "description": null, "language": "Go",
			 "stargazers_count": 27000, "pushed_at": null}
		]}`)
	})

	result, err := c.SearchRepositories(context.Background(), SearchParams{
		Query: " bubbletea ", Qualifiers: "language:go", Page: 2, PerPage: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result.TotalCount)
	assert.True(t, result.Incomplete)
	require.Len(t, result.Items, 1)
	repo := result.Items[0]
	assert.Equal(t, "charmbracelet/bubbletea", repo.FullName)
	assert.Equal(t, "charmbracelet", repo.Owner)
	assert.Equal(t, "Go", repo.Language)
	assert.Empty(t, repo.Description)
	assert.Equal(t, 27000, repo.Stars)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.SearchRepositories(context.Background(), SearchParams{Query: "   "})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		body    string
		want    apperr.Kind
	}{
		{"bad credentials", 401, nil, `{"message": "Bad credentials"}`, apperr.KindAuth},
		{"rate limit message", 403, nil, `{"message": "API rate limit exceeded"}`, apperr.KindRateLimited},
		{"rate limit header", 403, map[string]string{"X-RateLimit-Remaining": "0"}, `{"message": "Forbidden"}`, apperr.KindRateLimited},
		{"forbidden", 403, nil, `{"message": "Must have admin rights"}`, apperr.KindAuth},
		{"not found", 404, nil, `{"message": "Not Found"}`, apperr.KindNotFound},
		{"validation", 422, nil, `{"message": "Validation Failed"}`, apperr.KindInvalidInput},
		{"server", 502, nil, `<html>bad gateway</html>`, apperr.KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			_, err := c.GetCurrentUser(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestRateLimitCarriesRetryAfter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.GetRepository(context.Background(), "a/b")

	var apiErr *apperr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apperr.KindRateLimited, apiErr.Kind)
	assert.Equal(t, 30*time.Second, apiErr.RetryAfter)
}

func TestMalformedBodyIsDecodingError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login": `)
	})
	_, err := c.GetCurrentUser(context.Background())
	assert.Equal(t, apperr.KindDecoding, apperr.KindOf(err))
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := NewClient(nil, Options{BaseURL: srv.URL})

	_, err := c.GetCurrentUser(context.Background())
	assert.True(t, apperr.Retryable(err))
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}

func TestCancelledContextIsNotClassified(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetCurrentUser(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetReadmeDecodesContent(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("# Hello\n\nWorld"))
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/cat/readme", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"content":  encoded[:8] + "\n" + encoded[8:],
			"encoding": "base64",
		})
	})

	readme, err := c.GetReadme(context.Background(), "octo/cat")
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n\nWorld", readme)
}

func TestStarProbesAndToggles(t *testing.T) {
	var methods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/starred/octo/cat", r.URL.Path)
		methods = append(methods, r.Method)
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	starred, err := c.IsStarred(context.Background(), "octo/cat")
	require.NoError(t, err)
	assert.False(t, starred)

	require.NoError(t, c.SetStarred(context.Background(), "octo/cat", true))
	require.NoError(t, c.SetStarred(context.Background(), "octo/cat", false))
	assert.Equal(t, []string{http.MethodGet, http.MethodPut, http.MethodDelete}, methods)
}

func TestInvalidRepositoryName(t *testing.T) {
	c := NewClient(nil, Options{})
	_, err := c.GetRepository(context.Background(), "no-slash")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestListNotifications(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("all"))
		assert.Equal(t, "true", r.URL.Query().Get("participating"))
		fmt.Fprint(w, `[{"id": "7", "unread": true, "reason": "mention",
			"updated_at": "2024-05-01T10:00:00Z",
			"repository": {"full_name": "octo/cat"},
			"subject": {"title": "Fix it", "url": null, "type": "Issue"}}]`)
	})

	items, err := c.ListNotifications(context.Background(), NotificationOptions{All: true, Participating: true, Page: 1, PerPage: 30})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].ID)
	assert.True(t, items[0].Reason.Participating())
	assert.Empty(t, items[0].SubjectURL)
}

func TestGetSubjectStaysOnAPIHost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 3, "title": "Crash", "state": "closed", "merged": true, "user": {"login": "mona"}, "body": "trace"}`)
	})

	_, err := c.GetSubject(context.Background(), "https://evil.example.com/repos/a/b/issues/1")
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	detail, err := c.GetSubject(context.Background(), c.baseURL+"/repos/a/b/pulls/3")
	require.NoError(t, err)
	assert.Equal(t, "merged", detail.State)
	assert.Equal(t, "mona", detail.Author)
}

func TestWithTokenOverridesSource(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"login": "mona"}`)
	})

	user, err := c.WithToken("candidate").GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mona", user.Login)
	assert.Equal(t, "Bearer candidate", auth)
}
