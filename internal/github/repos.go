package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"octoterm/internal/apperr"
	"octoterm/internal/model"

	"github.com/tidwall/gjson"
)

// SearchParams describes a repository search.
type SearchParams struct {
	Query      string
	Qualifiers string // e.g. "language:go", appended to Query
	Sort       string // stars, forks, updated; empty for best match
	Order      string // asc, desc
	Page       int
	PerPage    int
}

// SearchResult is one page of repository search results.
type SearchResult struct {
	TotalCount int
	Incomplete bool
	Items      []model.Repository
}

// SearchRepositories runs a repository search. An empty query is rejected
// without a request.
func (c *Client) SearchRepositories(ctx context.Context, params SearchParams) (SearchResult, error) {
	q := strings.TrimSpace(strings.TrimSpace(params.Query) + " " + strings.TrimSpace(params.Qualifiers))
	if strings.TrimSpace(params.Query) == "" && strings.TrimSpace(params.Qualifiers) == "" {
		return SearchResult{}, apperr.ErrEmptyQuery
	}

	query := pageQuery(params.Page, params.PerPage)
	query.Set("q", q)
	if params.Sort != "" {
		query.Set("sort", params.Sort)
	}
	if params.Order != "" {
		query.Set("order", params.Order)
	}

	var resp searchResponse
	if err := c.do(ctx, request{op: "search_repositories", method: http.MethodGet, path: "/search/repositories", query: query}, &resp); err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		TotalCount: resp.TotalCount,
		Incomplete: resp.IncompleteResults,
		Items:      repositories(resp.Items),
	}, nil
}

// GetRepository fetches a repository by owner/name.
func (c *Client) GetRepository(ctx context.Context, fullName string) (model.Repository, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return model.Repository{}, err
	}
	var repo repositoryJSON
	if err := c.do(ctx, request{op: "get_repository", method: http.MethodGet, path: path}, &repo); err != nil {
		return model.Repository{}, err
	}
	return repo.toModel(), nil
}

// RepoListOptions filters the authenticated user's repositories.
type RepoListOptions struct {
	Affiliation string // all, owner, member
	Sort        string // updated, created, pushed, full_name
	Page        int
	PerPage     int
}

// ListCurrentUserRepositories lists repositories of the signed-in user.
func (c *Client) ListCurrentUserRepositories(ctx context.Context, opts RepoListOptions) ([]model.Repository, error) {
	query := pageQuery(opts.Page, opts.PerPage)
	if opts.Affiliation != "" {
		query.Set("type", opts.Affiliation)
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}

	var repos []repositoryJSON
	if err := c.do(ctx, request{op: "list_user_repositories", method: http.MethodGet, path: "/user/repos", query: query}, &repos); err != nil {
		return nil, err
	}
	return repositories(repos), nil
}

// ListStarred lists repositories starred by the signed-in user.
func (c *Client) ListStarred(ctx context.Context, opts RepoListOptions) ([]model.Repository, error) {
	query := pageQuery(opts.Page, opts.PerPage)
	if opts.Sort == "created" || opts.Sort == "updated" {
		query.Set("sort", opts.Sort)
	}

	var repos []repositoryJSON
	if err := c.do(ctx, request{op: "list_starred", method: http.MethodGet, path: "/user/starred", query: query}, &repos); err != nil {
		return nil, err
	}
	return repositories(repos), nil
}

// GetReadme returns the decoded README of a repository.
func (c *Client) GetReadme(ctx context.Context, fullName string) (string, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return "", err
	}

	var raw jsonBytes
	if err := c.do(ctx, request{op: "get_readme", method: http.MethodGet, path: path + "/readme"}, &raw); err != nil {
		return "", err
	}

	content := gjson.GetBytes(raw, "content").String()
	if enc := gjson.GetBytes(raw, "encoding").String(); enc != "base64" {
		return "", apperr.New(apperr.KindDecoding, "get_readme", fmt.Sprintf("unsupported encoding %q", enc))
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
	if err != nil {
		return "", apperr.Wrap(apperr.KindDecoding, "get_readme", err)
	}
	return string(decoded), nil
}

// IsStarred reports whether the signed-in user starred the repository.
func (c *Client) IsStarred(ctx context.Context, fullName string) (bool, error) {
	return c.probe(ctx, "check_starred", "/user/starred/", fullName, "")
}

// SetStarred stars or unstars a repository.
func (c *Client) SetStarred(ctx context.Context, fullName string, starred bool) error {
	owner, name, err := splitFullName(fullName)
	if err != nil {
		return err
	}
	method := http.MethodDelete
	if starred {
		method = http.MethodPut
	}
	path := "/user/starred/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
	return c.do(ctx, request{op: "set_starred", method: method, path: path}, nil)
}

// IsWatching reports whether the signed-in user watches the repository.
func (c *Client) IsWatching(ctx context.Context, fullName string) (bool, error) {
	return c.probe(ctx, "check_watching", "/repos/", fullName, "/subscription")
}

// SetWatching subscribes to or unsubscribes from a repository.
func (c *Client) SetWatching(ctx context.Context, fullName string, watching bool) error {
	path, err := repoPath(fullName)
	if err != nil {
		return err
	}
	req := request{op: "set_watching", method: http.MethodDelete, path: path + "/subscription"}
	if watching {
		req.method = http.MethodPut
		req.body = map[string]bool{"subscribed": true}
	}
	return c.do(ctx, req, nil)
}

// probe treats 2xx as true and 404 as false.
func (c *Client) probe(ctx context.Context, op, prefix, fullName, suffix string) (bool, error) {
	owner, name, err := splitFullName(fullName)
	if err != nil {
		return false, err
	}
	path := prefix + url.PathEscape(owner) + "/" + url.PathEscape(name) + suffix
	err = c.do(ctx, request{op: op, method: http.MethodGet, path: path}, nil)
	if isStatus(err, http.StatusNotFound) {
		return false, nil
	}
	return err == nil, err
}

// jsonBytes captures a response body verbatim for gjson lookups.
type jsonBytes []byte

func (b *jsonBytes) UnmarshalJSON(data []byte) error {
	*b = append((*b)[:0], data...)
	return nil
}
