package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"octoterm/internal/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	apiVersion    = "2022-11-28"
	userAgent     = "octoterm"
	acceptJSON    = "application/vnd.github+json"
	maxErrorBytes = 64 << 10
)

// TokenSource supplies the access token sent with each request. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the token itself.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Options tune a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	Logger        logrus.FieldLogger
}

// Client wraps the GitHub REST API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient creates a new GitHub API client.
func NewClient(tokens TokenSource, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		log:        opts.Logger,
	}
}

// WithToken returns a client sharing this one's transport and limiter that
// always authenticates with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.tokens = StaticToken(token)
	return &clone
}

type request struct {
	op     string
	method string
	path   string // relative to the base URL, or an absolute API URL
	query  url.Values
	body   any
}

// do executes req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperr.Wrap(apperr.KindNetwork, req.op, err)
	}

	target := req.path
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + req.path
	}
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	httpReq.Header.Set("Accept", acceptJSON)
	httpReq.Header.Set("X-GitHub-Api-Version", apiVersion)
	httpReq.Header.Set("User-Agent", userAgent)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"op":         req.op,
		"method":     req.method,
		"path":       httpReq.URL.Path,
	})
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("request failed")
		return apperr.Wrap(apperr.KindNetwork, req.op, err)
	}
	defer resp.Body.Close()

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		apiErr := classify(req.op, resp, data)
		log.WithField("kind", apiErr.Kind.String()).Warn("request returned error status")
		return apiErr
	}
	log.Debug("request completed")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindDecoding, req.op, err)
	}
	return nil
}

func classify(op string, resp *http.Response, body []byte) *apperr.Error {
	message := gjson.GetBytes(body, "message").String()
	e := apperr.FromStatus(op, resp.StatusCode, message)

	if resp.Header.Get("X-RateLimit-Remaining") == "0" &&
		(resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests) {
		e.Kind = apperr.KindRateLimited
	}
	if e.Kind == apperr.KindRateLimited {
		e.RetryAfter = retryAfter(resp.Header, time.Now())
	}
	return e
}

func retryAfter(h http.Header, now time.Time) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(now); d > 0 {
				return d
			}
		}
	}
	return 0
}

// isStatus reports whether err is an API error with the given status.
func isStatus(err error, status int) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e.Status == status
}

func splitFullName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", apperr.New(apperr.KindInvalidInput, "repository", fmt.Sprintf("invalid repository name %q", fullName))
	}
	return owner, name, nil
}

func repoPath(fullName string) (string, error) {
	owner, name, err := splitFullName(fullName)
	if err != nil {
		return "", err
	}
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name), nil
}

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return q
}
