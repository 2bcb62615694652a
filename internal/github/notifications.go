package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"octoterm/internal/apperr"
	"octoterm/internal/model"
)

// NotificationOptions filters the notification feed.
type NotificationOptions struct {
	All           bool // include read notifications
	Participating bool // only threads the user takes part in
	Page          int
	PerPage       int
}

// ListNotifications lists notification threads for the signed-in user.
func (c *Client) ListNotifications(ctx context.Context, opts NotificationOptions) ([]model.Notification, error) {
	query := pageQuery(opts.Page, opts.PerPage)
	if opts.All {
		query.Set("all", "true")
	}
	if opts.Participating {
		query.Set("participating", "true")
	}

	var threads []notificationJSON
	if err := c.do(ctx, request{op: "list_notifications", method: http.MethodGet, path: "/notifications", query: query}, &threads); err != nil {
		return nil, err
	}
	out := make([]model.Notification, 0, len(threads))
	for _, n := range threads {
		out = append(out, n.toModel())
	}
	return out, nil
}

// MarkThreadRead marks one notification thread as read.
func (c *Client) MarkThreadRead(ctx context.Context, threadID string) error {
	if threadID == "" {
		return apperr.New(apperr.KindInvalidInput, "mark_thread_read", "missing thread id")
	}
	return c.do(ctx, request{op: "mark_thread_read", method: http.MethodPatch, path: "/notifications/threads/" + url.PathEscape(threadID)}, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, request{op: "mark_all_read", method: http.MethodPut, path: "/notifications", body: map[string]bool{"read": true}}, nil)
}

// GetSubject fetches the issue or pull request a notification points at.
// subjectURL must be an API URL on the configured host.
func (c *Client) GetSubject(ctx context.Context, subjectURL string) (model.SubjectDetail, error) {
	if subjectURL == "" {
		return model.SubjectDetail{}, apperr.New(apperr.KindNotFound, "get_subject", "notification has no subject")
	}
	if !strings.HasPrefix(subjectURL, c.baseURL+"/") {
		return model.SubjectDetail{}, apperr.New(apperr.KindInvalidInput, "get_subject", "subject is not on the API host")
	}

	var issue issueJSON
	if err := c.do(ctx, request{op: "get_subject", method: http.MethodGet, path: subjectURL}, &issue); err != nil {
		return model.SubjectDetail{}, err
	}
	return issue.toModel(), nil
}
