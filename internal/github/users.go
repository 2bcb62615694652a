package github

import (
	"context"
	"net/http"

	"octoterm/internal/model"
)

// GetCurrentUser fetches the account the token belongs to.
func (c *Client) GetCurrentUser(ctx context.Context) (model.User, error) {
	var user userJSON
	if err := c.do(ctx, request{op: "get_current_user", method: http.MethodGet, path: "/user"}, &user); err != nil {
		return model.User{}, err
	}
	return user.toModel(), nil
}
