package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status  int
		message string
		want    Kind
	}{
		{http.StatusBadRequest, "", KindInvalidInput},
		{http.StatusUnprocessableEntity, "Validation Failed", KindInvalidInput},
		{http.StatusUnauthorized, "Bad credentials", KindAuth},
		{http.StatusForbidden, "API rate limit exceeded for user", KindRateLimited},
		{http.StatusForbidden, "Resource not accessible by integration", KindAuth},
		{http.StatusTooManyRequests, "", KindRateLimited},
		{http.StatusNotFound, "Not Found", KindNotFound},
		{http.StatusRequestTimeout, "", KindNetwork},
		{http.StatusBadGateway, "", KindNetwork},
		{http.StatusTeapot, "", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d %s", tt.status, tt.message), func(t *testing.T) {
			err := FromStatus("op", tt.status, tt.message)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestKindOfSeesThroughWrapping(t *testing.T) {
	inner := FromStatus("get_user", http.StatusUnauthorized, "Bad credentials")
	wrapped := fmt.Errorf("failed to load profile: %w", inner)

	assert.Equal(t, KindAuth, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindAuth))
	assert.False(t, Retryable(wrapped))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindNetwork, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindUnknown, KindOf(errors.New("mystery")))
	assert.False(t, Is(nil, KindUnknown))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(New(KindNetwork, "op", "")))
	assert.True(t, Retryable(New(KindRateLimited, "op", "")))
	for _, k := range []Kind{KindInvalidInput, KindAuth, KindNotFound, KindDecoding, KindUnknown} {
		assert.False(t, Retryable(New(k, "op", "")), k.String())
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindNotFound, Op: "get_repository", Status: 404, Message: "Not Found"}
	assert.Equal(t, "get_repository: not_found (status 404): Not Found", err.Error())

	wrapped := Wrap(KindDecoding, "search", errors.New("unexpected EOF"))
	assert.Equal(t, "search: decoding: unexpected EOF", wrapped.Error())
	assert.ErrorIs(t, wrapped, wrapped.Err)
}

type carrying struct{ err error }

func (c carrying) Failure() error { return c.err }

func TestFailureOf(t *testing.T) {
	boom := New(KindAuth, "user", "Bad credentials")
	assert.Equal(t, error(boom), FailureOf(carrying{err: boom}))
	assert.NoError(t, FailureOf(carrying{}))
	assert.NoError(t, FailureOf("not a result"))
}
