package i18n

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"octoterm/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDescribeEveryKind(t *testing.T) {
	c, err := New("en")
	require.NoError(t, err)

	tests := []struct {
		err  error
		want string
	}{
		{apperr.New(apperr.KindInvalidInput, "search", ""), "Check your input and try again."},
		{apperr.ErrEmptyQuery, "Invalid input: empty query"},
		{apperr.New(apperr.KindNetwork, "user", "timeout"), "Network error. Check your connection and retry."},
		{apperr.New(apperr.KindAuth, "user", "Bad credentials"), "Your session is no longer valid. Please sign in again."},
		{apperr.New(apperr.KindRateLimited, "search", ""), "GitHub rate limit reached. Try again later."},
		{apperr.New(apperr.KindNotFound, "repo", ""), "Not found."},
		{apperr.New(apperr.KindDecoding, "repo", ""), "GitHub sent a response octoterm could not read."},
		{errors.New("boom"), "Something went wrong."},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, c.Describe(tt.err))
		})
	}
}

func TestDescribeRateLimitWithRetryAfter(t *testing.T) {
	c, err := New("en")
	require.NoError(t, err)

	e := apperr.New(apperr.KindRateLimited, "search", "API rate limit exceeded")
	e.RetryAfter = 1500 * time.Millisecond
	assert.Equal(t, "GitHub rate limit reached. Try again in 2s.", c.Describe(fmt.Errorf("wrapped: %w", e)))
}

func TestDescribeNil(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Empty(t, c.Describe(nil))
}

func TestKorean(t *testing.T) {
	c, err := New("ko-KR")
	require.NoError(t, err)
	assert.Equal(t, language.Korean, c.Language())
	assert.Equal(t, "찾을 수 없습니다.", c.Describe(apperr.New(apperr.KindNotFound, "repo", "")))
	assert.Equal(t, "읽지 않은 알림 3개", c.Unread(3))
}

func TestUnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	c, err := New("fr")
	require.NoError(t, err)
	assert.Equal(t, language.English, c.Language())
	assert.Equal(t, "Signed out.", c.Text(NoticeSignedOut))
}

func TestInvalidLanguage(t *testing.T) {
	_, err := New("not a language!")
	assert.Error(t, err)
}

func TestUnreadPlural(t *testing.T) {
	c, err := New("en")
	require.NoError(t, err)
	assert.Equal(t, "1 unread notification", c.Unread(1))
	assert.Equal(t, "4 unread notifications", c.Unread(4))
}

func TestUnknownMessageRendersID(t *testing.T) {
	c, err := New("en")
	require.NoError(t, err)
	assert.Equal(t, "nope", c.Text("nope"))
}
