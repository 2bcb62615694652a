// Package i18n turns error kinds and notices into user-facing text.
package i18n

import (
	"errors"
	"fmt"
	"math"

	"octoterm/internal/apperr"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message IDs.
const (
	ErrInvalidInput     = "error.invalid_input"
	ErrInvalidInputWith = "error.invalid_input_detail"
	ErrNetwork          = "error.network"
	ErrAuth             = "error.auth"
	ErrRateLimited      = "error.rate_limited"
	ErrRateLimitedFor   = "error.rate_limited_for"
	ErrNotFound         = "error.not_found"
	ErrDecoding         = "error.decoding"
	ErrUnknown          = "error.unknown"

	NoticeSignInRequired = "notice.sign_in_required"
	NoticeSignedOut      = "notice.signed_out"
	NoticeSettingsSaved  = "notice.settings_saved"
	NoticeStarFailed     = "notice.star_failed"
	NoticeWatchFailed    = "notice.watch_failed"
	NoticeMarkReadFailed = "notice.mark_read_failed"
	NoticeLanguageLater  = "notice.language_on_restart"
	NoticeUnread         = "notice.unread"
)

// Supported lists the languages with a full catalog. The first is the fallback.
var Supported = []language.Tag{language.English, language.Korean}

var english = []*goi18n.Message{
	{ID: ErrInvalidInput, Other: "Check your input and try again."},
	{ID: ErrInvalidInputWith, Other: "Invalid input: {{.Detail}}"},
	{ID: ErrNetwork, Other: "Network error. Check your connection and retry."},
	{ID: ErrAuth, Other: "Your session is no longer valid. Please sign in again."},
	{ID: ErrRateLimited, Other: "GitHub rate limit reached. Try again later."},
	{ID: ErrRateLimitedFor, Other: "GitHub rate limit reached. Try again in {{.Seconds}}s."},
	{ID: ErrNotFound, Other: "Not found."},
	{ID: ErrDecoding, Other: "GitHub sent a response octoterm could not read."},
	{ID: ErrUnknown, Other: "Something went wrong."},
	{ID: NoticeSignInRequired, Other: "Sign in to continue."},
	{ID: NoticeSignedOut, Other: "Signed out."},
	{ID: NoticeSettingsSaved, Other: "Settings saved."},
	{ID: NoticeStarFailed, Other: "Could not update star."},
	{ID: NoticeWatchFailed, Other: "Could not update watch status."},
	{ID: NoticeMarkReadFailed, Other: "Could not mark as read."},
	{ID: NoticeLanguageLater, Other: "Language changes apply after restart."},
	{ID: NoticeUnread, One: "{{.Count}} unread notification", Other: "{{.Count}} unread notifications"},
}

var korean = []*goi18n.Message{
	{ID: ErrInvalidInput, Other: "입력을 확인한 뒤 다시 시도하세요."},
	{ID: ErrInvalidInputWith, Other: "잘못된 입력: {{.Detail}}"},
	{ID: ErrNetwork, Other: "네트워크 오류입니다. 연결을 확인하고 다시 시도하세요."},
	{ID: ErrAuth, Other: "세션이 만료되었습니다. 다시 로그인하세요."},
	{ID: ErrRateLimited, Other: "GitHub 요청 한도에 도달했습니다. 잠시 후 다시 시도하세요."},
	{ID: ErrRateLimitedFor, Other: "GitHub 요청 한도에 도달했습니다. {{.Seconds}}초 후 다시 시도하세요."},
	{ID: ErrNotFound, Other: "찾을 수 없습니다."},
	{ID: ErrDecoding, Other: "GitHub 응답을 읽을 수 없습니다."},
	{ID: ErrUnknown, Other: "알 수 없는 오류가 발생했습니다."},
	{ID: NoticeSignInRequired, Other: "계속하려면 로그인하세요."},
	{ID: NoticeSignedOut, Other: "로그아웃했습니다."},
	{ID: NoticeSettingsSaved, Other: "설정을 저장했습니다."},
	{ID: NoticeStarFailed, Other: "스타 상태를 변경하지 못했습니다."},
	{ID: NoticeWatchFailed, Other: "워치 상태를 변경하지 못했습니다."},
	{ID: NoticeMarkReadFailed, Other: "읽음으로 표시하지 못했습니다."},
	{ID: NoticeLanguageLater, Other: "언어 변경은 다시 시작한 뒤 적용됩니다."},
	{ID: NoticeUnread, Other: "읽지 않은 알림 {{.Count}}개"},
}

// Catalog is immutable once built, so reducers may hold one without losing purity.
type Catalog struct {
	tag       language.Tag
	localizer *goi18n.Localizer
}

// ParseLanguage resolves lang to the closest supported language.
func ParseLanguage(lang string) (language.Tag, error) {
	if lang == "" {
		return Supported[0], nil
	}
	parsed, err := language.Parse(lang)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", lang, err)
	}
	_, idx, _ := language.NewMatcher(Supported).Match(parsed)
	return Supported[idx], nil
}

// New builds the catalog for lang, falling back to English for anything
// without a translation.
func New(lang string) (*Catalog, error) {
	tag, err := ParseLanguage(lang)
	if err != nil {
		return nil, err
	}

	bundle := goi18n.NewBundle(Supported[0])
	if err := bundle.AddMessages(language.English, english...); err != nil {
		return nil, fmt.Errorf("failed to load english messages: %w", err)
	}
	if err := bundle.AddMessages(language.Korean, korean...); err != nil {
		return nil, fmt.Errorf("failed to load korean messages: %w", err)
	}

	return &Catalog{
		tag:       tag,
		localizer: goi18n.NewLocalizer(bundle, tag.String()),
	}, nil
}

// Language returns the language the catalog renders.
func (c *Catalog) Language() language.Tag {
	return c.tag
}

// Text renders message id. Unknown IDs render as themselves.
func (c *Catalog) Text(id string) string {
	return c.render(&goi18n.LocalizeConfig{MessageID: id})
}

// Format renders message id with template data.
func (c *Catalog) Format(id string, data map[string]any) string {
	return c.render(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
}

// Unread renders the pluralized unread notification count.
func (c *Catalog) Unread(n int) string {
	return c.render(&goi18n.LocalizeConfig{
		MessageID:    NoticeUnread,
		PluralCount:  n,
		TemplateData: map[string]any{"Count": n},
	})
}

// Describe renders the message for err's kind. A nil error renders as "".
func (c *Catalog) Describe(err error) string {
	if err == nil {
		return ""
	}
	var appErr *apperr.Error
	hasDetail := errors.As(err, &appErr)

	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		if hasDetail && appErr.Message != "" {
			return c.Format(ErrInvalidInputWith, map[string]any{"Detail": appErr.Message})
		}
		return c.Text(ErrInvalidInput)
	case apperr.KindNetwork:
		return c.Text(ErrNetwork)
	case apperr.KindAuth:
		return c.Text(ErrAuth)
	case apperr.KindRateLimited:
		if hasDetail && appErr.RetryAfter > 0 {
			secs := int(math.Ceil(appErr.RetryAfter.Seconds()))
			return c.Format(ErrRateLimitedFor, map[string]any{"Seconds": secs})
		}
		return c.Text(ErrRateLimited)
	case apperr.KindNotFound:
		return c.Text(ErrNotFound)
	case apperr.KindDecoding:
		return c.Text(ErrDecoding)
	default:
		return c.Text(ErrUnknown)
	}
}

func (c *Catalog) render(cfg *goi18n.LocalizeConfig) string {
	s, err := c.localizer.Localize(cfg)
	if err != nil {
		return cfg.MessageID
	}
	return s
}
