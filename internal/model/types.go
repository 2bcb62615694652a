package model

import "time"

// User represents a GitHub account.
type User struct {
	ID          int64
	Login       string
	Name        string
	Bio         string
	Company     string
	Location    string
	AvatarURL   string
	HTMLURL     string
	PublicRepos int
	Followers   int
	Following   int
}

// Repository represents a GitHub repository.
type Repository struct {
	ID            int64
	Name          string
	FullName      string
	Owner         string
	Description   string
	Language      string
	Stars         int
	Forks         int
	Watchers      int
	OpenIssues    int
	DefaultBranch string
	HTMLURL       string
	Private       bool
	Fork          bool
	Archived      bool
	Topics        []string
	UpdatedAt     time.Time
	PushedAt      time.Time
}

// NotificationReason is why GitHub delivered a notification.
type NotificationReason string

const (
	ReasonMention       NotificationReason = "mention"
	ReasonReviewRequest NotificationReason = "review_requested"
	ReasonAssign        NotificationReason = "assign"
	ReasonAuthor        NotificationReason = "author"
	ReasonComment       NotificationReason = "comment"
	ReasonSubscribed    NotificationReason = "subscribed"
	ReasonStateChange   NotificationReason = "state_change"
)

// Participating reports whether the user is directly involved.
func (r NotificationReason) Participating() bool {
	switch r {
	case ReasonMention, ReasonReviewRequest, ReasonAssign, ReasonAuthor, ReasonComment:
		return true
	}
	return false
}

// Notification represents one notification thread.
type Notification struct {
	ID          string
	Repository  string // owner/name
	Title       string
	SubjectType string // Issue, PullRequest, Release, ...
	SubjectURL  string // API URL of the subject, may be empty
	Reason      NotificationReason
	Unread      bool
	UpdatedAt   time.Time
}

// SubjectDetail is the issue or pull request behind a notification.
type SubjectDetail struct {
	Number    int
	Title     string
	State     string
	Author    string
	Body      string
	Comments  int
	HTMLURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appearance is the preferred color scheme.
type Appearance string

const (
	AppearanceAuto  Appearance = "auto"
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

// Settings are the persisted user preferences.
type Settings struct {
	Appearance           Appearance
	Language             string // BCP 47 tag
	NotificationsEnabled bool
	CodeHighlighting     bool
	WebLinksEnabled      bool
}

// DefaultSettings returns the preferences used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		Appearance:           AppearanceAuto,
		Language:             "en",
		NotificationsEnabled: true,
		CodeHighlighting:     true,
		WebLinksEnabled:      true,
	}
}
