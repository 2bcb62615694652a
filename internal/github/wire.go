package github

import (
	"time"

	"octoterm/internal/model"
)

// API response types

type searchResponse struct {
	TotalCount        int              `json:"total_count"`
	IncompleteResults bool             `json:"incomplete_results"`
	Items             []repositoryJSON `json:"items"`
}

type ownerJSON struct {
	Login string `json:"login"`
}

type repositoryJSON struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Owner           ownerJSON `json:"owner"`
	Description     *string   `json:"description"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	WatchersCount   int       `json:"watchers_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	DefaultBranch   string    `json:"default_branch"`
	HTMLURL         string    `json:"html_url"`
	Private         bool      `json:"private"`
	Fork            bool      `json:"fork"`
	Archived        bool      `json:"archived"`
	Topics          []string  `json:"topics"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

func (r repositoryJSON) toModel() model.Repository {
	repo := model.Repository{
		ID:            r.ID,
		Name:          r.Name,
		FullName:      r.FullName,
		Owner:         r.Owner.Login,
		Stars:         r.StargazersCount,
		Forks:         r.ForksCount,
		Watchers:      r.WatchersCount,
		OpenIssues:    r.OpenIssuesCount,
		DefaultBranch: r.DefaultBranch,
		HTMLURL:       r.HTMLURL,
		Private:       r.Private,
		Fork:          r.Fork,
		Archived:      r.Archived,
		Topics:        r.Topics,
		UpdatedAt:     r.UpdatedAt,
		PushedAt:      r.PushedAt,
	}
	if r.Description != nil {
		repo.Description = *r.Description
	}
	if r.Language != nil {
		repo.Language = *r.Language
	}
	return repo
}

func repositories(in []repositoryJSON) []model.Repository {
	out := make([]model.Repository, 0, len(in))
	for _, r := range in {
		out = append(out, r.toModel())
	}
	return out
}

type userJSON struct {
	ID          int64   `json:"id"`
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	AvatarURL   string  `json:"avatar_url"`
	HTMLURL     string  `json:"html_url"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
}

func (u userJSON) toModel() model.User {
	return model.User{
		ID:          u.ID,
		Login:       u.Login,
		Name:        deref(u.Name),
		Bio:         deref(u.Bio),
		Company:     deref(u.Company),
		Location:    deref(u.Location),
		AvatarURL:   u.AvatarURL,
		HTMLURL:     u.HTMLURL,
		PublicRepos: u.PublicRepos,
		Followers:   u.Followers,
		Following:   u.Following,
	}
}

type notificationJSON struct {
	ID         string    `json:"id"`
	Unread     bool      `json:"unread"`
	Reason     string    `json:"reason"`
	UpdatedAt  time.Time `json:"updated_at"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Subject struct {
		Title string  `json:"title"`
		URL   *string `json:"url"`
		Type  string  `json:"type"`
	} `json:"subject"`
}

func (n notificationJSON) toModel() model.Notification {
	return model.Notification{
		ID:          n.ID,
		Repository:  n.Repository.FullName,
		Title:       n.Subject.Title,
		SubjectType: n.Subject.Type,
		SubjectURL:  deref(n.Subject.URL),
		Reason:      model.NotificationReason(n.Reason),
		Unread:      n.Unread,
		UpdatedAt:   n.UpdatedAt,
	}
}

type issueJSON struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Body      *string   `json:"body"`
	Comments  int       `json:"comments"`
	HTMLURL   string    `json:"html_url"`
	User      ownerJSON `json:"user"`
	Merged    bool      `json:"merged"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i issueJSON) toModel() model.SubjectDetail {
	state := i.State
	if i.Merged {
		state = "merged"
	}
	return model.SubjectDetail{
		Number:    i.Number,
		Title:     i.Title,
		State:     state,
		Author:    i.User.Login,
		Body:      deref(i.Body),
		Comments:  i.Comments,
		HTMLURL:   i.HTMLURL,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
