package models

import "time"

// Repository is a pass-through of the provider's repository metadata. No
// normalization happens here beyond field selection.
type Repository struct {
	ID            int64     `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	FullName      string    `json:"full_name" yaml:"full_name"`
	Description   string    `json:"description" yaml:"description"`
	Private       bool      `json:"private" yaml:"private"`
	HTMLURL       string    `json:"html_url" yaml:"html_url"`
	DefaultBranch string    `json:"default_branch" yaml:"default_branch"`
	Language      string    `json:"language" yaml:"language"`
	Stars         int       `json:"stars" yaml:"stars"`
	Forks         int       `json:"forks" yaml:"forks"`
	OpenIssues    int       `json:"open_issues" yaml:"open_issues"`
	PushedAt      time.Time `json:"pushed_at" yaml:"pushed_at"`
	Owner         RepoOwner `json:"owner" yaml:"owner"`
}

// RepoOwner identifies the account a repository belongs to.
type RepoOwner struct {
	Login     string `json:"login" yaml:"login"`
	AvatarURL string `json:"avatar_url" yaml:"avatar_url"`
	HTMLURL   string `json:"html_url" yaml:"html_url"`
}
