// Package localrepo inspects the git repository in the working directory
// so the init wizard can prefill the owner and repository to watch.
package localrepo

import (
	"fmt"
	"log/slog"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// Origin describes the GitHub project the local checkout tracks.
type Origin struct {
	Owner string
	Repo  string
}

// Detect opens the repository at dir and reads its "origin" remote.
// A missing repository or remote is reported as an error so callers can
// fall back to asking the user.
func Detect(dir string) (*Origin, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return nil, fmt.Errorf("reading origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("origin remote has no URL")
	}

	owner, name, err := ParseOwnerRepo(urls[0])
	if err != nil {
		return nil, err
	}

	slog.Debug("Detected origin remote", "url", urls[0], "owner", owner, "repo", name)
	return &Origin{Owner: owner, Repo: name}, nil
}

// ParseOwnerRepo extracts "owner" and "repo" from the common GitHub remote
// URL shapes:
//
//	https://github.com/owner/repo.git
//	https://github.com/owner/repo
//	git@github.com:owner/repo.git
//	ssh://git@github.com/owner/repo.git
func ParseOwnerRepo(remoteURL string) (owner, repo string, err error) {
	u := strings.TrimSpace(remoteURL)
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, ".git")

	// scp-like syntax: git@host:owner/repo
	if at := strings.Index(u, "@"); at >= 0 && !strings.Contains(u, "://") {
		if colon := strings.Index(u, ":"); colon > at {
			u = u[colon+1:]
		}
	} else {
		for _, scheme := range []string{"https://", "http://", "ssh://", "git://"} {
			if rest, ok := strings.CutPrefix(u, scheme); ok {
				u = rest
				break
			}
		}
		// Drop user@ and the host segment.
		if at := strings.Index(u, "@"); at >= 0 {
			u = u[at+1:]
		}
		if slash := strings.Index(u, "/"); slash >= 0 {
			u = u[slash+1:]
		}
	}

	parts := strings.Split(u, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("remote URL %q does not look like a GitHub repository", remoteURL)
	}
	return parts[0], parts[1], nil
}
