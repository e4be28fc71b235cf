package localrepo

import "testing"

func TestParseOwnerRepo(t *testing.T) {
	cases := []struct {
		url   string
		owner string
		repo  string
	}{
		{"https://github.com/vercel/next.js.git", "vercel", "next.js"},
		{"https://github.com/vercel/swr", "vercel", "swr"},
		{"git@github.com:vercel/turborepo.git", "vercel", "turborepo"},
		{"ssh://git@github.com/pipedeck/pipedeck.git", "pipedeck", "pipedeck"},
		{"https://github.com/pipedeck/pipedeck/", "pipedeck", "pipedeck"},
	}
	for _, tc := range cases {
		owner, repo, err := ParseOwnerRepo(tc.url)
		if err != nil {
			t.Fatalf("ParseOwnerRepo(%q): %v", tc.url, err)
		}
		if owner != tc.owner || repo != tc.repo {
			t.Fatalf("ParseOwnerRepo(%q) = %q/%q, want %q/%q", tc.url, owner, repo, tc.owner, tc.repo)
		}
	}
}

func TestParseOwnerRepoRejectsGarbage(t *testing.T) {
	for _, url := range []string{"", "github.com", "https://github.com/", "just-a-name"} {
		if _, _, err := ParseOwnerRepo(url); err == nil {
			t.Fatalf("ParseOwnerRepo(%q) accepted an invalid URL", url)
		}
	}
}
