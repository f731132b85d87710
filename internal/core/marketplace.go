package core

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// ownerRepoPattern matches "owner/repo" format (2 segments, no protocol).
var ownerRepoPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+$`)

// RepoRef is a marketplace source reduced to owner and repository name.
type RepoRef struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// String returns the canonical "owner/repo" form, lowercased.
func (r RepoRef) String() string {
	return strings.ToLower(r.Owner + "/" + r.Repo)
}

// ParseRepoRef extracts owner/repo from a marketplace link. Supported forms:
//
//   - "owner/repo"
//   - "https://github.com/owner/repo[.git][/...]" (any https/http host)
//   - "git@host:owner/repo.git"
func ParseRepoRef(input string) (RepoRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return RepoRef{}, fmt.Errorf("empty marketplace link")
	}

	// SSH git URL: git@host:owner/repo.git
	if strings.HasPrefix(input, "git@") {
		parts := strings.SplitN(input, ":", 2)
		if len(parts) != 2 {
			return RepoRef{}, fmt.Errorf("invalid SSH URL: %q", input)
		}
		repoPath := strings.TrimSuffix(parts[1], ".git")
		segments := strings.SplitN(repoPath, "/", 2)
		if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
			return RepoRef{}, fmt.Errorf("invalid SSH URL: %q", input)
		}
		return RepoRef{Owner: segments[0], Repo: segments[1]}, nil
	}

	// HTTPS URLs
	if strings.HasPrefix(input, "https://") || strings.HasPrefix(input, "http://") {
		u, err := url.Parse(input)
		if err != nil {
			return RepoRef{}, fmt.Errorf("invalid URL: %w", err)
		}
		pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(pathParts) < 2 || pathParts[0] == "" || pathParts[1] == "" {
			return RepoRef{}, fmt.Errorf("URL has no owner/repo path: %q", input)
		}
		return RepoRef{
			Owner: pathParts[0],
			Repo:  strings.TrimSuffix(pathParts[1], ".git"),
		}, nil
	}

	// owner/repo (exactly 2 path segments)
	if ownerRepoPattern.MatchString(input) {
		segments := strings.SplitN(input, "/", 2)
		return RepoRef{Owner: segments[0], Repo: strings.TrimSuffix(segments[1], ".git")}, nil
	}

	return RepoRef{}, fmt.Errorf("unrecognized marketplace link: %q", input)
}

// KnownMarketplaces reads the synced marketplaces recorded by Claude Code.
// A missing file means none are synced.
func (s *Scanner) KnownMarketplaces() ([]Marketplace, error) {
	raw, err := readFileString(s.paths.MarketplacesFile())
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	// The file is an object keyed by marketplace name.
	var byName map[string]struct {
		Repo string `json:"repo"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(standardizeJSON([]byte(raw)), &byName); err != nil {
		return nil, fmt.Errorf("%s: %w", s.paths.MarketplacesFile(), ErrMalformed)
	}

	var markets []Marketplace
	for name, m := range byName {
		repo := m.Repo
		if repo == "" {
			repo = m.URL
		}
		markets = append(markets, Marketplace{Name: name, Repo: repo})
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].Name < markets[j].Name })
	return markets, nil
}

// MarketplaceMatch identifies the synced marketplace a link points at.
type MarketplaceMatch struct {
	Marketplace string `json:"marketplace"`
	Ref         RepoRef `json:"ref"`
	Matched     bool   `json:"matched"`
}

// MatchMarketplace resolves a template or install link against the synced
// marketplaces by comparing normalized owner/repo pairs. An unparseable
// marketplace record is skipped, not fatal; a link matching nothing yields
// Matched=false with no error.
func MatchMarketplace(link string, marketplaces []Marketplace) (MarketplaceMatch, error) {
	ref, err := ParseRepoRef(link)
	if err != nil {
		return MarketplaceMatch{}, err
	}

	for _, m := range marketplaces {
		mref, err := ParseRepoRef(m.Repo)
		if err != nil {
			continue
		}
		if mref.String() == ref.String() {
			return MarketplaceMatch{Marketplace: m.Name, Ref: ref, Matched: true}, nil
		}
	}
	return MarketplaceMatch{Ref: ref}, nil
}
