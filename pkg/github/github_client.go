// package github wraps the go-github client with the two upstream calls the
// analyzer needs: repository search by language and commit counting by author.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-github/v54/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/open-sauced/pizza/analyzer/pkg/common"
)

// DefaultUserAgent is the client identifier sent with every upstream request
// unless configured otherwise.
const DefaultUserAgent = "GitHubRepoAnalyzer"

// Options configures where and how the GithubClient talks to the API.
type Options struct {
	// BaseURL of the REST API. Defaults to the public GitHub API.
	BaseURL string

	// UserAgent is sent as the client identifier header.
	UserAgent string

	// CommitsPerPage is the page size requested from the commit listing
	// endpoint. Only the first page is ever read. Zero uses the upstream default.
	CommitsPerPage int
}

type GithubClient struct {
	client         *github.Client
	logger         *zap.SugaredLogger
	commitsPerPage int
}

// NewTokenClient returns a GithubClient which authenticates every request with
// the provided token as a bearer credential. An empty token yields an
// unauthenticated client.
func NewTokenClient(token string, opts Options, logger *zap.SugaredLogger) (*GithubClient, error) {
	httpClient := &http.Client{}
	if token != "" {
		httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}

	return NewClient(httpClient, opts, logger)
}

// NewClient returns a GithubClient using the provided http client as is.
func NewClient(httpClient *http.Client, opts Options, logger *zap.SugaredLogger) (*GithubClient, error) {
	client := github.NewClient(httpClient)

	if opts.BaseURL != "" {
		normalized, err := common.NormalizeBaseURL(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("could not normalize base URL: %w", err)
		}

		baseURL, err := url.Parse(normalized)
		if err != nil {
			return nil, fmt.Errorf("could not parse base URL: %w", err)
		}
		client.BaseURL = baseURL
	}

	client.UserAgent = DefaultUserAgent
	if opts.UserAgent != "" {
		client.UserAgent = opts.UserAgent
	}

	return &GithubClient{
		client:         client,
		logger:         logger,
		commitsPerPage: opts.CommitsPerPage,
	}, nil
}

// SearchRepositoriesByLanguage returns the first page of repositories written
// in the given language, most starred first.
//
// The items are requested through the raw client rather than
// Search.Repositories so their upstream bytes are kept alongside the decoded
// repositories.
func (s *GithubClient) SearchRepositoriesByLanguage(ctx context.Context, language string) ([]*SearchItem, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("language:%s", language))
	params.Set("sort", "stars")
	params.Set("order", "desc")

	req, err := s.client.NewRequest(http.MethodGet, "search/repositories?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build search request for language %s: %w", language, err)
	}

	var result searchResult

	s.logger.Debugf("Searching repositories for language: %s", language)
	if _, err := s.client.Do(ctx, req, &result); err != nil {
		return nil, fmt.Errorf("could not search repositories for language %s: %w", language, err)
	}

	items := make([]*SearchItem, 0, len(result.Items))
	for i, raw := range result.Items {
		item, err := NewSearchItem(raw)
		if err != nil {
			return nil, fmt.Errorf("could not search repositories for language %s: item %d: %w", language, i, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// searchResult is the envelope of the repository search endpoint.
type searchResult struct {
	Total             *int              `json:"total_count"`
	IncompleteResults *bool             `json:"incomplete_results"`
	Items             []json.RawMessage `json:"items"`
}

// CountCommitsByAuthor returns the number of commits the author has on the
// first page of the repository's commit listing. Failures are logged and
// counted as zero commits.
func (s *GithubClient) CountCommitsByAuthor(ctx context.Context, fullName, author string) int {
	owner, repo, err := common.SplitFullName(fullName)
	if err != nil {
		s.logger.Errorf("Could not count commits by %s: %v", author, err)
		return 0
	}

	opts := &github.CommitsListOptions{
		Author:      author,
		ListOptions: github.ListOptions{PerPage: s.commitsPerPage},
	}

	s.logger.Debugf("Listing commits in %s by author %s", fullName, author)
	commits, _, err := s.client.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		s.logger.Errorf("Could not list commits in %s by author %s: %v", fullName, author, err)
		return 0
	}

	return len(commits)
}
