package common

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBaseURL attempts to take a raw API base URL and ensure it is
// normalized before the GitHub client is configured with it. The go-github
// client requires its base URL to end in exactly one slash.
func NormalizeBaseURL(baseURL string) (string, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", err
	}

	// Check if it has a valid protocol specified (e.g., https, http)
	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return "", fmt.Errorf("base URL missing valid protocol scheme (https, http): %s", baseURL)
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("base URL missing host: %s", baseURL)
	}

	// Collapse trailing slashes into a single one
	// Example: https://api.github.com// to https://api.github.com/
	parsedURL.Path = strings.TrimRight(parsedURL.Path, "/") + "/"

	// Query and fragment have no meaning on a base URL
	parsedURL.RawQuery = ""
	parsedURL.Fragment = ""

	return parsedURL.String(), nil
}

// SplitFullName splits a repository full name of the form "owner/repo".
func SplitFullName(fullName string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("repository full name is not of the form owner/repo: %q", fullName)
	}

	return owner, repo, nil
}
