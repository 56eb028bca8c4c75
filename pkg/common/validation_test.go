package common

import "testing"

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "Adds missing trailing slash",
			url:      "https://api.github.com",
			expected: "https://api.github.com/",
		},
		{
			name:     "Keeps single trailing slash",
			url:      "https://api.github.com/",
			expected: "https://api.github.com/",
		},
		{
			name:     "Collapses repeated trailing slashes",
			url:      "https://ghe.example.com/api/v3//",
			expected: "https://ghe.example.com/api/v3/",
		},
		{
			name:     "Drops query and fragment",
			url:      "http://127.0.0.1:8080/?foo=bar#frag",
			expected: "http://127.0.0.1:8080/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalizedURL, err := NormalizeBaseURL(tt.url)
			if err != nil {
				t.Fatalf("unexpected error: %s", err.Error())
			}

			if normalizedURL != tt.expected {
				t.Fatalf("normalized URL: %s is not expected: %s", normalizedURL, tt.expected)
			}
		})
	}
}

func TestNormalizeBaseURLError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
	}{
		{
			name: "Missing protocol fails",
			url:  "api.github.com",
		},
		{
			name: "Malformed protocol fails",
			url:  "ht:/api.github.com",
		},
		{
			name: "Unusable protocol fails",
			url:  "ssh://api.github.com",
		},
		{
			name: "Missing host fails",
			url:  "https:///path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalizedURL, err := NormalizeBaseURL(tt.url)
			if err == nil {
				t.Fatalf("expected error, got none: %s", normalizedURL)
			}
		})
	}
}

func TestSplitFullName(t *testing.T) {
	t.Parallel()

	owner, repo, err := SplitFullName("open-sauced/pizza")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	if owner != "open-sauced" || repo != "pizza" {
		t.Fatalf("unexpected split: %s %s", owner, repo)
	}

	for _, bad := range []string{"", "pizza", "/pizza", "open-sauced/", "a/b/c"} {
		if _, _, err := SplitFullName(bad); err == nil {
			t.Fatalf("expected error for %q, got none", bad)
		}
	}
}
