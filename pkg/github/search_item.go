package github

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-github/v54/github"
)

// SearchItem is a single repository of a search result. The typed record is
// used to traverse the item while Raw keeps the upstream bytes untouched, so
// fields go-github does not model survive when the item is written back out.
type SearchItem struct {
	*github.Repository
	Raw json.RawMessage
}

// NewSearchItem decodes one upstream search item. A payload that does not
// have the shape of a repository is rejected.
func NewSearchItem(raw json.RawMessage) (*SearchItem, error) {
	var repo *github.Repository
	if err := json.Unmarshal(raw, &repo); err != nil {
		return nil, fmt.Errorf("could not decode repository: %w", err)
	}

	return &SearchItem{
		Repository: repo,
		Raw:        raw,
	}, nil
}

// MarshalJSON writes the upstream bytes verbatim, falling back to the typed
// record for items that were not decoded from upstream.
func (s SearchItem) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	return json.Marshal(s.Repository)
}
