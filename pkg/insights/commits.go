// package insights provides data structures for insights powered by the
// analyzer service. For now, only per-author commit counts are supported.
package insights

// AuthorCommits is the main internal data structure that represents how many
// commits the owner of a single repository authored on it.
type AuthorCommits struct {
	Author      string `json:"author"`
	CommitCount int    `json:"commit_count"`
}
