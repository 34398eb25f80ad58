// Package search defines the types shared by the lexical and semantic
// retrieval tiers.
package search

// Result is one ranked scenario candidate. Ephemeral; discarded after the
// response is rendered.
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
}

// Options bound a single search call.
type Options struct {
	Limit    int
	MinScore float64
}
