package footage

import "context"

// Variant is one encoded rendition of a stock video candidate.
type Variant struct {
	URL    string
	Width  int
	Height int
}

// Candidate is one stock-footage search result with its available renditions,
// in the provider's returned order.
type Candidate struct {
	ID       string
	Duration int // seconds
	Variants []Variant
}

// Provider searches a stock-footage catalog. perPage bounds how many
// candidates are returned for a query.
type Provider interface {
	Search(ctx context.Context, query string, perPage int) ([]Candidate, error)
}

// Result is the selected clip for one search term: the chosen variant's
// direct download URL plus the candidate it came from. Results are ephemeral —
// consumed immediately to materialize a local file, retained only as the set
// of already-used ids/URLs for deduplication within one run.
type Result struct {
	ID       string
	URL      string
	Duration int
	Width    int
	Height   int
}
