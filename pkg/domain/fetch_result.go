package domain

// FetchResult is the outcome of ingesting one source. It is never persisted.
type FetchResult struct {
	SourceID   string   `json:"sourceId"`
	SourceName string   `json:"sourceName"`
	Created    int      `json:"created"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
}

// BatchFetchResult aggregates one FetchResult per active source.
type BatchFetchResult struct {
	TotalSources int           `json:"totalSources"`
	Results      []FetchResult `json:"results"`
}

// Totals sums created, skipped and error counts across all results.
func (b BatchFetchResult) Totals() (created, skipped, errs int) {
	for _, r := range b.Results {
		created += r.Created
		skipped += r.Skipped
		errs += len(r.Errors)
	}
	return created, skipped, errs
}

// SweepResult reports how many articles the retention sweep removed.
type SweepResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
