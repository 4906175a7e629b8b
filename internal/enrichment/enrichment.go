package enrichment

import (
	"context"
	"sync"
)

// Profile is what the users service reports about a client.
type Profile struct {
	PhotoURL   *string `json:"foto_url"`
	Reputation float64 `json:"reputacion"`
}

// Result wraps a Profile so callers can tell a fetched profile apart
// from defaults substituted after a failed lookup: Found is false when
// the lookup did not succeed and the zero Profile stands in.
type Result struct {
	Profile Profile
	Found   bool
}

type ProfileFetcher interface {
	// Fetch never returns an error: a failed lookup yields a Result
	// with Found=false and callers render default values.
	Fetch(ctx context.Context, clientID string) Result
}

// FetchMany resolves profiles for a batch of client ids. Ids are
// deduplicated first, then one lookup per unique id runs concurrently;
// the whole batch is awaited before returning. Individual failures are
// already absorbed by Fetch, so the map always holds an entry per
// unique id.
func FetchMany(ctx context.Context, fetcher ProfileFetcher, clientIDs []string) map[string]Result {
	unique := make(map[string]struct{}, len(clientIDs))
	for _, id := range clientIDs {
		unique[id] = struct{}{}
	}

	results := make(map[string]Result, len(unique))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for id := range unique {
		wg.Add(1)
		go func(clientID string) {
			defer wg.Done()

			res := fetcher.Fetch(ctx, clientID)

			mu.Lock()
			results[clientID] = res
			mu.Unlock()
		}(id)
	}

	wg.Wait()

	return results
}
