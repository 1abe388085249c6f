package model

// Freshness describes where a returned resource value came from.
type Freshness string

const (
	// FreshnessAbsent means neither the cache nor the remote had a value.
	FreshnessAbsent Freshness = "absent"
	// FreshnessCached means the value came from the local cache, either
	// because the app is offline or because a remote refresh failed.
	FreshnessCached Freshness = "cached"
	// FreshnessFresh means the value was just fetched from the remote and
	// the cache was overwritten with it.
	FreshnessFresh Freshness = "fresh"
)
