// Package cache provides in-process caching for rendered graph artifacts and
// content hashing for analyzer snapshots.
//
// The engine keeps no state across process restarts, so every backend here
// lives in memory: [MemoryCache] for servers that re-export the same graph
// many times, and [NullCache] when caching is disabled.
//
// # Keys
//
// Artifact keys combine the graph's content hash with the export options:
//
//	key := cache.ArtifactKey(cache.Hash(graphJSON), cache.ArtifactKeyOpts{Format: "svg", Theme: "dark"})
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered exports stay cached.
const TTLArtifact = 10 * time.Minute

// Cache stores byte payloads under string keys.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// ArtifactKeyOpts are the export options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Theme  string `json:"theme,omitempty"`
}

// ArtifactKey generates a key for a rendered export of the graph with the
// given content hash.
func ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
