// Package cache stores rendered simulation results on disk with a TTL.
//
// Entries live as one JSON file per key under the cache directory
// (default ~/.carbonsim/cache). Keys are SHA-256 digests of the simulation
// inputs, so identical requests against the same dataset hit the same file.
// Writes go through a temporary file and a rename. When a size limit is set,
// the oldest entries are evicted after each write.
package cache
