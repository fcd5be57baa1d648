package cache

import "time"

// Entry records one saved build artifact set. Entries are written once by a
// Build stage and only ever read afterwards.
type Entry struct {
	// Key is the derived cache key this entry was saved under
	Key string `json:"key"`

	// Revision that produced the artifacts
	Revision string `json:"revision"`

	// Paths lists the module-root-relative directories that were present
	// and copied when the entry was saved
	Paths []string `json:"paths"`

	// SavedAt is when the entry was written
	SavedAt time.Time `json:"saved_at"`
}
