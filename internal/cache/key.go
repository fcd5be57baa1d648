package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Namespace is the fixed prefix shared by every key this pipeline writes.
// Keys from other tools in the same store can never collide with ours.
const Namespace = "cementci"

// KeyDeriver computes cache keys for one pipeline run. The revision is
// fixed at construction so that every stage of the run, in any process,
// derives the same keys.
type KeyDeriver struct {
	// Revision identifies the source snapshot under build
	Revision string
}

// Key derives the cache key for the given channel qualifier.
//
// The key is a pure function of revision and qualifier: a Build stage saving
// under Key("") and a later Test stage restoring under Key("") address the
// same entry even though they run in separate processes. A non-empty
// qualifier selects an isolated channel (publish uses "nuget") so that the
// two channels can miss independently.
func (d KeyDeriver) Key(qualifier string) string {
	h := sha256.New()
	h.Write([]byte(Namespace))
	h.Write([]byte{0})
	h.Write([]byte(d.Revision))
	h.Write([]byte{0})
	h.Write([]byte(qualifier))

	sum := hex.EncodeToString(h.Sum(nil))

	if qualifier == "" {
		return Namespace + "-" + sum
	}

	return Namespace + "-" + qualifier + "-" + sum
}

// Paths returns the module-root-relative directories that make up a cache
// entry: dependency manager state, the restored package cache, and build
// output. The set is fixed and independent of the channel qualifier.
func Paths() []string {
	return []string{".cement", "packages", "bin"}
}
