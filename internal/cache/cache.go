// Package cache is the coordination layer between pipeline jobs.
//
// Build, Test and Publish run as separate process invocations that share no
// memory; the only way artifacts move between them is through this store.
// A Build stage saves the agreed set of directories under a key derived
// from the source revision, and a later Test or Publish stage restores them
// by deriving the same key:
//
//  1. Keys are SHA256-derived from a fixed namespace, the revision, and an
//     optional channel qualifier ("nuget" isolates publish artifacts)
//  2. Entry metadata lives in BoltDB, artifact trees on the filesystem
//  3. Entries are written once and never mutated; the store's own retention
//     decides when they disappear, so a restore must tolerate a miss
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DefaultStoreName is the directory name used under the user cache dir
	// when no explicit store location is configured
	DefaultStoreName = "cementci"

	// bucketName is the BoltDB bucket name for cache entries
	bucketName = "builds"
)

// Cache manages saved artifact trees and their metadata using BoltDB
type Cache struct {
	db   *bbolt.DB
	root string
}

// Open opens (creating if needed) the artifact store at storeDir.
// If storeDir is empty, the store lives under the user cache directory so
// that separate job invocations on the same machine share it.
func Open(storeDir string) (*Cache, error) {
	if storeDir == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate user cache directory: %w", err)
		}

		storeDir = filepath.Join(userCache, DefaultStoreName)
	}

	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(storeDir, "cache.db")
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &Cache{
		db:   db,
		root: storeDir,
	}, nil
}

// Close closes the cache database
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

// Save writes an entry under key, copying each of the agreed cache paths
// that exists under moduleRoot into the store. Paths that were never
// produced are skipped rather than failing the save.
func (c *Cache) Save(key, revision, moduleRoot string) error {
	var saved []string
	for _, rel := range Paths() {
		src := filepath.Join(moduleRoot, rel)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}

		dst := filepath.Join(c.artifactDir(key), rel)
		if err := CopyTree(src, dst); err != nil {
			return fmt.Errorf("failed to save %s: %w", rel, err)
		}

		saved = append(saved, rel)
	}

	entry := Entry{
		Key:      key,
		Revision: revision,
		Paths:    saved,
		SavedAt:  time.Now(),
	}

	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Restore copies the trees saved under key back beneath moduleRoot.
// A miss returns (false, nil): the store's retention policy may have
// evicted the entry, and the caller decides whether that matters.
func (c *Cache) Restore(key, moduleRoot string) (bool, error) {
	var entry Entry
	found := false

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}

		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if !found {
		return false, nil
	}

	for _, rel := range entry.Paths {
		src := filepath.Join(c.artifactDir(key), rel)
		dst := filepath.Join(moduleRoot, rel)

		if err := CopyTree(src, dst); err != nil {
			return false, fmt.Errorf("failed to restore %s: %w", rel, err)
		}
	}

	return true, nil
}

// Clear removes all cache entries and artifacts
func (c *Cache) Clear() error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket([]byte(bucketName))
	})
	if err != nil {
		return err
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return err
	}

	artifactsDir := filepath.Join(c.root, "artifacts")
	if err := os.RemoveAll(artifactsDir); err != nil {
		return fmt.Errorf("failed to remove artifacts: %w", err)
	}

	return nil
}

// Stats returns the entry count and total artifact size in bytes
func (c *Cache) Stats() (int, int64, error) {
	var count int
	var totalSize int64

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		count = b.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	artifactsDir := filepath.Join(c.root, "artifacts")
	err = filepath.Walk(artifactsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !info.IsDir() {
			totalSize += info.Size()
		}

		return nil
	})

	return count, totalSize, nil
}

// artifactDir returns the directory path for a given cache key
func (c *Cache) artifactDir(key string) string {
	return filepath.Join(c.root, "artifacts", key)
}
