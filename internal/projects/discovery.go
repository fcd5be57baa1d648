// Package projects discovers buildable and test projects under a module root.
package projects

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Set holds the discovered project folders. The two slices are disjoint: a
// folder classified as a test project never appears in Buildable, so the
// static analysis and versioning steps only ever touch library projects.
type Set struct {
	// Buildable project folders, in walk order
	Buildable []string

	// Test project folders, in walk order
	Tests []string
}

// testPatterns are matched against the project file name to classify a
// project as a test project
var testPatterns = []string{
	"*.Tests.csproj",
	"*.Test.csproj",
	"*.UnitTests.csproj",
}

// Discover walks root for project manifests and splits them into buildable
// and test projects. Enumeration order is the deterministic walk order, so
// repeated discovery over the same tree yields the same Set.
func Discover(root string) (Set, error) {
	var set Set

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Build output never contains source projects
			name := d.Name()
			if name == "bin" || name == "obj" || name == ".cement" {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.HasSuffix(d.Name(), ".csproj") {
			return nil
		}

		dir := filepath.Dir(path)
		if isTestProject(path) {
			set.Tests = append(set.Tests, dir)
		} else {
			set.Buildable = append(set.Buildable, dir)
		}

		return nil
	})
	if err != nil {
		return Set{}, fmt.Errorf("failed to discover projects: %w", err)
	}

	return set, nil
}

// isTestProject reports whether the project manifest at path belongs to a
// test project, by file name pattern or by living under a tests folder.
func isTestProject(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range testPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}

	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if strings.EqualFold(part, "tests") {
			return true
		}
	}

	return false
}
