package pipeline

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
)

// Context is the run identity of one pipeline invocation, constructed once
// at process start and passed to every stage. Nothing below this layer
// reads CI environment variables.
type Context struct {
	// Revision identifies the source snapshot under build
	Revision string

	// RefName is the branch or tag name the run is for
	RefName string

	// RunNumber is the CI run counter, monotonically increasing per workflow
	RunNumber int

	// Job is the environment-derived job name, one of build|test|publish
	Job string

	// Release is true when the run builds a tag
	Release bool

	// RunID correlates log lines of this invocation
	RunID string
}

// ContextFromEnv builds the run context from GitHub-style environment
// variables. When GITHUB_SHA is absent (a local invocation), the revision
// falls back to the module's git HEAD.
func ContextFromEnv(moduleRoot string) (Context, error) {
	ctx := Context{
		Revision: os.Getenv("GITHUB_SHA"),
		RefName:  os.Getenv("GITHUB_REF_NAME"),
		Job:      os.Getenv("GITHUB_JOB"),
		Release:  os.Getenv("GITHUB_REF_TYPE") == "tag",
		RunID:    uuid.NewString(),
	}

	if raw := os.Getenv("GITHUB_RUN_NUMBER"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Context{}, fmt.Errorf("invalid GITHUB_RUN_NUMBER %q: %w", raw, err)
		}

		ctx.RunNumber = n
	}

	if ctx.Revision == "" {
		rev, err := headRevision(moduleRoot)
		if err != nil {
			return Context{}, fmt.Errorf("failed to resolve revision: %w", err)
		}

		ctx.Revision = rev
	}

	return ctx, nil
}

// headRevision resolves the HEAD commit hash of the repository containing
// root.
func headRevision(root string) (string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
