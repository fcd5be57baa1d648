package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Norgate-AV/cementci/internal/tool"
)

// publishChannel isolates publish artifacts from the default build→test
// channel, so a miss on one never corrupts the other.
const publishChannel = "nuget"

// Publish runs the publish stage: restore the publish-channel artifacts,
// restore packages, pack, then push every produced package in order. The
// first failing push aborts the remainder; there is no partial-publish
// recovery.
func (p *Pipeline) Publish() error {
	root := p.Options.ModuleRoot
	key := p.keys().Key(publishChannel)

	slog.Info("starting publish stage",
		"run_id", p.Context.RunID,
		"revision", p.Context.Revision,
		"registry", p.Options.Registry)

	hit, err := p.Cache.Restore(key, root)
	if err != nil {
		return fmt.Errorf("failed to restore publish artifacts: %w", err)
	}

	if !hit {
		slog.Warn("no publish artifacts found for this revision", "key", key)
	}

	if err := p.Tools.Run(tool.Invocation{Executable: "dotnet", Args: []string{"restore"}, Dir: root}); err != nil {
		return fmt.Errorf("package restore failed: %w", err)
	}

	packInv := tool.Invocation{
		Executable: "dotnet",
		Args:       []string{"pack", "--configuration", "Release", "--no-build"},
		Dir:        root,
	}
	if err := p.Tools.Run(packInv); err != nil {
		return fmt.Errorf("pack failed: %w", err)
	}

	packages, err := findPackages(root)
	if err != nil {
		return err
	}

	slog.Info("discovered packages", "count", len(packages))

	for _, pkg := range packages {
		// The credential never appears in the log, only in the argv
		slog.Info("pushing package", "package", filepath.Base(pkg))

		pushInv := tool.Invocation{
			Executable: "dotnet",
			Args: []string{
				"nuget", "push", pkg,
				"--api-key", p.Options.Key,
				"--source", p.Options.Registry,
			},
			Dir: root,
		}
		if err := p.Tools.Run(pushInv); err != nil {
			return fmt.Errorf("failed to push %s: %w", filepath.Base(pkg), redactCredential(err, p.Options.Key))
		}

		slog.Info("package pushed", "package", filepath.Base(pkg))
	}

	return nil
}

// redactCredential strips the push credential from a tool failure's argv.
// The failure string ends up in the top-level failure report, and the
// credential must never be logged.
func redactCredential(err error, key string) error {
	var failure *tool.Failure
	if key == "" || !errors.As(err, &failure) {
		return err
	}

	args := make([]string, len(failure.Args))
	copy(args, failure.Args)

	for i, arg := range args {
		if arg == key {
			args[i] = "***"
		}
	}

	return &tool.Failure{
		Executable: failure.Executable,
		Args:       args,
		ExitStatus: failure.ExitStatus,
	}
}

// findPackages enumerates every produced package artifact under root in a
// stable sorted order.
func findPackages(root string) ([]string, error) {
	var packages []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), ".nupkg") {
			packages = append(packages, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover packages: %w", err)
	}

	sort.Strings(packages)

	return packages, nil
}
