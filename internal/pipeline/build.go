package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/Norgate-AV/cementci/internal/tool"
	"github.com/Norgate-AV/cementci/internal/toolchain"
)

// referenceStrategy is one of exactly two mutually exclusive ways of
// resolving inter-module references at build time, selected once per stage.
type referenceStrategy struct {
	name string
	inv  tool.Invocation
}

// selectReferenceStrategy picks the strategy from the configured references
// mode: "cement" builds the dependency graph through the dependency
// manager; anything else rewrites internal module references to point at
// registry packages.
func (p *Pipeline) selectReferenceStrategy(root string) referenceStrategy {
	if p.Options.UseCementReferences() {
		return referenceStrategy{
			name: "cement",
			inv: tool.Invocation{
				Executable: "cm",
				Args:       []string{"build-deps", "-v"},
				Dir:        root,
			},
		}
	}

	return referenceStrategy{
		name: "nuget",
		inv: tool.Invocation{
			Executable: "dotnet-cement-refs",
			Args:       []string{"--to-packages"},
			Dir:        root,
		},
	}
}

// PreReleaseSuffix computes the version suffix for non-release builds from
// the CI run counter, zero-padded to six digits. Counters beyond six digits
// widen the suffix rather than truncating it.
func PreReleaseSuffix(runNumber int) string {
	return fmt.Sprintf("pre%06d", runNumber)
}

// Build runs the build stage: toolchain install, dependency manager setup,
// analysis checks, pre-release versioning, reference resolution, the
// release build itself, and finally the artifact save that later jobs
// restore from. The first failing step terminates the stage.
func (p *Pipeline) Build() error {
	root := p.Options.ModuleRoot

	slog.Info("starting build stage",
		"run_id", p.Context.RunID,
		"revision", p.Context.Revision,
		"release", p.Context.Release)

	if err := toolchain.Install(p.OS, p.Tools, root); err != nil {
		return fmt.Errorf("toolchain install failed: %w", err)
	}

	if err := p.Tools.Run(tool.Invocation{Executable: "cm", Args: []string{"init"}, Dir: root}); err != nil {
		return fmt.Errorf("dependency manager init failed: %w", err)
	}

	if err := p.Tools.Run(tool.Invocation{Executable: "cm", Args: []string{"update-deps"}, Dir: root}); err != nil {
		return fmt.Errorf("dependency update failed: %w", err)
	}

	set, err := p.Discover(root)
	if err != nil {
		return err
	}

	slog.Info("discovered projects", "buildable", len(set.Buildable), "tests", len(set.Tests))

	for _, check := range []string{"dotnet-configureawait-check", "dotnet-continuations-check"} {
		if err := p.Tools.Run(tool.Invocation{Executable: check, Args: set.Buildable, Dir: root}); err != nil {
			return fmt.Errorf("analysis check failed: %w", err)
		}
	}

	if !p.Context.Release {
		suffix := PreReleaseSuffix(p.Context.RunNumber)
		slog.Info("applying pre-release version suffix", "suffix", suffix)

		args := append([]string{suffix}, set.Buildable...)
		if err := p.Tools.Run(tool.Invocation{Executable: "dotnet-version-suffix", Args: args, Dir: root}); err != nil {
			return fmt.Errorf("version suffix failed: %w", err)
		}
	}

	strategy := p.selectReferenceStrategy(root)
	slog.Info("resolving module references", "strategy", strategy.name)

	if err := p.Tools.Run(strategy.inv); err != nil {
		return fmt.Errorf("reference resolution failed: %w", err)
	}

	buildInv := tool.Invocation{
		Executable: "dotnet",
		Args:       []string{"build", "--configuration", "Release"},
		Dir:        root,
	}
	if err := p.Tools.Run(buildInv); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	key := p.keys().Key("")
	if err := p.Cache.Save(key, p.Context.Revision, root); err != nil {
		return fmt.Errorf("failed to save build artifacts: %w", err)
	}

	slog.Info("build artifacts saved", "key", key)

	return nil
}
