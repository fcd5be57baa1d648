package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Norgate-AV/cementci/internal/tool"
)

// testSummaryMarker is the substring the test tool prints exactly once per
// test summary. Its presence on any stdout line is the only evidence that
// test discovery found anything; the exit status alone cannot tell a green
// run from a silently empty one.
const testSummaryMarker = "Total:   "

// Test runs the test stage: restore the default-channel build artifacts,
// restore packages, then run the test tool while watching its output for a
// test summary. A clean exit without any observed summary still fails the
// stage.
func (p *Pipeline) Test() error {
	root := p.Options.ModuleRoot
	key := p.keys().Key("")

	slog.Info("starting test stage",
		"run_id", p.Context.RunID,
		"revision", p.Context.Revision,
		"framework", p.Options.Framework)

	hit, err := p.Cache.Restore(key, root)
	if err != nil {
		return fmt.Errorf("failed to restore build artifacts: %w", err)
	}

	if !hit {
		// Not fatal by itself; the store may have evicted the entry.
		// Later steps will fail on their own if the artifacts mattered.
		slog.Warn("no build artifacts found for this revision", "key", key)
	}

	if err := p.Tools.Run(tool.Invocation{Executable: "dotnet", Args: []string{"restore"}, Dir: root}); err != nil {
		return fmt.Errorf("package restore failed: %w", err)
	}

	summaries := 0
	testInv := tool.Invocation{
		Executable: "dotnet",
		Args: []string{
			"test",
			"--configuration", "Release",
			"--no-build",
			"--framework", p.Options.Framework,
		},
		Dir: root,
		OnLine: func(line string) {
			if strings.Contains(line, testSummaryMarker) {
				summaries++
				slog.Info("test summary reported", "summary", strings.TrimSpace(line))
			}
		},
	}

	if err := p.Tools.Run(testInv); err != nil {
		return fmt.Errorf("test run failed: %w", err)
	}

	if summaries == 0 {
		return &NoTestsDetectedError{}
	}

	return nil
}
