package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/cementci/internal/cache"
	"github.com/Norgate-AV/cementci/internal/tool"
)

func writePackage(t *testing.T, root string, parts ...string) {
	t.Helper()

	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("pkg"), 0o644))
}

// pushes returns the package arguments of every nuget push invocation
func pushes(runner *fakeRunner) []string {
	var pushed []string
	for _, inv := range runner.invocations {
		if len(inv.Args) > 1 && inv.Args[0] == "nuget" && inv.Args[1] == "push" {
			pushed = append(pushed, filepath.Base(inv.Args[2]))
		}
	}

	return pushed
}

func TestPublish_PushesEveryPackageInOrder(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner, newFakeCache())

	root := p.Options.ModuleRoot
	writePackage(t, root, "Vostok.Core", "bin", "Release", "Vostok.Core.1.0.0.nupkg")
	writePackage(t, root, "Vostok.Client", "bin", "Release", "Vostok.Client.1.0.0.nupkg")

	require.NoError(t, p.Publish())

	// Sorted enumeration order: Client before Core
	assert.Equal(t, []string{"Vostok.Client.1.0.0.nupkg", "Vostok.Core.1.0.0.nupkg"}, pushes(runner))
}

func TestPublish_SecondPushFailureAbortsRemainder(t *testing.T) {
	runner := &fakeRunner{}
	runner.failOn = func(inv tool.Invocation) error {
		if len(pushes(runner)) == 2 && inv.Args[0] == "nuget" {
			return &tool.Failure{Executable: "dotnet", Args: inv.Args, ExitStatus: 1}
		}

		return nil
	}

	p := newTestPipeline(t, runner, newFakeCache())

	root := p.Options.ModuleRoot
	writePackage(t, root, "a.nupkg")
	writePackage(t, root, "b.nupkg")
	writePackage(t, root, "c.nupkg")

	err := p.Publish()
	require.Error(t, err)

	var failure *tool.Failure
	assert.True(t, errors.As(err, &failure))
	assert.Equal(t, []string{"a.nupkg", "b.nupkg"}, pushes(runner),
		"exactly two pushes attempted, third aborted")
}

func TestPublish_RestoresPublishChannel(t *testing.T) {
	runner := &fakeRunner{}
	store := newFakeCache()
	p := newTestPipeline(t, runner, store)

	require.NoError(t, p.Publish())

	key := cache.KeyDeriver{Revision: p.Context.Revision}.Key("nuget")
	assert.Equal(t, []string{key}, store.restored)
}

func TestPublish_CredentialPassedToPush(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner, newFakeCache())

	writePackage(t, p.Options.ModuleRoot, "only.nupkg")
	require.NoError(t, p.Publish())

	last := runner.invocations[len(runner.invocations)-1]
	assert.Contains(t, last.Args, "--api-key")
	assert.Contains(t, last.Args, "push-credential")
}

func TestPublish_PushFailureDoesNotExposeCredential(t *testing.T) {
	runner := &fakeRunner{
		failOn: func(inv tool.Invocation) error {
			if len(inv.Args) > 1 && inv.Args[0] == "nuget" {
				return &tool.Failure{Executable: "dotnet", Args: inv.Args, ExitStatus: 1}
			}

			return nil
		},
	}

	p := newTestPipeline(t, runner, newFakeCache())
	writePackage(t, p.Options.ModuleRoot, "only.nupkg")

	err := p.Publish()
	require.Error(t, err)

	// The error string reaches the failure report verbatim
	assert.NotContains(t, err.Error(), "push-credential")

	// Redaction keeps the failure typed and its exit status intact
	var failure *tool.Failure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 1, failure.ExitStatus)
	assert.Contains(t, failure.Args, "***")
}

func TestPublish_NoPackages(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner, newFakeCache())

	require.NoError(t, p.Publish())
	assert.Empty(t, pushes(runner))
}

func TestFindPackages_SortedAndRecursive(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "z", "z.nupkg")
	writePackage(t, root, "a", "deep", "a.nupkg")
	writePackage(t, root, "not-a-package.txt")

	packages, err := findPackages(root)
	require.NoError(t, err)

	require.Len(t, packages, 2)
	assert.Equal(t, "a.nupkg", filepath.Base(packages[0]))
	assert.Equal(t, "z.nupkg", filepath.Base(packages[1]))
}
