package projects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchProject(t *testing.T, root string, parts ...string) string {
	t.Helper()

	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<Project/>"), 0o644))

	return filepath.Dir(path)
}

func TestDiscover_SplitsBuildableAndTests(t *testing.T) {
	root := t.TempDir()

	core := touchProject(t, root, "Vostok.Core", "Vostok.Core.csproj")
	client := touchProject(t, root, "Vostok.Client", "Vostok.Client.csproj")
	coreTests := touchProject(t, root, "Vostok.Core.Tests", "Vostok.Core.Tests.csproj")
	unitTests := touchProject(t, root, "Vostok.Client.UnitTests", "Vostok.Client.UnitTests.csproj")

	set, err := Discover(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{client, core}, set.Buildable)
	assert.ElementsMatch(t, []string{coreTests, unitTests}, set.Tests)
}

func TestDiscover_TestsFolderExclusion(t *testing.T) {
	root := t.TempDir()

	lib := touchProject(t, root, "src", "Lib", "Lib.csproj")
	nested := touchProject(t, root, "tests", "Harness", "Harness.csproj")

	set, err := Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{lib}, set.Buildable)
	assert.Equal(t, []string{nested}, set.Tests)
}

func TestDiscover_SkipsBuildOutput(t *testing.T) {
	root := t.TempDir()

	lib := touchProject(t, root, "Lib", "Lib.csproj")
	touchProject(t, root, "bin", "Stale", "Stale.csproj")
	touchProject(t, root, ".cement", "Dep", "Dep.csproj")

	set, err := Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{lib}, set.Buildable)
	assert.Empty(t, set.Tests)
}

func TestDiscover_Deterministic(t *testing.T) {
	root := t.TempDir()

	touchProject(t, root, "B", "B.csproj")
	touchProject(t, root, "A", "A.csproj")
	touchProject(t, root, "C", "C.csproj")

	first, err := Discover(root)
	require.NoError(t, err)

	second, err := Discover(root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDiscover_EmptyTree(t *testing.T) {
	set, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, set.Buildable)
	assert.Empty(t, set.Tests)
}
