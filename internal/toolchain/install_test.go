package toolchain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/cementci/internal/tool"
)

type fakeRunner struct {
	invocations []tool.Invocation
	paths       []string
	env         map[string]string
	err         error
}

func (f *fakeRunner) Run(inv tool.Invocation) error {
	f.invocations = append(f.invocations, inv)
	return f.err
}

func (f *fakeRunner) PrependPath(dir string) {
	f.paths = append(f.paths, dir)
}

func (f *fakeRunner) SetEnv(key, value string) {
	if f.env == nil {
		f.env = make(map[string]string)
	}

	f.env[key] = value
}

func TestInstall_SupportedPlatforms(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		t.Run(goos, func(t *testing.T) {
			runner := &fakeRunner{}

			err := Install(goos, runner, "/module")
			require.NoError(t, err)
			require.Len(t, runner.invocations, 1)
			assert.Equal(t, "/module", runner.invocations[0].Dir)
			assert.Len(t, runner.paths, 1, "toolchain bin dir should be put on PATH")
			assert.Equal(t, "1", runner.env["DOTNET_CLI_TELEMETRY_OPTOUT"])
			assert.Equal(t, "1", runner.env["DOTNET_SKIP_FIRST_TIME_EXPERIENCE"])
		})
	}
}

func TestInstall_WindowsUsesPowershell(t *testing.T) {
	runner := &fakeRunner{}

	require.NoError(t, Install("windows", runner, "."))
	assert.Equal(t, "powershell", runner.invocations[0].Executable)
}

func TestInstall_UnsupportedPlatform(t *testing.T) {
	runner := &fakeRunner{}

	err := Install("plan9", runner, ".")
	require.Error(t, err)

	var unsupported *UnsupportedPlatformError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "plan9", unsupported.OS)
	assert.Empty(t, runner.invocations, "no install step may run on an unsupported platform")
	assert.Empty(t, runner.paths)
}

func TestInstall_ScriptFailure(t *testing.T) {
	runner := &fakeRunner{err: &tool.Failure{Executable: "bash", ExitStatus: 1}}

	err := Install("linux", runner, ".")
	require.Error(t, err)

	var failure *tool.Failure
	assert.True(t, errors.As(err, &failure))
	assert.Empty(t, runner.paths, "PATH must not change when the install fails")
	assert.Empty(t, runner.env, "environment must not change when the install fails")
}
