// Package toolchain installs and activates the cement toolchain for the
// current platform.
package toolchain

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Norgate-AV/cementci/internal/tool"
)

// UnsupportedPlatformError reports an operating system the toolchain has no
// install path for. There is no fallback: the pipeline stops here.
type UnsupportedPlatformError struct {
	OS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %s", e.OS)
}

// Runner is the subset of the tool runner the installer needs.
type Runner interface {
	Run(inv tool.Invocation) error
	PrependPath(dir string)
	SetEnv(key, value string)
}

// Install activates the cement toolchain for goos by running the platform
// install script, then puts the toolchain bin directory on the runner's
// PATH so later invocations resolve "cm" without qualification.
//
// Exactly three platforms are supported; anything else fails before any
// install step is attempted.
func Install(goos string, runner Runner, moduleRoot string) error {
	var inv tool.Invocation

	switch goos {
	case "linux", "darwin":
		inv = tool.Invocation{
			Executable: "bash",
			Args:       []string{"-c", "curl -sSL https://raw.githubusercontent.com/skbkontur/cement/master/install.sh | bash"},
			Dir:        moduleRoot,
		}
	case "windows":
		inv = tool.Invocation{
			Executable: "powershell",
			Args:       []string{"-NoProfile", "-Command", "iwr https://raw.githubusercontent.com/skbkontur/cement/master/install.ps1 -UseBasicParsing | iex"},
			Dir:        moduleRoot,
		}
	default:
		return &UnsupportedPlatformError{OS: goos}
	}

	if err := runner.Run(inv); err != nil {
		return fmt.Errorf("failed to install toolchain: %w", err)
	}

	runner.PrependPath(binDir())

	// Keep dotnet quiet on a fresh CI machine
	runner.SetEnv("DOTNET_CLI_TELEMETRY_OPTOUT", "1")
	runner.SetEnv("DOTNET_SKIP_FIRST_TIME_EXPERIENCE", "1")

	return nil
}

// binDir is where the install scripts place the cm executable
func binDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bin"
	}

	return filepath.Join(home, "bin")
}
