// Package tool runs external toolchain executables and reports their
// outcome. Every invocation is blocking and happens exactly once: there is
// no retry layer, and the only channels back to the caller are the exit
// status and the streamed standard output.
package tool

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LineObserver is called synchronously for each line of standard output,
// in arrival order, for the lifetime of a single invocation.
type LineObserver func(line string)

// Invocation describes one external tool call.
type Invocation struct {
	// Executable name, resolved through PATH
	Executable string

	// Arguments passed verbatim
	Args []string

	// Working directory; empty means the current directory
	Dir string

	// Optional per-line observer for standard output
	OnLine LineObserver
}

// Failure reports a tool that exited non-zero.
type Failure struct {
	Executable string
	Args       []string
	ExitStatus int
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s exited with status %d", f.Executable, strings.Join(f.Args, " "), f.ExitStatus)
}

// Runner executes invocations with the inherited environment plus any
// runner-level additions. A single Runner is shared by all steps of a
// pipeline run so that a PATH change made by one step (toolchain install)
// is visible to every later step.
type Runner struct {
	// Directories prepended to PATH, most recent first
	pathPrefix []string

	// Extra environment entries appended after os.Environ().
	// Later entries win over inherited ones.
	extraEnv []string

	// Destination for echoed stdout lines and passthrough stderr.
	// Defaults to os.Stdout / os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a runner with passthrough output.
func NewRunner() *Runner {
	return &Runner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// PrependPath puts dir at the front of PATH for all subsequent invocations.
// Calls accumulate: every prepended directory stays resolvable.
func (r *Runner) PrependPath(dir string) {
	r.pathPrefix = append([]string{dir}, r.pathPrefix...)
}

// SetEnv adds an environment entry for all subsequent invocations.
func (r *Runner) SetEnv(key, value string) {
	r.extraEnv = append(r.extraEnv, key+"="+value)
}

// environ builds the child environment: the inherited environment, the
// runner's additions, and a PATH carrying every prepended directory.
func (r *Runner) environ() []string {
	env := append(os.Environ(), r.extraEnv...)

	if len(r.pathPrefix) > 0 {
		parts := append([]string{}, r.pathPrefix...)
		if base := os.Getenv("PATH"); base != "" {
			parts = append(parts, base)
		}

		env = append(env, "PATH="+strings.Join(parts, string(os.PathListSeparator)))
	}

	return env
}

// Run executes one invocation to completion. Standard output is consumed
// line by line: each line is echoed to the runner's output and handed to
// the invocation's observer before the next line is read. A non-zero exit
// yields a *Failure; any other error is a spawn failure.
func (r *Runner) Run(inv Invocation) error {
	cmd := exec.Command(r.lookup(inv.Executable), inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = r.environ()
	cmd.Stderr = r.stderr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", inv.Executable, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(r.stdout(), line)

		if inv.OnLine != nil {
			inv.OnLine(line)
		}
	}

	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Failure{
				Executable: inv.Executable,
				Args:       inv.Args,
				ExitStatus: exitErr.ExitCode(),
			}
		}

		return fmt.Errorf("failed to run %s: %w", inv.Executable, err)
	}

	if scanErr != nil {
		return fmt.Errorf("failed to read output of %s: %w", inv.Executable, scanErr)
	}

	return nil
}

// lookup resolves a bare executable name against the prepended PATH
// directories before falling back to the inherited search path. The parent
// process PATH does not change, so exec.Command alone would miss tools a
// previous step installed.
func (r *Runner) lookup(executable string) string {
	if strings.ContainsRune(executable, os.PathSeparator) || len(r.pathPrefix) == 0 {
		return executable
	}

	for _, dir := range r.pathPrefix {
		candidate := filepath.Join(dir, executable)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}

	return executable
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}

	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}

	return os.Stderr
}
