// Package pipeline sequences the build, test and publish stages of one CI
// run. Each stage is a fixed ordered list of external tool invocations and
// cache operations; the first failing step terminates its stage. Stages in
// separate process invocations coordinate only through the artifact cache.
package pipeline

import (
	"runtime"

	"github.com/Norgate-AV/cementci/internal/cache"
	"github.com/Norgate-AV/cementci/internal/config"
	"github.com/Norgate-AV/cementci/internal/projects"
	"github.com/Norgate-AV/cementci/internal/tool"
)

// Job names recognized by Run
const (
	JobBuild   = "build"
	JobTest    = "test"
	JobPublish = "publish"
)

// ToolRunner executes external tool invocations for the stages.
type ToolRunner interface {
	Run(inv tool.Invocation) error
	PrependPath(dir string)
	SetEnv(key, value string)
}

// ArtifactCache is the cross-job coordination store.
type ArtifactCache interface {
	Save(key, revision, moduleRoot string) error
	Restore(key, moduleRoot string) (bool, error)
}

// Pipeline drives one job invocation.
type Pipeline struct {
	Context Context
	Options *config.Options
	Tools   ToolRunner
	Cache   ArtifactCache

	// OS selects the toolchain install branch; defaults to runtime.GOOS
	OS string

	// Discover enumerates the module's projects; defaults to projects.Discover
	Discover func(root string) (projects.Set, error)
}

// New wires a pipeline for the current platform.
func New(ctx Context, opts *config.Options, tools ToolRunner, store ArtifactCache) *Pipeline {
	return &Pipeline{
		Context:  ctx,
		Options:  opts,
		Tools:    tools,
		Cache:    store,
		OS:       runtime.GOOS,
		Discover: projects.Discover,
	}
}

// Run dispatches the named job to exactly one stage. Any name outside the
// three recognized jobs fails without touching stage logic.
func (p *Pipeline) Run(job string) error {
	switch job {
	case JobBuild:
		return p.Build()
	case JobTest:
		return p.Test()
	case JobPublish:
		return p.Publish()
	default:
		return &UnknownJobError{Job: job}
	}
}

// keys returns the key deriver fixed to this run's revision
func (p *Pipeline) keys() cache.KeyDeriver {
	return cache.KeyDeriver{Revision: p.Context.Revision}
}
