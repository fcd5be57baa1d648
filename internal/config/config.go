package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultReferences = "cement"
	DefaultFramework  = "net6.0"
	DefaultRegistry   = "https://api.nuget.org/v3/index.json"
	DefaultModuleRoot = "."
)

// ReferencesCement selects building the dependency graph through the
// dependency manager; any other references value rewrites internal module
// references to registry packages instead.
const ReferencesCement = "cement"

// Holds the configuration options for cementci
type Options struct {
	// Dependency-reference strategy: "cement" or a registry mode
	References string

	// Target framework moniker passed verbatim to the test tool
	Framework string

	// Publish credential. Used only when pushing packages, never logged.
	Key string

	// NuGet source URL packages are pushed to
	Registry string

	// Root folder of the module under build
	ModuleRoot string

	// Artifact store location; empty means the shared per-user default
	CacheDir string

	// Enable verbose output
	Verbose bool
}

func Load() (*Options, error) {
	opts := &Options{
		References: viper.GetString("references"),
		Framework:  viper.GetString("framework"),
		Key:        viper.GetString("key"),
		Registry:   viper.GetString("registry"),
		ModuleRoot: viper.GetString("module_root"),
		CacheDir:   viper.GetString("cache_dir"),
		Verbose:    viper.GetBool("verbose"),
	}

	// Apply defaults if not set
	if opts.References == "" {
		opts.References = DefaultReferences
	}

	if opts.Framework == "" {
		opts.Framework = DefaultFramework
	}

	if opts.Registry == "" {
		opts.Registry = DefaultRegistry
	}

	if opts.ModuleRoot == "" {
		opts.ModuleRoot = DefaultModuleRoot
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

func (o *Options) Validate() error {
	abs, err := filepath.Abs(o.ModuleRoot)
	if err != nil {
		return fmt.Errorf("invalid module root: %v", err)
	}

	o.ModuleRoot = abs

	if o.CacheDir != "" {
		abs, err := filepath.Abs(o.CacheDir)
		if err != nil {
			return fmt.Errorf("invalid cache directory: %v", err)
		}

		o.CacheDir = abs
	}

	return nil
}

// UseCementReferences reports whether the build resolves inter-module
// references through the dependency manager.
func (o *Options) UseCementReferences() bool {
	return o.References == ReferencesCement
}
