package config

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForJob loads configuration for one pipeline job invocation:
// defaults first, then a local config file found near the module root,
// then command flags on top.
func (l *Loader) LoadForJob(cmd *cobra.Command) (*Options, error) {
	l.setupViperDefaults()
	l.loadLocalConfig(cmd)
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("references", DefaultReferences)
	viper.SetDefault("framework", DefaultFramework)
	viper.SetDefault("registry", DefaultRegistry)
	viper.SetDefault("module_root", DefaultModuleRoot)
	viper.SetDefault("verbose", false)
}

// loadLocalConfig loads local configuration from the module directory
func (l *Loader) loadLocalConfig(cmd *cobra.Command) {
	root, err := cmd.Flags().GetString("module-root")
	if err != nil || root == "" {
		root = "."
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return // silently ignore, Load() will handle validation
	}

	localPath := FindLocalConfig(abs)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.ReadInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("references", cmd.Flags().Lookup("references"))
	_ = viper.BindPFlag("framework", cmd.Flags().Lookup("framework"))
	_ = viper.BindPFlag("key", cmd.Flags().Lookup("key"))
	_ = viper.BindPFlag("registry", cmd.Flags().Lookup("registry"))
	_ = viper.BindPFlag("module_root", cmd.Flags().Lookup("module-root"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
}
