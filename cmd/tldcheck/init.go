package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version string
	root    = &cobra.Command{
		Use:     "tldcheck [command]",
		Short:   "tldcheck builds and queries top-level domain acceptance tables",
		Version: version,
	}
)

func init() {
	root.PersistentFlags().BoolP(
		"verbose",
		"v",
		false,
		"verbose output",
	)
	viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.PersistentFlags().String(
		"config",
		"",
		"config file location",
	)
	viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	if viper.GetString("config") != "" {
		viper.SetConfigFile(viper.GetString("config"))
	}

	root.PersistentFlags().StringP(
		"table",
		"t",
		"tld.table",
		"table artifact location",
	)
	viper.BindPFlag("table", root.PersistentFlags().Lookup("table"))

	viper.AutomaticEnv()
	viper.SetConfigName("tldcheck")

	viper.AddConfigPath("/etc/tldcheck/")

	// Check home directory/.tldcheck for config
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(home, ".tldcheck"))
	}

	// Check working directory for config
	wd, err := os.Getwd()
	if err == nil {
		viper.AddConfigPath(wd)
	}

	// The config file is optional; gen and check run fine on flags
	// alone.
	_ = viper.ReadInConfig()
}
