package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/raybest4u/statemon/pkg/metrics"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "statemon",
	Short: "Statemon inspects versioned game-state archives",
	Long: `Statemon gives a git like view on a game-state session archive.

A session archive holds the committed snapshots of a game state document,
organized in branches and tags. Statemon loads an archive, verifies it and
lets you browse history, show snapshots, diff versions and follow a live
archive directory as it changes.
`,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if flags.root.metrics {
			metrics.Flush()
		}
	},
}

var config *Config

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addArchiveFlag(rootCmd)
	addBackendFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addMetricsFlag(rootCmd)
}

// initConfig reads in the config file and ENV variables if set
func initConfig() {
	viper.SetDefault("backend", backendLocalFS)
	viper.SetDefault("loglevel", "warn")

	if cfg := os.Getenv("STATEMON_CONFIG"); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.statemon")
		viper.AddConfigPath("/etc/statemon")
		viper.SetConfigName(".statemon")
	}

	viper.SetEnvPrefix("statemon")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}

	var err error
	config, err = newConfig()
	if err != nil {
		wrapFatalln("populating config", err)
		return
	}
	config.overrideWithFlags(&flags)

	if flags.root.metrics {
		metrics.Init(
			metrics.WithBasePath("statemon"),
			metrics.WithExporter(metrics.DefaultExporter(config.influxOptions()...)),
		)
	}
}
