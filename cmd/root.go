/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	featuresCmd "github.com/mpapenbr/stintdeg/pkg/cmd/features"
	mergeCmd "github.com/mpapenbr/stintdeg/pkg/cmd/merge"
	migrateCmd "github.com/mpapenbr/stintdeg/pkg/cmd/migrate"
	runCmd "github.com/mpapenbr/stintdeg/pkg/cmd/run"
	summaryCmd "github.com/mpapenbr/stintdeg/pkg/cmd/summary"
	weatherCmd "github.com/mpapenbr/stintdeg/pkg/cmd/weather"
	"github.com/mpapenbr/stintdeg/pkg/config"
	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/version"
)

const envPrefix = "STINTDEG"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "stintdeg",
	Short:   "Tire degradation features per stint",
	Long:    ``,
	Version: version.FullVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag definitions
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.stintdeg.yml)")

	rootCmd.PersistentFlags().StringVar(&config.DB, "db",
		"postgresql://DB_USERNAME:DB_USER_PASSWORD@DB_HOST:5432/stintdeg",
		"Connection string for the database")
	rootCmd.PersistentFlags().StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for other services to be ready")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"info",
		"controls the log level for sql statements")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules applied to the log output")
	rootCmd.PersistentFlags().IntVar(&config.Workers,
		"workers",
		0,
		"number of stints fitted in parallel (0: number of CPUs)")
	rootCmd.PersistentFlags().IntVar(&config.MinStintLength,
		"min-stint-length",
		model.MinStintLength,
		"stints with fewer laps are not fitted")
	rootCmd.PersistentFlags().StringVar(&config.DuplicateContext,
		"duplicate-context",
		"fail",
		"handling of multiple weather rows for one round (fail, first)")
	rootCmd.PersistentFlags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	rootCmd.PersistentFlags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (stdout: print to console)")
	rootCmd.PersistentFlags().StringVar(&config.MetricsFile,
		"metrics-file",
		"",
		"write the metrics of the run to this file (prometheus text format)")

	// add commands here
	rootCmd.AddCommand(featuresCmd.NewFeaturesCmd())
	rootCmd.AddCommand(mergeCmd.NewMergeCmd())
	rootCmd.AddCommand(runCmd.NewRunCmd())
	rootCmd.AddCommand(summaryCmd.NewSummaryCmd())
	rootCmd.AddCommand(weatherCmd.NewWeatherCmd())
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".stintdeg" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stintdeg")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --min-stint-length to
		// STINTDEG_MIN_STINT_LENGTH
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
