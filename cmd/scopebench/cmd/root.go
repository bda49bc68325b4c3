package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"github.com/onegii/go-scopetimer/scopetimer"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scopebench",
	Short: "Workloads and benchmarks for scopetimer",
	Long: `scopebench drives scopetimer through synthetic workloads: the cost of
instrumentation per scope, the memory used by large timing trees and the
aggregation of trees built concurrently by several workers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("debug") {
			scopetimer.SetLogLevel(slog.LevelDebug)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml)")
	pf.String("unit", "auto", "time unit: auto, s, ms or us")
	pf.String("precision", "auto", "decimals: auto or a number")
	pf.String("divider", "rule", "divider between root scopes: rule or blank")
	pf.Bool("verbose", false, "print min, max, avg and var of every scope")
	pf.Bool("no-color", false, "disable colors")
	pf.Bool("debug", false, "enable scopetimer debug logs")

	for _, name := range []string{"unit", "precision", "divider", "verbose", "no-color", "debug"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("scopebench")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SCOPEBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		}
	}
}

// summaryOptions builds the rendering options from flags, config and env.
func summaryOptions() (scopetimer.SummaryOptions, error) {
	opts := scopetimer.DefaultSummaryOptions()

	unit, err := scopetimer.ParseUnit(viper.GetString("unit"))
	if err != nil {
		return opts, err
	}
	precision, err := scopetimer.ParsePrecision(viper.GetString("precision"))
	if err != nil {
		return opts, err
	}
	divider, err := scopetimer.ParseDivider(viper.GetString("divider"))
	if err != nil {
		return opts, err
	}

	opts.Unit = unit
	opts.Precision = precision
	opts.Divider = divider
	opts.Verbose = viper.GetBool("verbose")
	if viper.GetBool("no-color") {
		opts.Color = false
	}
	return opts, nil
}
