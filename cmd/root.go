// SPDX-License-Identifier: MIT

// Package cmd provides the onsager command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sohamch/Onsager/telemetry"
)

const rootLongDescription = `Onsager computes transport coefficients for defect-mediated diffusion
in crystals: the vacancy-mediated solute Onsager tensors Lvv, Lss, Lsv and
the bare interstitial diffusivity.

Calculations are described by YAML documents; see "onsager lij --help".`

var (
	verboseFlag   bool
	logFileFlag   string
	meshFlag      int
	workersFlag   int
	thresholdFlag float64
	storeFlag     string
	metricsFlag   string
)

// recorder collects the metrics of one invocation.
var recorder *telemetry.Recorder

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func init() {
	configureRootFlags(rootCmd)
}

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "onsager",
		Short:        "Onsager transport coefficients for defect diffusion",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
			recorder = telemetry.New()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return flushMetrics()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file (rotated)")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)

	flags.IntVar(&meshFlag, meshFlagName, viper.GetInt(gfMeshKey), "Green's function k-mesh per axis (0 keeps the default)")
	bindFlagToConfig(flags.Lookup(meshFlagName), gfMeshKey)

	flags.IntVarP(&workersFlag, workersFlagName, "p", viper.GetInt(gfWorkersKey), "worker goroutines (0 uses GOMAXPROCS)")
	bindFlagToConfig(flags.Lookup(workersFlagName), gfWorkersKey)

	flags.Float64Var(&thresholdFlag, thresholdFlagName, viper.GetFloat64(ratioThresholdKey), "exchange rate ratio that selects the asymptotic solvers")
	bindFlagToConfig(flags.Lookup(thresholdFlagName), ratioThresholdKey)

	flags.StringVarP(&storeFlag, storeFlagName, "s", viper.GetString(storePathKey), "calculator store directory")
	bindFlagToConfig(flags.Lookup(storeFlagName), storePathKey)

	flags.StringVar(&metricsFlag, metricsFlagName, viper.GetString(metricsFileKey), "write Prometheus metrics to this textfile on exit")
	bindFlagToConfig(flags.Lookup(metricsFlagName), metricsFileKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func flushMetrics() error {
	path := viper.GetString(metricsFileKey)
	if path == "" || recorder == nil {
		return nil
	}

	return recorder.WriteTextfile(path)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
