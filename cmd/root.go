package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/oasci/vaxstats/internal/config"
	"github.com/oasci/vaxstats/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// All linker flags will be set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx carries the logger once the root command has run.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &config.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
var input = &config.RawInput{}

var logger = zap.NewNop()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "vaxstats",
	Short: "Detect fever and hypothermia episodes in body temperature recordings.",
	Long: `vaxstats compares a temperature recording against a forecast of it,
calibrates a residual bound on a baseline window and flags every hour or day
whose median lies outside that bound around the forecast median.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE:  setupLogging,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	_ = godotenv.Load()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".vaxstats")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("VAXSTATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("baseline_hours", config.DefaultBaselineHours)
	viper.SetDefault("data_column", config.DefaultDataColumn)
	viper.SetDefault("pred_column", config.DefaultPredColumn)
	viper.SetDefault("residual_column", config.DefaultResidualColumn)
	viper.SetDefault("date_column", config.DefaultDateColumn)
	viper.SetDefault("date_format", config.DefaultDateFormat)
	viper.SetDefault("timeframe_unit", config.DefaultTimeframeUnit)
	viper.SetDefault("bucketing_mode", config.DefaultBucketingMode)
	viper.SetDefault("output", config.DefaultOutput)
	viper.SetDefault("store_backend", config.DefaultStoreBackend)
	viper.SetDefault("color", config.DefaultColor)
	viper.SetDefault("buckets", config.DefaultBuckets)
	viper.SetDefault("period", config.DefaultPeriod)
	viper.SetDefault("harmonics", config.DefaultHarmonics)
}

// setupLogging builds the logger from -v and --logfile before any
// subcommand runs.
func setupLogging(cmd *cobra.Command, _ []string) error {
	verbosity, err := cmd.Flags().GetCount("verbose")
	if err != nil {
		return err
	}
	logFile, err := cmd.Flags().GetString("logfile")
	if err != nil {
		return err
	}
	if logger, err = utils.NewLogger(verbosity, logFile); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	rootCtx = utils.WithLogger(context.Background(), logger)
	return nil
}

// sharedSetup merges every config source and runs validation.
func sharedSetup(_ *cobra.Command, _ []string) error {
	// 1. Read config file. Defaults, file, env and flags are merged by viper.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Validate and populate the global cfg.
	return config.ProcessAndValidate(cfg, input)
}

// Execute runs the root command.
func Execute() (err error) {
	defer func() { utils.SyncLogger(logger) }()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic", zap.Any("recovered", r), zap.String("stack", utils.GetPanicInfo()))
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return rootCmd.Execute()
}
