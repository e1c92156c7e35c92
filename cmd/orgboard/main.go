package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orgboard/orgboard/pkg/logger"
	"github.com/orgboard/orgboard/pkg/presenter"
	"github.com/orgboard/orgboard/pkg/telemetry"
	"github.com/orgboard/orgboard/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "orgboard",
	Short: "Manage skills for orgboard agents",
	Long: `orgboard distributes reusable skill packages to autonomous agents:
it resolves skills across scope layers, assembles prompt blocks, and
installs skills from local paths, inline content, or remote repositories.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if level := viper.GetString("log_level"); level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				presenter.Warning("Invalid log level, using default")
			}
		}
		logger.SetLogFormat(viper.GetString("log_format"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	viper.SetEnvPrefix("ORGBOARD")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.orgboard")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetDefault("tracing.enabled", false)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:        viper.GetBool("tracing.enabled"),
		ServiceName:    "orgboard",
		ServiceVersion: version.Get().Version,
	})
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to initialize tracing")
	} else {
		defer shutdown(context.Background())
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
