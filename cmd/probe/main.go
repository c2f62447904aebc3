// Command mobicost-probe checks a running MobiCost service end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/okian/mobicost/internal/probe"
	"github.com/okian/mobicost/pkg/logger"
)

// defaultRunTimeout bounds a whole probe run.
const defaultRunTimeout = 5 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "probe failed:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "mobicost-probe",
		Short: "Predict generated presets of every tier and verify the answers.",
		Long: `mobicost-probe checks /healthz, asks the service for presets of every
price tier, submits them concurrently to /v1/predict and verifies each
response. Flags can also be set through MOBICOST_PROBE_* environment
variables, e.g. MOBICOST_PROBE_URL or MOBICOST_PROBE_SAMPLES.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("url", probe.DefaultBaseURL, "Base URL of the service")
	flags.Int("samples", probe.DefaultSamples, "Presets to predict per tier")
	flags.Int("workers", probe.DefaultWorkers, "Number of concurrent callers")
	flags.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
	flags.String("output", "", "Optional JSON file to save the samples to")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("verbose", false, "Log every verified sample")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")

	v.SetEnvPrefix("MOBICOST_PROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper) error {
	if err := logger.InitWithWriter(cmd.ErrOrStderr(), logger.FormatText); err != nil {
		return err
	}
	if err := logger.SetLevelString(v.GetString("log-level")); err != nil {
		return err
	}

	var cfg probe.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	_, err := probe.Run(ctx, &cfg, cmd.OutOrStdout())
	return err
}
