// tempwatch prints every message published under /temperature/dummy.
//
// The default command subscribes to the configured topic filter and writes
// one line per received message to stdout, decoding JSON payloads and
// falling back to text. The station subcommand runs the companion sensor
// station that publishes timing reports into the same namespace.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/tempwatch/internal/infrastructure/config"
	"github.com/nerrad567/tempwatch/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// configEnv names the environment variable holding the config file path.
const configEnv = "TEMPWATCH_CONFIG"

// cliFlags holds command-line overrides. Empty values leave the
// configuration untouched.
type cliFlags struct {
	configPath string
	broker     string
	topic      string
	format     string
}

func main() {
	// Cancel on Ctrl+C or SIGTERM for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Records are written to stdout.
func newRootCmd(stdout io.Writer) *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:   "tempwatch",
		Short: "Print messages published under /temperature/dummy",
		Long: `tempwatch connects to an MQTT broker, subscribes to a topic filter
(/temperature/dummy/# by default) and prints every message it receives with
a receive timestamp. JSON payloads are printed decoded; anything else is
printed as text.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd.Context(), flags, stdout)
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"config file (default $"+configEnv+", else built-in defaults)")
	root.PersistentFlags().StringVarP(&flags.broker, "broker", "b", "",
		"broker URL, e.g. mqtt://server or ssl://host:8883")

	root.Flags().StringVarP(&flags.topic, "topic", "t", "", "topic filter to subscribe to")
	root.Flags().StringVarP(&flags.format, "format", "f", "", "output format: text or json")

	root.AddCommand(newStationCmd(flags))

	return root
}

// newStationCmd builds the station subcommand.
func newStationCmd(flags *cliFlags) *cobra.Command {
	var interval int

	cmd := &cobra.Command{
		Use:   "station",
		Short: "Run the simulated sensor station",
		Long: `station repeats the sensor station's wake cycle: connect, subscribe to
its test topic, publish the timing report of the previous cycle, disconnect
and sleep for the configured interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var override *int
			if cmd.Flags().Changed("interval") {
				override = &interval
			}
			return runStation(cmd.Context(), flags, override)
		},
	}

	cmd.Flags().IntVarP(&interval, "interval", "i", 0,
		"seconds between cycles, 0 runs a single cycle (default from config)")

	return cmd
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig(flags *cliFlags) (*config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = getConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		// The configured logger does not exist yet.
		logging.Default().Error("configuration failed to load", "path", path, "error", err)
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flags.broker != "" {
		cfg.MQTT.Broker.URL = flags.broker
	}
	if flags.topic != "" {
		cfg.Monitor.Topic = flags.topic
	}
	if flags.format != "" {
		cfg.Monitor.Format = flags.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("applying flags: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the configuration file path from TEMPWATCH_CONFIG.
// An empty result means built-in defaults plus environment overrides.
func getConfigPath() string {
	return os.Getenv(configEnv)
}
