// Package cli implements the smsgw command line: sending and reading messages through
// the device or a remote gateway, and running the gateway itself.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/internal/infrastructure/modem"
	"github.com/turtacn/smsgw/internal/infrastructure/monitoring"
	"github.com/turtacn/smsgw/internal/infrastructure/remote"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/logger"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configFile string
	modemURL   string
	remoteURL  string
	verbose    bool
}

// NewRootCommand builds the smsgw command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "smsgw",
		Short: "Send and receive SMS through a USB modem",
		Long: `smsgw talks to a USB modem's web API to send and read SMS messages.
It can also run as an HTTP gateway in front of the modem, or forward commands
to such a gateway with --remote-url.`,
		Version:       constants.VersionFull(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "path to a YAML configuration file")
	flags.StringVar(&opts.modemURL, "modem-url", constants.DefaultModemURL, "URL of the modem web interface")
	flags.StringVar(&opts.remoteURL, "remote-url", "", "URL of a running smsgw gateway to use instead of the modem")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log device calls")

	cmd.AddCommand(
		newSendCommand(opts),
		newReceiveCommand(opts),
		newServeCommand(opts),
		newLimitsCommand(opts),
	)
	return cmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and lets explicitly set flags override it. bindings
// maps configuration keys to flag names.
func (o *rootOptions) loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, *config.Loader, error) {
	loader := config.NewLoader(o.configFile)

	bindings["modem.url"] = "modem-url"
	for key, name := range bindings {
		if err := loader.BindFlag(key, cmd.Flag(name)); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

// cliLogger keeps one-shot commands quiet unless --verbose is given.
func (o *rootOptions) cliLogger() logger.Logger {
	level := "error"
	if o.verbose {
		level = "debug"
	}
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: level, Format: "console"})
	if err != nil {
		return logger.NewNoopLogger()
	}
	return log
}

func (o *rootOptions) modemClient(cfg *config.Config, log logger.Logger) *modem.Client {
	return modem.NewClient(cfg.Modem.URL,
		modem.WithTimeout(cfg.Modem.Timeout),
		modem.WithLogger(log),
		modem.WithSensitiveLogging(cfg.Log.LogSensitive),
	)
}

func (o *rootOptions) remoteClient(log logger.Logger) *remote.Client {
	if o.remoteURL == "" {
		return nil
	}
	return remote.NewClient(o.remoteURL, nil, log)
}
