package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/smsgw/internal/app"
	"github.com/turtacn/smsgw/internal/infrastructure/monitoring"
	"github.com/turtacn/smsgw/pkg/constants"
)

// serveBindings maps configuration keys to the serve flags that override them.
var serveBindings = map[string]string{
	"server.port":        "port",
	"alert.phone_number": "alert-to",
	"rate_limit.hourly":  "hourly-limit",
	"rate_limit.daily":   "daily-limit",
	"rate_limit.clients": "client-limit",
}

func newServeCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Example: `  smsgw serve --port 8080 --alert-to +420123456789 \
    --hourly-limit 50 --daily-limit 500 --client-limit web:10:100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root)
		},
	}

	cmd.Flags().IntP("port", "p", constants.DefaultHTTPPort, "port to listen on")
	cmd.Flags().String("alert-to", "", "phone number Alertmanager notifications are sent to")
	cmd.Flags().Int("hourly-limit", constants.DefaultHourlyLimit, "global hourly SMS limit")
	cmd.Flags().Int("daily-limit", constants.DefaultDailyLimit, "global daily SMS limit")
	cmd.Flags().StringSlice("client-limit", nil, "per-caller limit as name:hourly:daily, repeatable")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions) error {
	bindings := make(map[string]string, len(serveBindings))
	for key, name := range serveBindings {
		bindings[key] = name
	}
	cfg, loader, err := root.loadConfig(cmd, bindings)
	if err != nil {
		return err
	}

	log, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Serve(ctx, cfg, loader, log)
}
