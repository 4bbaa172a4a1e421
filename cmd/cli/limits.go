package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLimitsCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Print the configured SMS limits",
		Long: `Print the global hourly and daily limits and every per-caller limit, after
merging the configuration file, SMSGW_* environment variables and flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.loadConfig(cmd, map[string]string{
				"rate_limit.hourly":  "hourly-limit",
				"rate_limit.daily":   "daily-limit",
				"rate_limit.clients": "client-limit",
			})
			if err != nil {
				return err
			}
			limits, err := cfg.RateLimit.CallerLimits()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CLIENT\tHOURLY\tDAILY")
			fmt.Fprintf(w, "(global)\t%d\t%d\n", cfg.RateLimit.Hourly, cfg.RateLimit.Daily)
			for _, l := range limits {
				fmt.Fprintf(w, "%s\t%d\t%d\n", l.Name, l.Hourly, l.Daily)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int("hourly-limit", 0, "global hourly SMS limit")
	cmd.Flags().Int("daily-limit", 0, "global daily SMS limit")
	cmd.Flags().StringSlice("client-limit", nil, "per-caller limit as name:hourly:daily, repeatable")
	return cmd
}
