package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/pkg/constants"
)

type receiveOptions struct {
	count           int
	ascending       bool
	unreadPreferred bool
	boxType         string
	sortBy          string
	json            bool
}

func newReceiveCommand(root *rootOptions) *cobra.Command {
	opts := &receiveOptions{}

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "List stored SMS messages",
		Example: `  smsgw receive --count 5
  smsgw receive --box-type local-sent --sort-by phone --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceive(cmd, root, opts)
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", constants.DefaultListCount, "how many messages to read")
	cmd.Flags().BoolVar(&opts.ascending, "ascending", false, "oldest first")
	cmd.Flags().BoolVar(&opts.unreadPreferred, "unread-preferred", false, "list unread messages first")
	cmd.Flags().StringVar(&opts.boxType, "box-type", models.BoxLocalInbox.String(), "mailbox to read, by name or code")
	cmd.Flags().StringVar(&opts.sortBy, "sort-by", models.SortByDate.String(), "sort key: date, phone or index")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the messages as JSON")
	return cmd
}

func (o *receiveOptions) listParams() (models.ListParams, error) {
	params := models.DefaultListParams()
	if o.count <= 0 {
		return params, fmt.Errorf("--count must be a positive integer")
	}
	params.ReadCount = o.count
	params.Ascending = o.ascending
	params.UnreadPreferred = o.unreadPreferred

	var err error
	if params.BoxType, err = models.ParseBoxType(o.boxType); err != nil {
		return params, err
	}
	if params.SortType, err = models.ParseSortType(o.sortBy); err != nil {
		return params, err
	}
	return params, nil
}

func runReceive(cmd *cobra.Command, root *rootOptions, opts *receiveOptions) error {
	params, err := opts.listParams()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	log := root.cliLogger()

	var result *models.ListResult
	if rc := root.remoteClient(log); rc != nil {
		if result, err = rc.ListSMS(ctx, params); err != nil {
			return fmt.Errorf("receiving via remote gateway: %w", err)
		}
	} else {
		cfg, _, err := root.loadConfig(cmd, map[string]string{})
		if err != nil {
			return err
		}
		device := root.modemClient(cfg, log)

		session, err := device.AcquireSession(ctx)
		if err != nil {
			return fmt.Errorf("getting session info: %w", err)
		}
		if result, err = device.ListMessages(ctx, session, params); err != nil {
			return fmt.Errorf("receiving SMS: %w", err)
		}
	}

	if opts.json {
		return printJSON(cmd.OutOrStdout(), result.Messages)
	}
	printMessages(cmd.OutOrStdout(), result.Messages)
	return nil
}

func printJSON(w io.Writer, messages []models.DeviceMessage) error {
	if messages == nil {
		messages = []models.DeviceMessage{}
	}
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printMessages(w io.Writer, messages []models.DeviceMessage) {
	fmt.Fprintf(w, "Received %d SMS messages:\n", len(messages))
	for _, msg := range messages {
		fmt.Fprintf(w, "  From: %s\n", msg.Phone)
		fmt.Fprintf(w, "  Content: %s\n", msg.Content)
		fmt.Fprintf(w, "  Date: %s\n", msg.Date)
		fmt.Fprintf(w, "  Priority: %s\n", msg.Priority)
		fmt.Fprintf(w, "  Type: %s\n", msg.Type)
		fmt.Fprintf(w, "  Status: %s\n", msg.Status)
		fmt.Fprintf(w, "  SaveType: %d\n", msg.SaveType)
		fmt.Fprintln(w, "  --------------------")
	}
}
