package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/smsgw/internal/application/dto"
	"github.com/turtacn/smsgw/pkg/utils"
)

type sendOptions struct {
	to      string
	message string
	dryRun  bool
	client  string
}

func newSendCommand(root *rootOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an SMS message",
		Example: `  smsgw send -t +420123456789 -m "Backup finished"
  smsgw --remote-url http://gateway:8080 send -t +420123456789 -m "hi" --client cron`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.to, "to", "t", "", "destination phone number")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "message text")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "do not actually send the message")
	cmd.Flags().StringVar(&opts.client, "client", "", "caller name reported to a remote gateway")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func runSend(cmd *cobra.Command, root *rootOptions, opts *sendOptions) error {
	req := &dto.SendSMSRequest{To: opts.to, Message: opts.message, Client: opts.client, DryRun: opts.dryRun}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	ctx := cmd.Context()
	log := root.cliLogger()
	out := cmd.OutOrStdout()

	if rc := root.remoteClient(log); rc != nil {
		resp, err := rc.SendSMS(ctx, req)
		if err != nil {
			return fmt.Errorf("sending via remote gateway: %w", err)
		}
		fmt.Fprintln(out, resp.Message)
		return nil
	}

	cfg, _, err := root.loadConfig(cmd, map[string]string{})
	if err != nil {
		return err
	}
	device := root.modemClient(cfg, log)

	session, err := device.AcquireSession(ctx)
	if err != nil {
		return fmt.Errorf("getting session info: %w", err)
	}
	if err := device.SendMessage(ctx, session, req.To, req.Message, req.DryRun); err != nil {
		return fmt.Errorf("sending SMS: %w", err)
	}

	if req.DryRun {
		fmt.Fprintln(out, "Dry run, SMS not sent")
		return nil
	}
	fmt.Fprintln(out, "SMS sent successfully!")
	return nil
}
