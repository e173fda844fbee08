package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/renderers/tui"
	"github.com/goliatone/go-diagnostic/pkg/wizard"
)

// run: walk the wizard in the terminal.
func runCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Complete the diagnostic in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := a.wire(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			ctrl, err := a.newController(c)
			if err != nil {
				return err
			}
			runner, err := tui.New(
				tui.WithOutput(cmd.OutOrStdout()),
				tui.WithArtifactPath(out),
				tui.WithLogger(a.logger.Named("tui")),
			)
			if err != nil {
				return err
			}

			if _, err := runner.Run(ctx, ctrl); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					a.logger.Info("diagnostic aborted")
					return nil
				}
				return err
			}

			delivery := ctrl.Wait()
			switch delivery.State {
			case wizard.DeliveryDelivered:
				fmt.Fprintln(cmd.OutOrStdout(), "Your answers were sent.")
			case wizard.DeliveryFailed:
				a.logger.Warn("delivery failed", zap.Error(delivery.Err), zap.String("backup", delivery.BackupKey))
				fmt.Fprintln(cmd.OutOrStdout(), "Your answers could not be sent; a copy was kept locally.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the feedback text to this file")
	return cmd
}
