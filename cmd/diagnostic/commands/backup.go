package commands

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-diagnostic/pkg/store"
)

// backup: print, or clear, the locally kept submission.
func backupCmd(a *app) *cobra.Command {
	var clearBackup bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Show the submission kept after a failed delivery",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, closer, err := store.Open(ctx, a.cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer closer.Close()

			out := cmd.OutOrStdout()
			if clearBackup {
				if err := s.Delete(ctx, store.BackupKey); err != nil {
					return err
				}
				fmt.Fprintln(out, "Backup cleared.")
				return nil
			}

			data, ok, err := s.Get(ctx, store.BackupKey)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "No backup stored.")
				return nil
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, data, "", "  "); err != nil {
				pretty.Reset()
				pretty.Write(data)
			}
			fmt.Fprintln(out, pretty.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearBackup, "clear", false, "delete the stored backup")
	return cmd
}
