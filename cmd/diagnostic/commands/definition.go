package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// definition: print the loaded wizard definition.
func definitionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "definition",
		Short: "Print the wizard definition as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := a.loadForm()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(form); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
