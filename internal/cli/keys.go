package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"filephile/internal/config"
)

func newKeysCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the key bindings in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewService(opts.configPath, nil).Load()
			if err != nil {
				return err
			}
			table, err := config.BuildTable(cfg)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODE\tKEYS\tACTION\tDESCRIPTION")
			for _, b := range table.All() {
				mode := b.Mode.String()
				if b.Global {
					mode = "global"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mode, b.Keys, b.Action, b.Description)
			}
			return w.Flush()
		},
	}
}
