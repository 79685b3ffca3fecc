package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pacas-inventario/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			database, err := db.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := database.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d migrations applied (%s)\n", applied, database.Dialect)
			return nil
		},
	}
}
