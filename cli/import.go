package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var bundlesPath, configPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bundles and config from the legacy JSON files",
		Long: `Import bundles and pricing config from the flat-file format.

This command:
  1. Copies both files into the backup directory (.backup_YYYYMMDD_HHMMSS)
  2. Merges config.json into the stored config
  3. Stores every bundle whose name does not exist yet, keeping its created_at

--bundles also accepts a backup written by "pacas backup".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Imports.ImportFile(cmd.Context(), bundlesPath, configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, backup := range result.Backups {
				fmt.Fprintf(out, "Backed up to %s\n", backup)
			}
			fmt.Fprintf(out, "✓ Import completed: %d inserted, %d skipped, %d total\n", result.Inserted, result.Skipped, result.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&bundlesPath, "bundles", "data/bundles.json", "bundles file (list or backup export)")
	cmd.Flags().StringVar(&configPath, "config", "data/config.json", "config file")
	return cmd
}
