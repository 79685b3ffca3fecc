package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export all bundles and the config to a JSON backup",
		Long: `Write pacas_backup_YYYYMMDD_HHMMSS.json into BACKUP_DIR and, when
GOOGLE_APPLICATION_CREDENTIALS and DRIVE_BACKUP_FOLDER_ID are set, upload it
to Google Drive. --list shows the stored backups instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()

			if list {
				backups, err := a.Backups.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Fprintln(out, "No backups found")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SOURCE\tCREATED\tSIZE\tNAME")
				for _, b := range backups {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.Source, b.CreatedTime, b.Size, b.Name)
				}
				return w.Flush()
			}

			result, err := a.Backups.Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Backup written to %s (%d bundles)\n", result.Path, result.Bundles)
			if !result.DriveSkipped {
				fmt.Fprintf(out, "✓ Uploaded to Google Drive (file id %s)\n", result.DriveFileID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list local and Google Drive backups")
	return cmd
}
