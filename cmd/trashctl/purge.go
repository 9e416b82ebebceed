package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bizrecords/internal/service"
)

var purgeYes bool

var purgeCmd = &cobra.Command{
	Use:   "purge-all",
	Short: "Permanently delete every trashed record",
	Long: `Purge-all empties the trash. It is meant for cleaning up corrupted or
duplicate records and cannot be undone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeYes {
			return errors.New("refusing to purge without --yes")
		}

		services, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		actor := operator()
		count, err := services.Trash.PurgeAll(cmd.Context(), actor)
		if err != nil {
			services.Audit.Log(cmd.Context(), service.AuditActionPurge, actor, "failed", "", nil, nil, err.Error())
			return err
		}
		services.Audit.Log(cmd.Context(), service.AuditActionPurge, actor, "success", "", nil, map[string]int{"count": count}, "")

		fmt.Printf("purged %s trash records\n", humanize.Comma(int64(count)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().BoolVar(&purgeYes, "yes", false, "Confirm the purge")
}
