package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bizrecords/internal/service"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [trash-id]",
	Short: "Permanently delete one trashed record",
	Long:  `Delete removes the record for good. Deleting a record that is already gone succeeds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		actor := operator()
		if err := services.Trash.PermanentlyDelete(cmd.Context(), args[0], actor); err != nil {
			services.Audit.Log(cmd.Context(), service.AuditActionDelete, actor, "failed", args[0], nil, nil, err.Error())
			return err
		}
		services.Audit.Log(cmd.Context(), service.AuditActionDelete, actor, "success", args[0], nil, nil, "")

		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
