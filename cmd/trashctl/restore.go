package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bizrecords/internal/service"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [trash-id]",
	Short: "Restore a trashed record to its original home",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		actor := operator()
		result, err := services.Restorer.Restore(cmd.Context(), args[0], actor)
		if err != nil {
			services.Audit.Log(cmd.Context(), service.AuditActionRestore, actor, "failed", args[0], nil, result, err.Error())
			return err
		}
		services.Audit.Log(cmd.Context(), service.AuditActionRestore, actor, "success", service.AuditResource(result.OriginalType, args[0]), nil, result, "")

		switch {
		case result.ParentID != "":
			fmt.Printf("restored %s as %s under parent %s\n", result.OriginalType, result.RestoredID, result.ParentID)
		case result.Namespace != "":
			fmt.Printf("restored %s as %s in %s\n", result.OriginalType, result.RestoredID, result.Namespace)
		default:
			fmt.Printf("restored %s as %s\n", result.OriginalType, result.RestoredID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
