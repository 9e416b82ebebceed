package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"bizrecords/internal/model"
)

var (
	listJSON   bool
	listType   string
	listParent bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List trashed records, newest first",
	Long:  `List runs the same duplicate repair pass as the server before printing.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		records, err := services.Trash.ListAll(cmd.Context())
		if err != nil {
			return err
		}
		if listType != "" {
			records = lo.Filter(records, func(rec model.TrashRecord, _ int) bool {
				return string(rec.OriginalType) == listType
			})
		}
		items := services.Display.ResolveAll(records)

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(items)
		}

		header := []string{"ID", "Type", "Title", "Deleted", "By"}
		if listParent {
			header = append(header, "Parent/Owner")
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader(header)
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		for _, item := range items {
			row := []string{item.ID, item.Label, item.Title, deletedAgo(item.DeletedAt), item.DeletedBy.Username}
			if listParent {
				row = append(row, lo.Ternary(item.ContextRefs.ParentID != "", item.ContextRefs.ParentID, item.ContextRefs.OwnerID))
			}
			table.Append(row)
		}
		table.Render()
		return nil
	},
}

func deletedAgo(raw string) string {
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return humanize.Time(at)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listType, "type", "", "Only show records of this type")
	listCmd.Flags().BoolVar(&listParent, "context", false, "Show the parent or owner reference")
}
