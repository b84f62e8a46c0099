package table

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/dentaldesk/cmd/common"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

func NewListCommand() *cobra.Command {
	var (
		category string
		search   string
		sortKey  string
		desc     bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List the rows of a table",
		Long: `List the rows of a table after applying category, search and sort,
in that order. Entities: appointments, patients, dentures, inventory, treatments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := common.NewEnv(cmd)
			if err != nil {
				return err
			}
			ctrl, err := open(cmd.Context(), env, args[0])
			if err != nil {
				return err
			}

			if err := ctrl.SetCategory(category); err != nil {
				return err
			}
			ctrl.SetSearch(search)
			if sortKey != "" {
				if !ctrl.ClickSort(sortKey) {
					return fmt.Errorf("column %q cannot be sorted", sortKey)
				}
				if desc {
					ctrl.ClickSort(sortKey)
				}
			}

			view, err := ctrl.View()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return common.PrintJSON(out, view.Rows)
			}
			renderRows(out, ctrl.Config(), view.Rows)
			fmt.Fprintf(out, "\n%d of %d rows\n", len(view.Rows), view.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", table.CategoryAll, "Category to show")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text to match")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print rows as JSON")

	return cmd
}
