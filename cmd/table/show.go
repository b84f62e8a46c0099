package table

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/dentaldesk/cmd/common"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

func NewShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <entity> <id>",
		Short: "Show every field of one row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := common.NewEnv(cmd)
			if err != nil {
				return err
			}
			ctrl, err := open(cmd.Context(), env, args[0])
			if err != nil {
				return err
			}
			rec, ok := ctrl.Record(args[1])
			if !ok {
				return fmt.Errorf("%w: %s %s", table.ErrRecordNotFound, args[0], args[1])
			}
			if asJSON {
				return common.PrintJSON(cmd.OutOrStdout(), rec)
			}
			renderRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the row as JSON")

	return cmd
}
