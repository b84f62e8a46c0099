package table

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/dentaldesk/cmd/common"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <entity> <id> <status>",
		Short: "Change the status of one row",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, id, status := args[0], args[1], args[2]
			env, err := common.NewEnv(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := open(ctx, env, entity); err != nil {
				return err
			}
			defer env.FlushNotifications(cmd.ErrOrStderr())
			return env.Dashboard.Mutate(ctx, common.SessionID, entity, string(table.OpStatus), func(ctrl *table.Controller) error {
				return ctrl.ChangeStatus(ctx, id, status)
			})
		},
	}
}

func NewAdjustCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "adjust <entity> <id> <delta>",
		Short: "Add delta to the stock quantity of one row",
		Long: `Add delta to the stock quantity of one row. Use -- before a negative
delta, e.g. "dentaldesk table adjust inventory 12 -- -3".`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, id := args[0], args[1]
			delta, err := strconv.ParseFloat(args[2], 64)
			if err != nil || delta == 0 {
				return fmt.Errorf("delta must be a non-zero number, got %q", args[2])
			}
			env, err := common.NewEnv(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := open(ctx, env, entity); err != nil {
				return err
			}
			defer env.FlushNotifications(cmd.ErrOrStderr())
			err = env.Dashboard.Mutate(ctx, common.SessionID, entity, string(table.OpAdjust), func(ctrl *table.Controller) error {
				return ctrl.Adjust(ctx, id, delta)
			})
			if err != nil {
				return err
			}
			ctrl, err := env.Dashboard.Table(ctx, common.SessionID, entity)
			if err != nil {
				return err
			}
			if rec, ok := ctrl.Record(id); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: quantity %s\n", entity, id, table.Stringify(rec[ctrl.Config().QuantityField]))
			}
			return nil
		},
	}
}
