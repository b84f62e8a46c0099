package table

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/dentaldesk/cmd/common"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

func NewDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete one row after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, id := args[0], args[1]
			env, err := common.NewEnv(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := open(ctx, env, entity); err != nil {
				return err
			}
			center := env.Notifications()
			defer env.FlushNotifications(cmd.ErrOrStderr())

			return env.Dashboard.Mutate(ctx, common.SessionID, entity, "delete", func(ctrl *table.Controller) error {
				confirmID, err := ctrl.RequestDelete(id)
				if err != nil {
					return err
				}
				action := table.ActionDelete
				if !yes {
					prompt := confirmationMessage(center.Active(), confirmID)
					if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
						action = table.ActionCancel
					}
				}
				return center.Resolve(ctx, confirmID, action)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	return cmd
}

// confirm asks prompt and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
