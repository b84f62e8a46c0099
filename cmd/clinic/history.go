package clinic

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/dentaldesk/cmd/common"
	"github.com/Alijeyrad/dentaldesk/internal/service/patient"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

func NewHistoryCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <patient-id>",
		Short: "Show the medical history of a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := common.NewEnv(cmd)
			if err != nil {
				return err
			}
			svc := patient.NewHistoryService(env.Backend(patient.HistoryEntity), env.Dashboard.Now)
			rec, err := svc.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return common.PrintJSON(out, rec)
			}
			if rec == nil {
				fmt.Fprintf(out, "patient %s has no medical history on file\n", args[0])
				return nil
			}

			lines := make([][]string, 0, len(svc.Conditions())+4)
			for _, c := range svc.Conditions() {
				on, _ := rec[c.Key].(bool)
				lines = append(lines, []string{c.Label, yesNo(on)})
			}
			for _, key := range slices.Sorted(maps.Keys(patient.HistoryTable().Template)) {
				lines = append(lines, []string{key, table.Stringify(rec[key])})
			}
			common.RenderTable(out, []string{"Item", "Value"}, lines)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the history as JSON")

	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
