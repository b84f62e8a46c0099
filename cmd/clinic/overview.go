package clinic

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/dentaldesk/cmd/common"
	"github.com/Alijeyrad/dentaldesk/internal/service/payment"
)

func NewOverviewCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Summarize patients, appointments, dentures, stock and billing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := common.NewEnv(cmd)
			if err != nil {
				return err
			}
			ov, err := payment.New(env.Catalog, env.Backend, env.Dashboard.Now).Overview(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return common.PrintJSON(out, ov)
			}
			common.RenderTable(out, []string{"Metric", "Value"}, [][]string{
				{"Patients", strconv.Itoa(ov.Patients)},
				{"New patients", strconv.Itoa(ov.NewPatients)},
				{"Appointments today", strconv.Itoa(ov.AppointmentsToday)},
				{"Upcoming appointments", strconv.Itoa(ov.UpcomingAppointments)},
				{"Dentures in progress", strconv.Itoa(ov.DenturesInProgress)},
				{"Dentures overdue", strconv.Itoa(ov.DenturesOverdue)},
				{"Low stock items", strconv.Itoa(ov.LowStockItems)},
				{"Out of stock items", strconv.Itoa(ov.OutOfStockItems)},
				{"Treatments", strconv.Itoa(ov.Treatments)},
				{"Billed", money(ov.Billing.Billed)},
				{"Paid", money(ov.Billing.Paid)},
				{"Outstanding", money(ov.Billing.Outstanding)},
				{"Unpaid treatments", strconv.Itoa(ov.Billing.UnpaidTreatments)},
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the overview as JSON")

	return cmd
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
