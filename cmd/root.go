package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cliniccmd "github.com/Alijeyrad/dentaldesk/cmd/clinic"
	httpcmd "github.com/Alijeyrad/dentaldesk/cmd/http"
	systemcmd "github.com/Alijeyrad/dentaldesk/cmd/system"
	tablecmd "github.com/Alijeyrad/dentaldesk/cmd/table"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "dentaldesk",
	Short: "Dental clinic dashboard over a REST backend.",
	Long: `dentaldesk serves the clinic dashboard: sortable, filterable tables of
patients, appointments, dentures, inventory and treatments, backed by the
clinic's REST API. The same tables can be driven from this CLI.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(tablecmd.NewTableCommand())
	rootCmd.AddCommand(cliniccmd.NewHistoryCommand())
	rootCmd.AddCommand(cliniccmd.NewOverviewCommand())
}
