// Package common holds what the one-shot CLI commands share: config
// loading, a dashboard workspace of their own, and output helpers.
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/service/clinic"
	"github.com/Alijeyrad/dentaldesk/internal/service/dashboard"
	"github.com/Alijeyrad/dentaldesk/internal/service/notification"
	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/pkg/logs"
	"github.com/Alijeyrad/dentaldesk/pkg/restclient"
)

// SessionID names the workspace every CLI invocation works in.
const SessionID = "cli"

// ReadConfig loads the file named by the root --config flag.
func ReadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

// Env is what a CLI command needs to talk to the clinic backend.
type Env struct {
	Cfg       *config.Config
	Client    *restclient.Client
	Catalog   *clinic.Catalog
	Dashboard dashboard.Service
}

// NewEnv reads config and builds the same services the HTTP server uses.
// CLI logging stays on stderr at the configured level.
func NewEnv(cmd *cobra.Command) (*Env, error) {
	cfg, err := ReadConfig(cmd)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logs.NewCLI(cfg.Logging.Level))

	catalog, err := clinic.NewCatalog(clinic.OptionsFromConfig(cfg.Dashboard))
	if err != nil {
		return nil, err
	}
	client := restclient.New(restclient.FromCentralConfig(cfg.Backend))
	env := &Env{Cfg: cfg, Client: client, Catalog: catalog}
	env.Dashboard, err = dashboard.New(catalog, env.Backend, dashboard.OptionsFromConfig(cfg.Dashboard))
	if err != nil {
		return nil, err
	}
	return env, nil
}

// Backend returns the REST collaborator of entity.
func (e *Env) Backend(entity string) table.Backend {
	return e.Client.Resource(entity)
}

// Notifications returns the CLI workspace's notification center.
func (e *Env) Notifications() *notification.Center {
	center, err := e.Dashboard.Notifications(SessionID)
	if err != nil {
		return notification.NewCenter(0)
	}
	return center
}

// FlushNotifications prints the toasts raised so far to w.
func (e *Env) FlushNotifications(w io.Writer) {
	for _, n := range e.Notifications().Active() {
		if n.Kind == notification.KindConfirm {
			continue
		}
		fmt.Fprintf(w, "[%s] %s\n", n.Kind, n.Message)
	}
}

// PrintJSON writes v indented.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderTable writes rows under the given headers.
func RenderTable(w io.Writer, headers []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.SetBorder(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.AppendBulk(rows)
	tw.Render()
}
