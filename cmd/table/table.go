package table

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/dentaldesk/cmd/common"
	"github.com/Alijeyrad/dentaldesk/internal/service/notification"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

func NewTableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect and change dashboard tables from the command line",
	}

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewDeleteCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewAdjustCommand())

	return cmd
}

// open mounts entity in the CLI workspace. A failed initial load is an
// error here; there is no stale collection to fall back on.
func open(ctx context.Context, env *common.Env, entity string) (*table.Controller, error) {
	ctrl, err := env.Dashboard.Table(ctx, common.SessionID, entity)
	if err != nil {
		return nil, err
	}
	view, err := ctrl.View()
	if err != nil {
		return nil, err
	}
	if view.Error != "" {
		return nil, fmt.Errorf("load %s: %s", entity, view.Error)
	}
	return ctrl, nil
}

// visibleColumns drops columns that only exist for row buttons.
func visibleColumns(cfg table.Config) []table.Column {
	out := make([]table.Column, 0, len(cfg.Columns))
	for _, col := range cfg.Columns {
		if col.Key == "actions" {
			continue
		}
		out = append(out, col)
	}
	return out
}

func renderRows(w io.Writer, cfg table.Config, rows []table.Record) {
	cols := visibleColumns(cfg)
	headers := make([]string, 0, len(cols)+1)
	headers = append(headers, "ID")
	for _, col := range cols {
		headers = append(headers, col.Label)
	}
	lines := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, 0, len(cols)+1)
		line = append(line, r.String(cfg.IDField))
		for _, col := range cols {
			line = append(line, col.Value(r))
		}
		lines = append(lines, line)
	}
	common.RenderTable(w, headers, lines)
}

func renderRecord(w io.Writer, r table.Record) {
	keys := slices.Sorted(maps.Keys(r))
	lines := make([][]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, []string{k, table.Stringify(r[k])})
	}
	common.RenderTable(w, []string{"Field", "Value"}, lines)
}

func confirmationMessage(active []notification.Notification, id string) string {
	for _, n := range active {
		if n.ID == id {
			return n.Message
		}
	}
	return "Delete?"
}
