package app

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/service/dashboard"
)

// WorkerModule registers the background workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Dashboard dashboard.Service
}

func RegisterWorkers(p WorkerParams) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			interval := time.Duration(p.Cfg.Dashboard.SweepIntervalSeconds) * time.Second
			go func() {
				defer close(done)
				startSweeper(ctx, p.Dashboard, interval)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// workspace_sweeper
// ---------------------------------------------------------------------------

func startSweeper(ctx context.Context, svc dashboard.Service, interval time.Duration) {
	if interval <= 0 {
		slog.Info("workspace_sweeper: disabled")
		return
	}
	slog.Info("workspace_sweeper: started", "interval", interval)
	dashboard.RunSweeper(ctx, svc, interval)
	slog.Info("workspace_sweeper: stopped")
}
