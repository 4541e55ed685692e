package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nps-cli/internal/dashboard"
	"github.com/sells-group/nps-cli/internal/source"
)

// clock is replaced in tests.
var clock = time.Now

// initSource opens the configured source. An unconfigured source is not an
// error: it yields nil so the dashboard can show its notice.
func initSource(ctx context.Context) (source.Source, error) {
	src, err := source.Open(ctx, cfg.Source)
	if err != nil {
		if eris.Is(err, source.ErrNotConfigured) {
			zap.L().Warn("data source not configured", zap.String("driver", cfg.Source.Driver))
			return nil, nil
		}
		return nil, eris.Wrap(err, "open source")
	}
	return src, nil
}

// loadState opens the source and loads the dashboard working set. The
// returned func closes the source.
func loadState(ctx context.Context) (*dashboard.State, func(), error) {
	src, err := initSource(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if src != nil {
			_ = src.Close()
		}
	}
	st := dashboard.Load(ctx, src, clock(), dashboard.WithPolicy(dashboard.ParsePolicy(cfg.Dashboard.StatusPolicy)))
	return st, closeFn, nil
}
