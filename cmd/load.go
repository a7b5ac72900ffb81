package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/housing-dashboard/internal/config"
	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/fetcher"
)

// loadStore validates the config for mode and loads every dataset.
func loadStore(ctx context.Context, c *config.Config, mode string) (*feature.Store, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	var opts []feature.LoaderOption
	if c.Fetch.TempDir != "" {
		opts = append(opts, feature.WithTempDir(c.Fetch.TempDir))
	}
	loader := feature.NewLoader(fetcher.NewRouter(c.Fetch.FetcherOptions()), opts...)

	if c.Fetch.LoadTimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.Fetch.LoadTimeoutSecs)*time.Second)
		defer cancel()
	}

	start := time.Now()
	store, err := loader.Load(ctx, c.Sources)
	if err != nil {
		return nil, err
	}
	minYear, maxYear := store.YearRange()
	zap.L().Info("store ready",
		zap.Int("tracts", store.Tracts.Len()),
		zap.Int("zones", store.Zones.Len()),
		zap.Int("burden_rows", store.Burden.Len()),
		zap.Int("income_rows", store.Income.Len()),
		zap.Int("min_year", minYear),
		zap.Int("max_year", maxYear),
		zap.Duration("elapsed", time.Since(start)),
	)
	return store, nil
}
