package statistics

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/pkg/config"
)

// Module exposes the statistics service via Fx and schedules the daily snapshot.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerSnapshotJob),
)

const snapshotTimeout = time.Minute

// newSnapshotScheduler returns a cron scheduler running SaveDailySnapshot on
// spec in the stats location. An empty spec returns nil.
func newSnapshotScheduler(svc *Service, log *zap.SugaredLogger, spec string) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	c := cron.New(cron.WithLocation(svc.loc))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if _, err := svc.SaveDailySnapshot(ctx); err != nil {
			log.Errorw("daily stats snapshot failed", "err", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func registerSnapshotJob(lc fx.Lifecycle, svc *Service, log *zap.SugaredLogger, cfg *config.Config) error {
	c, err := newSnapshotScheduler(svc, log, cfg.Stats.SnapshotCron)
	if err != nil || c == nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("daily stats snapshot scheduled", "cron", cfg.Stats.SnapshotCron, "location", svc.loc.String())
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
