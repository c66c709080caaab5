// Command seed-admin creates the first ADMIN account from the seed.* config
// keys. It is a no-op when a user with that email already exists.
package main

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app"
	"github.com/fatflowers/gymdesk/internal/app/service/auth"
	"github.com/fatflowers/gymdesk/pkg/config"
)

func seed(log *zap.SugaredLogger, cfg *config.Config, svc *auth.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	u, created, err := svc.EnsureAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Infow("admin user created", "email", u.Email, "user_id", u.ID)
	} else {
		log.Infow("admin user already exists", "email", u.Email)
	}
	return nil
}

func main() {
	// Invokes run inside fx.New, so the seed is done once construction succeeds.
	a := fx.New(
		app.Core,
		auth.Module,
		fx.Invoke(seed),
		fx.NopLogger,
	)
	if err := a.Err(); err != nil {
		zap.NewExample().Sugar().Errorf("seed admin: %v", err)
		os.Exit(1)
	}
	// Start then Stop so the lifecycle hooks close the database pool.
	ctx, cancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancel()
	if err := a.Start(ctx); err == nil {
		_ = a.Stop(ctx)
	}
}
