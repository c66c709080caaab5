package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/gymdesk/internal/app/api/server"
	"github.com/fatflowers/gymdesk/internal/app/service/asset"
	"github.com/fatflowers/gymdesk/internal/app/service/attendance"
	"github.com/fatflowers/gymdesk/internal/app/service/auth"
	"github.com/fatflowers/gymdesk/internal/app/service/expense"
	"github.com/fatflowers/gymdesk/internal/app/service/member"
	"github.com/fatflowers/gymdesk/internal/app/service/membership"
	"github.com/fatflowers/gymdesk/internal/app/service/payment"
	"github.com/fatflowers/gymdesk/internal/app/service/plan"
	"github.com/fatflowers/gymdesk/internal/app/service/statistics"
	"github.com/fatflowers/gymdesk/internal/platform/db"
	"github.com/fatflowers/gymdesk/pkg/config"
	"github.com/fatflowers/gymdesk/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Core is the process plumbing shared by every binary: config, logger and storage.
var Core = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
)

var Module = fx.Options(
	Core,
	server.Module,
	auth.Module,
	member.Module,
	plan.Module,
	membership.Module,
	attendance.Module,
	payment.Module,
	expense.Module,
	asset.Module,
	statistics.Module,
)
