package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/docs"
	"github.com/fatflowers/gymdesk/internal/app/api/handlers"
	mw "github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/asset"
	"github.com/fatflowers/gymdesk/internal/app/service/attendance"
	"github.com/fatflowers/gymdesk/internal/app/service/auth"
	"github.com/fatflowers/gymdesk/internal/app/service/expense"
	"github.com/fatflowers/gymdesk/internal/app/service/member"
	"github.com/fatflowers/gymdesk/internal/app/service/membership"
	"github.com/fatflowers/gymdesk/internal/app/service/payment"
	"github.com/fatflowers/gymdesk/internal/app/service/plan"
	"github.com/fatflowers/gymdesk/internal/app/service/statistics"
	cfgpkg "github.com/fatflowers/gymdesk/pkg/config"
	"github.com/fatflowers/gymdesk/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

// Deps is everything the route table needs.
type Deps struct {
	fx.In

	Log         *zap.SugaredLogger
	Cfg         *cfgpkg.Config
	Auth        *auth.Service
	Members     *member.Service
	Plans       *plan.Service
	Memberships *membership.Service
	Attendance  *attendance.Service
	Payments    *payment.Service
	Expenses    *expense.Service
	Assets      *asset.Service
	Stats       *statistics.Service
	Metrics     *metrics.Prometheus `optional:"true"`
}

// NewEngine builds the API engine with every route mounted.
func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Trace id first so the request logger and access log can pick it up.
	r.Use(mw.TraceMiddleware())
	if d.Metrics != nil {
		r.Use(d.Metrics.HandlerFunc())
	}
	r.NoRoute(handlers.NoRoute)
	registerRoutes(r, d)
	return r
}

func registerRoutes(r *gin.Engine, d Deps) {
	logged := []gin.HandlerFunc{mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware()}

	// Public group: request logger + access log
	pub := r.Group("/", logged...)
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Host = ""
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", logged...)
	handlers.RegisterAuthRoutes(api, d.Auth, mw.RateLimitMiddleware(d.Cfg.Auth.RateLimitRPS, d.Cfg.Auth.RateLimitBurst))

	// Everything else needs a valid access token; writes are role gated per route.
	protected := api.Group("", mw.Authenticate(d.Auth))
	handlers.RegisterMemberRoutes(protected, d.Members)
	handlers.RegisterPlanRoutes(protected, d.Plans)
	handlers.RegisterMembershipRoutes(protected, d.Memberships)
	handlers.RegisterAttendanceRoutes(protected, d.Attendance)
	handlers.RegisterPaymentRoutes(protected, d.Payments)
	handlers.RegisterExpenseRoutes(protected, d.Expenses)
	handlers.RegisterAssetRoutes(protected, d.Assets)
	handlers.RegisterStatsRoutes(protected, d.Stats)
}

// newPrometheus returns nil when metrics are disabled.
func newPrometheus(log *zap.SugaredLogger, cfg *cfgpkg.Config) *metrics.Prometheus {
	if cfg.MetricsAddr == "" {
		return nil
	}
	return metrics.NewPrometheus(metrics.NewPrometheusOptions{Subsystem: metrics.Subsystem, Logger: log})
}

func serve(lc fx.Lifecycle, log *zap.SugaredLogger, name string, srv *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting "+name+" server", "addr", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("%s server error: %v", name, err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping " + name + " server")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	serve(lc, log, "HTTP", &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second})
}

// runMetricsServer exposes /metrics on its own listener so scrapes bypass the
// API middleware.
func runMetricsServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, p *metrics.Prometheus) {
	if p == nil {
		return
	}
	serve(lc, log, "metrics", &http.Server{Addr: cfg.MetricsAddr, Handler: p.Router(), ReadHeaderTimeout: 5 * time.Second})
}

var Module = fx.Options(
	fx.Provide(newPrometheus),
	fx.Provide(NewEngine),
	fx.Invoke(runServer),
	fx.Invoke(runMetricsServer),
)
