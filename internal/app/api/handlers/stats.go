package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fatflowers/gymdesk/internal/app/service/statistics"
	"github.com/fatflowers/gymdesk/internal/models"
)

// @Summary      Dashboard overview
// @Description  Headline counts, money totals, the five latest payments, visits and expenses, and breakdowns.
// @Tags         Stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOverview
// @Failure      500  {object}  handlers.RespError
// @Router       /api/stats/overview [get]
func ApiStatsOverview(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ov, err := svc.Overview(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, ov)
	}
}

// @Summary      Daily snapshots
// @Description  Stored end-of-day summaries between from and to inclusive.
// @Tags         Stats
// @Produce      json
// @Security     BearerAuth
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  handlers.RespSnapshots
// @Failure      400  {object}  handlers.RespError
// @Router       /api/stats/daily [get]
func ApiStatsDaily(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		snaps, err := svc.DailySnapshots(c.Request.Context(), c.Query("from"), c.Query("to"))
		if err != nil {
			fail(c, err)
			return
		}
		if snaps == nil {
			snaps = []models.StatsDailySnapshot{}
		}
		ok(c, snaps)
	}
}

func RegisterStatsRoutes(r gin.IRouter, svc *statistics.Service) {
	g := r.Group("/stats")
	g.GET("/overview", ApiStatsOverview(svc))
	g.GET("/daily", ApiStatsDaily(svc))
}
