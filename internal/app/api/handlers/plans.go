package handlers

import (
	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/plan"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// @Summary      List plans
// @Tags         Plans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespPlans
// @Router       /api/plans [get]
func ApiListPlans(svc *plan.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		plans, err := svc.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, plans)
	}
}

// @Summary      Get plan
// @Tags         Plans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Plan ID"
// @Success      200  {object}  handlers.RespPlan
// @Failure      404  {object}  handlers.RespError
// @Router       /api/plans/{id} [get]
func ApiGetPlan(svc *plan.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, p)
	}
}

// @Summary      Create plan
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body plan.CreateInput true "Plan"
// @Success      201  {object}  handlers.RespPlan
// @Failure      400  {object}  handlers.RespError
// @Router       /api/plans [post]
func ApiCreatePlan(svc *plan.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in plan.CreateInput
		if !bindJSON(c, &in) {
			return
		}
		p, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		created(c, p)
	}
}

// @Summary      Update plan
// @Tags         Plans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string            true  "Plan ID"
// @Param        request  body  plan.UpdateInput  true  "Fields to change"
// @Success      200  {object}  handlers.RespPlan
// @Failure      404  {object}  handlers.RespError
// @Router       /api/plans/{id} [patch]
func ApiUpdatePlan(svc *plan.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in plan.UpdateInput
		if !bindJSON(c, &in) {
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, p)
	}
}

// @Summary      Delete plan
// @Description  Fails with 409 while memberships reference the plan; deactivate it instead.
// @Tags         Plans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Plan ID"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Router       /api/plans/{id} [delete]
func ApiDeletePlan(svc *plan.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		ok(c, OKResult{OK: true})
	}
}

func RegisterPlanRoutes(r gin.IRouter, svc *plan.Service) {
	g := r.Group("/plans")
	g.GET("", ApiListPlans(svc))
	g.GET("/:id", ApiGetPlan(svc))

	admin := g.Group("", mw.RequireRoles(types.RolesAdmin...))
	admin.POST("", ApiCreatePlan(svc))
	admin.PATCH("/:id", ApiUpdatePlan(svc))
	admin.DELETE("/:id", ApiDeletePlan(svc))
}
