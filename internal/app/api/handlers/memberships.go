package handlers

import (
	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/membership"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// @Summary      Create membership
// @Description  Subscribes a member to a plan. The end date is startDate plus the plan duration and the membership starts ACTIVE.
// @Tags         Memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body membership.CreateInput true "Membership"
// @Success      201  {object}  handlers.RespMembership
// @Failure      400  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /api/memberships [post]
func ApiCreateMembership(svc *membership.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in membership.CreateInput
		if !bindJSON(c, &in) {
			return
		}
		ms, err := svc.Create(c.Request.Context(), in, operatorID(c))
		if err != nil {
			fail(c, err)
			return
		}
		created(c, ms)
	}
}

// @Summary      List a member's memberships
// @Tags         Memberships
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Member ID"
// @Success      200  {object}  handlers.RespMemberships
// @Router       /api/memberships/member/{id} [get]
func ApiListMemberships(svc *membership.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListByMember(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, items)
	}
}

// @Summary      Change membership status
// @Description  pause sets PAUSED, resume sets ACTIVE, expire sets EXPIRED. Any action is accepted from any status.
// @Tags         Memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                 true  "Membership ID"
// @Param        request  body  membership.PatchInput  true  "Action"
// @Success      200  {object}  handlers.RespMembership
// @Failure      400  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /api/memberships/{id} [patch]
func ApiPatchMembership(svc *membership.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in membership.PatchInput
		if !bindJSON(c, &in) {
			return
		}
		ms, err := svc.Patch(c.Request.Context(), c.Param("id"), in.Action, operatorID(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, ms)
	}
}

// @Summary      Membership history
// @Description  Status changes of a membership, newest first.
// @Tags         Memberships
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Membership ID"
// @Success      200  {object}  handlers.RespMembershipLogs
// @Failure      404  {object}  handlers.RespError
// @Router       /api/memberships/{id}/history [get]
func ApiMembershipHistory(svc *membership.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := svc.History(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, logs)
	}
}

func RegisterMembershipRoutes(r gin.IRouter, svc *membership.Service) {
	g := r.Group("/memberships")
	g.GET("/member/:id", ApiListMemberships(svc))

	desk := g.Group("", mw.RequireRoles(types.RolesFrontDesk...))
	desk.POST("", ApiCreateMembership(svc))
	desk.PATCH("/:id", ApiPatchMembership(svc))
	desk.GET("/:id/history", ApiMembershipHistory(svc))
}
