package handlers

import (
	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/member"
	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// @Summary      List members
// @Description  Pages through members, newest first. q matches name or phone.
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Param        q      query  string  false  "Search"
// @Param        page   query  int     false  "Page (default 1)"
// @Param        limit  query  int     false  "Page size 1..100 (default 10)"
// @Success      200  {object}  handlers.RespMemberPage
// @Router       /api/members [get]
func ApiListMembers(svc *member.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := pageFrom(c)
		if err != nil {
			fail(c, err)
			return
		}
		items, total, err := svc.List(c.Request.Context(), storage.MemberQuery{Search: c.Query("q"), Page: p})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, pageOf(items, total, p))
	}
}

// @Summary      Create member
// @Tags         Members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body member.CreateInput true "Member"
// @Success      201  {object}  handlers.RespMember
// @Failure      400  {object}  handlers.RespError
// @Router       /api/members [post]
func ApiCreateMember(svc *member.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in member.CreateInput
		if !bindJSON(c, &in) {
			return
		}
		m, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		created(c, m)
	}
}

// @Summary      Get member
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Member ID"
// @Success      200  {object}  handlers.RespMember
// @Failure      404  {object}  handlers.RespError
// @Router       /api/members/{id} [get]
func ApiGetMember(svc *member.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, m)
	}
}

// @Summary      Update member
// @Tags         Members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string              true  "Member ID"
// @Param        request  body  member.UpdateInput  true  "Fields to change"
// @Success      200  {object}  handlers.RespMember
// @Failure      404  {object}  handlers.RespError
// @Router       /api/members/{id} [patch]
func ApiUpdateMember(svc *member.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in member.UpdateInput
		if !bindJSON(c, &in) {
			return
		}
		m, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, m)
	}
}

// @Summary      Delete member
// @Description  Deletes the member together with their memberships, visits and payments.
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Member ID"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespError
// @Router       /api/members/{id} [delete]
func ApiDeleteMember(svc *member.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		ok(c, OKResult{OK: true})
	}
}

// RegisterMemberRoutes mounts /members on an authenticated group.
func RegisterMemberRoutes(r gin.IRouter, svc *member.Service) {
	g := r.Group("/members")
	g.GET("", ApiListMembers(svc))
	g.POST("", mw.RequireRoles(types.RolesStaff...), ApiCreateMember(svc))
	g.GET("/:id", ApiGetMember(svc))
	g.PATCH("/:id", mw.RequireRoles(types.RolesStaff...), ApiUpdateMember(svc))
	g.DELETE("/:id", mw.RequireRoles(types.RolesAdmin...), ApiDeleteMember(svc))
}
