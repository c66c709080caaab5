package handlers

import (
	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/attendance"
	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// @Summary      Check in
// @Description  Opens a visit. The member needs an ACTIVE membership whose window contains now and no open visit.
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body attendance.CheckInInput true "Check-in"
// @Success      201  {object}  handlers.RespAttendance
// @Failure      400  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /api/attendance/check-in [post]
func ApiCheckIn(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in attendance.CheckInInput
		if !bindJSON(c, &in) {
			return
		}
		a, err := svc.CheckIn(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		created(c, a)
	}
}

// @Summary      Check out
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body attendance.CheckOutInput true "Check-out"
// @Success      200  {object}  handlers.RespAttendance
// @Failure      400  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /api/attendance/check-out [post]
func ApiCheckOut(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in attendance.CheckOutInput
		if !bindJSON(c, &in) {
			return
		}
		a, err := svc.CheckOut(c.Request.Context(), in.AttendanceID)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, a)
	}
}

// @Summary      List visits
// @Description  Newest check-in first.
// @Tags         Attendance
// @Produce      json
// @Security     BearerAuth
// @Param        memberId  query  string  false  "Member ID"
// @Param        page      query  int     false  "Page (default 1)"
// @Param        limit     query  int     false  "Page size 1..100 (default 10)"
// @Success      200  {object}  handlers.RespAttendancePage
// @Router       /api/attendance [get]
func ApiListAttendance(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := pageFrom(c)
		if err != nil {
			fail(c, err)
			return
		}
		items, total, err := svc.List(c.Request.Context(), storage.AttendanceQuery{MemberID: c.Query("memberId"), Page: p})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, pageOf(items, total, p))
	}
}

func RegisterAttendanceRoutes(r gin.IRouter, svc *attendance.Service) {
	g := r.Group("/attendance")
	g.GET("", ApiListAttendance(svc))
	g.POST("/check-in", mw.RequireRoles(types.RolesStaff...), ApiCheckIn(svc))
	g.POST("/check-out", mw.RequireRoles(types.RolesStaff...), ApiCheckOut(svc))
}
