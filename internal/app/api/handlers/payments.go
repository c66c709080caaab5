package handlers

import (
	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/payment"
	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// @Summary      List payments
// @Tags         Payments
// @Produce      json
// @Security     BearerAuth
// @Param        memberId  query  string  false  "Member ID"
// @Param        page      query  int     false  "Page (default 1)"
// @Param        limit     query  int     false  "Page size 1..100 (default 10)"
// @Success      200  {object}  handlers.RespPaymentPage
// @Router       /api/payments [get]
func ApiListPayments(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := pageFrom(c)
		if err != nil {
			fail(c, err)
			return
		}
		items, total, err := svc.List(c.Request.Context(), storage.PaymentQuery{MemberID: c.Query("memberId"), Page: p})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, pageOf(items, total, p))
	}
}

// @Summary      Record payment
// @Description  membershipId, when given, must belong to memberId.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body payment.CreateInput true "Payment"
// @Success      201  {object}  handlers.RespPayment
// @Failure      400  {object}  handlers.RespError
// @Failure      404  {object}  handlers.RespError
// @Router       /api/payments [post]
func ApiCreatePayment(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in payment.CreateInput
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

// @Summary      Get payment
// @Tags         Payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Payment ID"
// @Success      200  {object}  handlers.RespPayment
// @Failure      404  {object}  handlers.RespError
// @Router       /api/payments/{id} [get]
func ApiGetPayment(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, p)
	}
}

// @Summary      Update payment
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string               true  "Payment ID"
// @Param        request  body  payment.UpdateInput  true  "Fields to change"
// @Success      200  {object}  handlers.RespPayment
// @Failure      404  {object}  handlers.RespError
// @Router       /api/payments/{id} [patch]
func ApiUpdatePayment(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in payment.UpdateInput
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

// @Summary      Delete payment
// @Tags         Payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Payment ID"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespError
// @Router       /api/payments/{id} [delete]
func ApiDeletePayment(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		ok(c, OKResult{OK: true})
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc *payment.Service) {
	g := r.Group("/payments")
	g.GET("", ApiListPayments(svc))
	g.GET("/:id", ApiGetPayment(svc))
	g.POST("", mw.RequireRoles(types.RolesFrontDesk...), ApiCreatePayment(svc))
	g.PATCH("/:id", mw.RequireRoles(types.RolesFrontDesk...), ApiUpdatePayment(svc))
	g.DELETE("/:id", mw.RequireRoles(types.RolesAdmin...), ApiDeletePayment(svc))
}
