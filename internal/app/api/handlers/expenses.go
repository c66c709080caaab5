package handlers

import (
	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/expense"
	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// @Summary      List expenses
// @Tags         Expenses
// @Produce      json
// @Security     BearerAuth
// @Param        category  query  string  false  "Category"
// @Param        page      query  int     false  "Page (default 1)"
// @Param        limit     query  int     false  "Page size 1..100 (default 10)"
// @Success      200  {object}  handlers.RespExpensePage
// @Failure      400  {object}  handlers.RespError
// @Router       /api/expenses [get]
func ApiListExpenses(svc *expense.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := pageFrom(c)
		if err != nil {
			fail(c, err)
			return
		}
		category := types.ExpenseCategory(c.Query("category"))
		if category != "" && !category.Valid() {
			fail(c, apperr.BadRequest("invalid expense category"))
			return
		}
		items, total, err := svc.List(c.Request.Context(), storage.ExpenseQuery{Category: category, Page: p})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, pageOf(items, total, p))
	}
}

// @Summary      Record expense
// @Tags         Expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body expense.CreateInput true "Expense"
// @Success      201  {object}  handlers.RespExpense
// @Failure      400  {object}  handlers.RespError
// @Router       /api/expenses [post]
func ApiCreateExpense(svc *expense.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in expense.CreateInput
		if !bindJSON(c, &in) {
			return
		}
		e, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		created(c, e)
	}
}

// @Summary      Get expense
// @Tags         Expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Expense ID"
// @Success      200  {object}  handlers.RespExpense
// @Failure      404  {object}  handlers.RespError
// @Router       /api/expenses/{id} [get]
func ApiGetExpense(svc *expense.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, e)
	}
}

// @Summary      Update expense
// @Tags         Expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string               true  "Expense ID"
// @Param        request  body  expense.UpdateInput  true  "Fields to change"
// @Success      200  {object}  handlers.RespExpense
// @Failure      404  {object}  handlers.RespError
// @Router       /api/expenses/{id} [patch]
func ApiUpdateExpense(svc *expense.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in expense.UpdateInput
		if !bindJSON(c, &in) {
			return
		}
		e, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, e)
	}
}

// @Summary      Delete expense
// @Tags         Expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Expense ID"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespError
// @Router       /api/expenses/{id} [delete]
func ApiDeleteExpense(svc *expense.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		ok(c, OKResult{OK: true})
	}
}

func RegisterExpenseRoutes(r gin.IRouter, svc *expense.Service) {
	g := r.Group("/expenses")
	g.GET("", ApiListExpenses(svc))
	g.GET("/:id", ApiGetExpense(svc))

	admin := g.Group("", mw.RequireRoles(types.RolesAdmin...))
	admin.POST("", ApiCreateExpense(svc))
	admin.PATCH("/:id", ApiUpdateExpense(svc))
	admin.DELETE("/:id", ApiDeleteExpense(svc))
}
