package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/logctx"
	"github.com/fatflowers/gymdesk/pkg/response"
)

var nopLog = zap.NewNop().Sugar()

func init() {
	// Report json field names in validation messages.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// OKResult is the payload of endpoints that only report success.
type OKResult struct {
	OK bool `json:"ok"`
}

// fail renders err with its classified status. Internal errors are logged
// with their cause and rendered without it.
func fail(c *gin.Context, err error) {
	status, body := response.FromError(err)
	if status >= http.StatusInternalServerError {
		logctx.FromGin(c, nopLog).Errorw("request failed", "err", err)
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

func unit(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return " characters"
	}
	return ""
}

func validationMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "url":
		return f + " must be a valid URL"
	case "oneof":
		return f + " must be one of: " + fe.Param()
	case "min":
		return f + " must be at least " + fe.Param() + unit(fe)
	case "max":
		return f + " must be at most " + fe.Param() + unit(fe)
	case "gt":
		return f + " must be greater than " + fe.Param()
	case "gte":
		return f + " must be greater than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("%s failed on %s", f, fe.Tag())
	}
}

// bindErr converts a binding failure into a BadRequest carrying the
// validator's field messages.
func bindErr(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return apperr.BadRequest(strings.Join(lo.Map(ve, func(fe validator.FieldError, _ int) string {
			return validationMessage(fe)
		}), "; "))
	}
	return apperr.BadRequest("invalid request body")
}

// bindJSON binds the body into dst and renders 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, bindErr(err))
		return false
	}
	return true
}

func positiveQuery(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.BadRequest(key + " must be an integer")
	}
	return n, nil
}

// pageFrom reads page and limit from the query string. Out of range values
// are clamped.
func pageFrom(c *gin.Context) (storage.Page, error) {
	page, err := positiveQuery(c, "page")
	if err != nil {
		return storage.Page{}, err
	}
	limit, err := positiveQuery(c, "limit")
	if err != nil {
		return storage.Page{}, err
	}
	return storage.Page{Page: page, Limit: limit}.Normalize(), nil
}

func pageOf[T any](items []T, total int64, p storage.Page) response.Page[T] {
	if items == nil {
		items = []T{}
	}
	return response.Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}

// operatorID is the authenticated user id, or "" on public routes.
func operatorID(c *gin.Context) string {
	if claims := middleware.ClaimsFrom(c); claims != nil {
		return claims.UserID()
	}
	return ""
}

func created[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, response.OKT(data))
}

func ok[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, response.OKT(data))
}
