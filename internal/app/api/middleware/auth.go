package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app/service/auth"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/logctx"
	"github.com/fatflowers/gymdesk/pkg/response"
	"github.com/fatflowers/gymdesk/pkg/types"
)

const claimsKey = "claims"

var (
	errMissingToken = apperr.Unauthorized("missing bearer token")
	errForbidden    = apperr.Forbidden("insufficient role")
)

// TokenVerifier validates access tokens. *auth.Service implements it.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abort(c *gin.Context, err error) {
	status, body := response.FromError(err)
	c.AbortWithStatusJSON(status, body)
}

func attach(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
	ctx := logctx.WithUserID(c.Request.Context(), claims.UserID())
	c.Request = c.Request.WithContext(ctx)
	if l, ok := c.Get(logctx.GinLoggerKey); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			setLogger(c, lg.With("user_id", claims.UserID()))
		}
	}
}

// Authenticate rejects requests without a valid access token and stores the
// token claims for ClaimsFrom.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, errMissingToken)
			return
		}
		claims, err := v.VerifyAccess(token)
		if err != nil {
			abort(c, err)
			return
		}
		attach(c, claims)
		c.Next()
	}
}

// OptionalAuth stores the claims of a valid access token and lets every
// request through.
func OptionalAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := v.VerifyAccess(token); err == nil {
				attach(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles allows the request only when the authenticated role is one of
// roles. It must run after Authenticate.
func RequireRoles(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			abort(c, errMissingToken)
			return
		}
		if !slices.Contains(roles, claims.Role) {
			abort(c, errForbidden)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Authenticate or OptionalAuth, or nil.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
