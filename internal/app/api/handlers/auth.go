package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/auth"
)

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// @Summary      Register
// @Description  Creates a user account. Anyone may register as MEMBER; staff roles require an ADMIN bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body auth.RegisterInput true "New user"
// @Success      201  {object}  handlers.RespUser
// @Failure      400  {object}  handlers.RespError
// @Failure      403  {object}  handlers.RespError
// @Failure      409  {object}  handlers.RespError
// @Failure      429  {object}  handlers.RespError
// @Router       /api/auth/register [post]
func ApiRegister(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in auth.RegisterInput
		if !bindJSON(c, &in) {
			return
		}
		u, err := svc.Register(c.Request.Context(), in, middleware.ClaimsFrom(c))
		if err != nil {
			fail(c, err)
			return
		}
		created(c, u)
	}
}

// @Summary      Login
// @Description  Exchanges credentials for an access and refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body auth.LoginInput true "Credentials"
// @Success      200  {object}  handlers.RespLogin
// @Failure      401  {object}  handlers.RespError
// @Failure      429  {object}  handlers.RespError
// @Router       /api/auth/login [post]
func ApiLogin(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in auth.LoginInput
		if !bindJSON(c, &in) {
			return
		}
		res, err := svc.Login(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, res)
	}
}

// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespUser
// @Failure      401  {object}  handlers.RespError
// @Router       /api/auth/me [get]
func ApiMe(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Me(c.Request.Context(), operatorID(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, u)
	}
}

// @Summary      Refresh tokens
// @Description  Rotates a refresh token. The presented token is revoked and cannot be used again.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body auth.RefreshInput true "Refresh token"
// @Success      200  {object}  handlers.RespTokenPair
// @Failure      401  {object}  handlers.RespError
// @Router       /api/auth/refresh [post]
func ApiRefresh(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in auth.RefreshInput
		if !bindJSON(c, &in) {
			return
		}
		pair, err := svc.Refresh(c.Request.Context(), in.RefreshToken)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, pair)
	}
}

// @Summary      Logout
// @Description  Revokes the refresh token when it is known. Always succeeds.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handlers.logoutRequest false "Refresh token"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/auth/logout [post]
func ApiLogout(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in logoutRequest
		_ = c.ShouldBindJSON(&in)
		svc.Logout(c.Request.Context(), in.RefreshToken)
		ok(c, OKResult{OK: true})
	}
}

// RegisterAuthRoutes mounts /auth. limit throttles register and login.
func RegisterAuthRoutes(r gin.IRouter, svc *auth.Service, limit gin.HandlerFunc) {
	g := r.Group("/auth")
	g.POST("/register", limit, middleware.OptionalAuth(svc), ApiRegister(svc))
	g.POST("/login", limit, ApiLogin(svc))
	g.GET("/me", middleware.Authenticate(svc), ApiMe(svc))
	g.POST("/refresh", ApiRefresh(svc))
	g.POST("/logout", ApiLogout(svc))
}
