package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/gymdesk/pkg/response"
)

type Health struct {
	Status  string    `json:"status"`
	Service string    `json:"service"`
	Time    time.Time `json:"time"`
}

// @Summary      Health check
// @Description  Returns service status
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespHealth
// @Router       /healthz [get]
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, response.OKT(Health{Status: "ok", Service: "gymdesk", Time: time.Now().UTC()}))
}

// NoRoute renders unknown paths in the standard envelope.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, response.ErrorMsg(response.APIResponseCodeNotFound, "route not found: "+c.Request.URL.Path))
}

func RegisterHealthRoutes(r gin.IRouter) {
	r.GET("/healthz", Healthz)
}
