package handlers

import (
	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/gymdesk/internal/app/api/middleware"
	"github.com/fatflowers/gymdesk/internal/app/service/asset"
	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/pkg/types"
)

// @Summary      List assets
// @Tags         Assets
// @Produce      json
// @Security     BearerAuth
// @Param        q         query  string  false  "Search name or category"
// @Param        category  query  string  false  "Exact category"
// @Param        page      query  int     false  "Page (default 1)"
// @Param        limit     query  int     false  "Page size 1..100 (default 10)"
// @Success      200  {object}  handlers.RespAssetPage
// @Router       /api/assets [get]
func ApiListAssets(svc *asset.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := pageFrom(c)
		if err != nil {
			fail(c, err)
			return
		}
		q := storage.AssetQuery{Search: c.Query("q"), Category: c.Query("category"), Page: p}
		items, total, err := svc.List(c.Request.Context(), q)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, pageOf(items, total, p))
	}
}

// @Summary      Create asset
// @Tags         Assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body asset.CreateInput true "Asset"
// @Success      201  {object}  handlers.RespAsset
// @Failure      400  {object}  handlers.RespError
// @Router       /api/assets [post]
func ApiCreateAsset(svc *asset.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in asset.CreateInput
		if !bindJSON(c, &in) {
			return
		}
		a, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		created(c, a)
	}
}

// @Summary      Get asset
// @Tags         Assets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Asset ID"
// @Success      200  {object}  handlers.RespAsset
// @Failure      404  {object}  handlers.RespError
// @Router       /api/assets/{id} [get]
func ApiGetAsset(svc *asset.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, a)
	}
}

// @Summary      Update asset
// @Tags         Assets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string             true  "Asset ID"
// @Param        request  body  asset.UpdateInput  true  "Fields to change"
// @Success      200  {object}  handlers.RespAsset
// @Failure      404  {object}  handlers.RespError
// @Router       /api/assets/{id} [patch]
func ApiUpdateAsset(svc *asset.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in asset.UpdateInput
		if !bindJSON(c, &in) {
			return
		}
		a, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, a)
	}
}

// @Summary      Delete asset
// @Tags         Assets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Asset ID"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespError
// @Router       /api/assets/{id} [delete]
func ApiDeleteAsset(svc *asset.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		ok(c, OKResult{OK: true})
	}
}

func RegisterAssetRoutes(r gin.IRouter, svc *asset.Service) {
	g := r.Group("/assets")
	g.GET("", ApiListAssets(svc))
	g.GET("/:id", ApiGetAsset(svc))

	admin := g.Group("", mw.RequireRoles(types.RolesAdmin...))
	admin.POST("", ApiCreateAsset(svc))
	admin.PATCH("/:id", ApiUpdateAsset(svc))
	admin.DELETE("/:id", ApiDeleteAsset(svc))
}
