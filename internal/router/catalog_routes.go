package router

import (
	"github.com/labstack/echo/v4"

	"github.com/menfistoo/purobeach/internal/handler"
)

// RegisterCatalog mounts the cached configuration reads.
func RegisterCatalog(g *echo.Group, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g.GET("/furniture", h.ListFurniture, cache)
	g.GET("/states", h.ListStates, cache)
}
