package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/model"
)

// FurnitureLister reads the furniture catalog.
type FurnitureLister interface {
	ListActive(ctx context.Context) ([]model.Furniture, error)
}

// CatalogHandler serves the read-mostly configuration: furniture and
// reservation states.  Both routes sit behind the response cache.
type CatalogHandler struct {
	Furniture FurnitureLister
	Engine    Engine
	Log       *zap.Logger
}

// NewCatalogHandler panics when a dependency is nil.
func NewCatalogHandler(furniture FurnitureLister, engine Engine, log *zap.Logger) *CatalogHandler {
	if furniture == nil || engine == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogHandler{Furniture: furniture, Engine: engine, Log: log}
}

// ListFurniture returns the active furniture, optionally filtered by
// ?zone= and ?type=.  GET /v1/furniture
func (h *CatalogHandler) ListFurniture(c echo.Context) error {
	items, err := h.Furniture.ListActive(c.Request().Context())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	zone := strings.TrimSpace(c.QueryParam("zone"))
	typ := strings.TrimSpace(c.QueryParam("type"))
	out := make([]model.Furniture, 0, len(items))
	for _, f := range items {
		if zone != "" && !strings.EqualFold(f.Zone, zone) {
			continue
		}
		if typ != "" && !strings.EqualFold(f.Type, typ) {
			continue
		}
		out = append(out, f)
	}
	return c.JSON(http.StatusOK, echo.Map{"furniture": out})
}

// ListStates returns the reservation state configuration.
// GET /v1/states
func (h *CatalogHandler) ListStates(c echo.Context) error {
	defs, err := h.Engine.States(c.Request().Context())
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if defs == nil {
		defs = []model.StateDefinition{}
	}
	return c.JSON(http.StatusOK, echo.Map{"states": defs})
}
