package router

import (
	"github.com/labstack/echo/v4"

	"github.com/menfistoo/purobeach/internal/handler"
)

// RegisterReservations mounts the booking routes on the authenticated
// /v1 group.
func RegisterReservations(g *echo.Group, h *handler.ReservationHandler) {
	g.POST("/reservations", h.Create)
	g.POST("/reservations/multiday", h.CreateMultiday)
	g.GET("/reservations/:id", h.Get)
	g.PATCH("/reservations/:id", h.Update)
	g.GET("/reservations/:id/history", h.History)

	g.POST("/reservations/:id/states", h.AddState)
	g.DELETE("/reservations/:id/states/:state", h.RemoveState)

	// group operations apply to the parent and every child of a stay
	g.POST("/reservations/:id/group/states", h.ApplyGroupState)
	g.POST("/reservations/:id/group/cancel", h.CancelGroup)
	g.PATCH("/reservations/:id/group", h.UpdateGroup)

	g.POST("/availability/check", h.CheckAvailability)
	g.POST("/duplicates/check", h.CheckDuplicate)
	g.POST("/suggestions", h.Suggest)
}
