package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/menfistoo/purobeach/internal/booking"
)

// CheckAvailability reports every conflict for the furniture and dates.
// POST /v1/availability/check
func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	conflicts, err := h.Engine.BulkCheck(c.Request().Context(), req.FurnitureIDs, dates, req.Exclude)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if conflicts == nil {
		conflicts = []booking.Conflict{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available": len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

// CheckDuplicate looks for a live reservation of the customer on the
// dates.  POST /v1/duplicates/check
func (h *ReservationHandler) CheckDuplicate(c echo.Context) error {
	var req duplicateRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	match, err := h.Engine.FindDuplicate(c.Request().Context(), req.CustomerID, dates, req.Exclude)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"is_duplicate": match != nil,
		"existing":     match,
	})
}

// Suggest ranks free furniture clusters.  POST /v1/suggestions
func (h *ReservationHandler) Suggest(c echo.Context) error {
	var req suggestRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	res, err := h.Engine.Suggest(c.Request().Context(), booking.SuggestRequest{
		Dates:       dates,
		PartySize:   req.PartySize,
		Preferences: req.Preferences,
		CustomerID:  req.CustomerID,
		Limit:       req.Limit,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}
