package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/booking"
	"github.com/menfistoo/purobeach/internal/middleware"
	"github.com/menfistoo/purobeach/internal/model"
	"github.com/menfistoo/purobeach/internal/suggestion"
)

// Engine is the part of booking.Engine the HTTP layer drives.
type Engine interface {
	CreateReservation(ctx context.Context, req booking.CreateRequest) (*booking.CreateResult, error)
	CreateLinked(ctx context.Context, req booking.LinkedRequest) (*booking.LinkedResult, error)
	GetReservation(ctx context.Context, id uint64) (*booking.Detail, error)
	UpdateReservation(ctx context.Context, id uint64, patch booking.UpdateRequest) (*model.Reservation, error)
	History(ctx context.Context, id uint64) ([]model.StateHistoryEntry, error)
	AddState(ctx context.Context, id uint64, state, actor, note string) (*booking.StateChange, error)
	RemoveState(ctx context.Context, id uint64, state, actor, note string) (*booking.StateChange, error)
	ApplyStateToGroup(ctx context.Context, id uint64, state, actor, note string) (*booking.GroupResult, error)
	CancelGroup(ctx context.Context, id uint64, actor, note string) (*booking.GroupResult, error)
	UpdateGroup(ctx context.Context, id uint64, patch booking.UpdateRequest) (*booking.GroupResult, error)
	BulkCheck(ctx context.Context, furnitureIDs []uint64, dates []time.Time, exclude uint64) ([]booking.Conflict, error)
	FindDuplicate(ctx context.Context, customerID uint64, dates []time.Time, exclude uint64) (*booking.DuplicateMatch, error)
	Suggest(ctx context.Context, req booking.SuggestRequest) (*suggestion.Result, error)
	States(ctx context.Context) ([]model.StateDefinition, error)
}

// ReservationHandler serves the reservation, state and group routes.
type ReservationHandler struct {
	Engine   Engine
	Validate *validator.Validate
	Log      *zap.Logger
}

// NewReservationHandler panics when engine is nil.
func NewReservationHandler(engine Engine, v *validator.Validate, log *zap.Logger) *ReservationHandler {
	if engine == nil {
		panic("nil engine passed to NewReservationHandler")
	}
	if v == nil {
		v = NewValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationHandler{Engine: engine, Validate: v, Log: log}
}

// Create books furniture for one date.  POST /v1/reservations
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "invalid date", nil)
	}
	res, err := h.Engine.CreateReservation(c.Request().Context(), booking.CreateRequest{
		CustomerID:       req.CustomerID,
		Date:             date,
		PartySize:        req.PartySize,
		FurnitureIDs:     req.FurnitureIDs,
		TimeSlot:         req.TimeSlot,
		Preferences:      req.Preferences,
		Notes:            req.Notes,
		Actor:            middleware.Actor(c),
		RejectDuplicates: req.RejectDuplicates,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// CreateMultiday books a linked group.  POST /v1/reservations/multiday
func (h *ReservationHandler) CreateMultiday(c echo.Context) error {
	var req multidayRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	res, err := h.Engine.CreateLinked(c.Request().Context(), booking.LinkedRequest{
		CustomerID:       req.CustomerID,
		Dates:            dates,
		PartySize:        req.PartySize,
		FurnitureIDs:     req.FurnitureIDs,
		FurnitureByDate:  req.FurnitureByDate,
		Fallback:         booking.FallbackPolicy(req.Fallback),
		TimeSlot:         req.TimeSlot,
		Preferences:      req.Preferences,
		Notes:            req.Notes,
		Actor:            middleware.Actor(c),
		RejectDuplicates: req.RejectDuplicates,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Get returns a reservation with furniture, history and children.
// GET /v1/reservations/:id
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	d, err := h.Engine.GetReservation(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// History returns the state timeline.  GET /v1/reservations/:id/history
func (h *ReservationHandler) History(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	entries, err := h.Engine.History(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if entries == nil {
		entries = []model.StateHistoryEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"history": entries})
}

// toPatch converts the update body into an engine patch.
func toPatch(req updateReservationRequest, actor string) (booking.UpdateRequest, error) {
	patch := booking.UpdateRequest{
		PartySize:    req.PartySize,
		TimeSlot:     req.TimeSlot,
		Notes:        req.Notes,
		Preferences:  req.Preferences,
		FurnitureIDs: req.FurnitureIDs,
		Actor:        actor,
	}
	if req.Date != nil {
		d, err := model.ParseDate(*req.Date)
		if err != nil {
			return patch, booking.NewValidationError("invalid date " + *req.Date)
		}
		patch.Date = &d
	}
	return patch, nil
}

// Update patches one reservation.  PATCH /v1/reservations/:id
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req updateReservationRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	patch, err := toPatch(req, middleware.Actor(c))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	r, err := h.Engine.UpdateReservation(c.Request().Context(), id, patch)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, r)
}

// AddState adds a state.  POST /v1/reservations/:id/states
func (h *ReservationHandler) AddState(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req stateRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ch, err := h.Engine.AddState(c.Request().Context(), id, req.State, middleware.Actor(c), req.Note)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, ch)
}

// RemoveState removes a state.  DELETE /v1/reservations/:id/states/:state
// with an optional ?note=.
func (h *ReservationHandler) RemoveState(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	state, err := url.PathUnescape(c.Param("state"))
	if err != nil || state == "" {
		return badRequest(c, "invalid state", nil)
	}
	ch, err := h.Engine.RemoveState(c.Request().Context(), id, state, middleware.Actor(c), c.QueryParam("note"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, ch)
}

// ApplyGroupState adds a state to every member of the group.
// POST /v1/reservations/:id/group/states
func (h *ReservationHandler) ApplyGroupState(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req stateRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	res, err := h.Engine.ApplyStateToGroup(c.Request().Context(), id, req.State, middleware.Actor(c), req.Note)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(groupStatus(res), res)
}

// CancelGroup cancels every member.  POST /v1/reservations/:id/group/cancel
func (h *ReservationHandler) CancelGroup(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req noteRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	res, err := h.Engine.CancelGroup(c.Request().Context(), id, middleware.Actor(c), req.Note)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(groupStatus(res), res)
}

// UpdateGroup patches every member.  PATCH /v1/reservations/:id/group
func (h *ReservationHandler) UpdateGroup(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req updateReservationRequest
	if err := bindAndValidate(c, h.Validate, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	patch, err := toPatch(req, middleware.Actor(c))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	res, err := h.Engine.UpdateGroup(c.Request().Context(), id, patch)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(groupStatus(res), res)
}

// groupStatus is 200 when every member changed and 207 when some failed.
func groupStatus(res *booking.GroupResult) int {
	if len(res.Failures) > 0 {
		return http.StatusMultiStatus
	}
	return http.StatusOK
}
