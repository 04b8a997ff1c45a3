package handler

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/menfistoo/purobeach/internal/booking"
	"github.com/menfistoo/purobeach/internal/model"
)

// Request bodies.  Dates travel as YYYY-MM-DD strings; validation tags
// cover shape only, business rules stay in the engine.

type createReservationRequest struct {
	CustomerID       uint64   `json:"customer_id" validate:"required"`
	Date             string   `json:"date" validate:"required,datetime=2006-01-02"`
	PartySize        int      `json:"party_size" validate:"required,min=1,max=200"`
	FurnitureIDs     []uint64 `json:"furniture_ids" validate:"required,min=1,dive,required"`
	TimeSlot         string   `json:"time_slot" validate:"omitempty,oneof=all_day morning afternoon"`
	Preferences      []string `json:"preferences" validate:"dive,required,max=64"`
	Notes            string   `json:"notes" validate:"max=2000"`
	RejectDuplicates bool     `json:"reject_duplicates"`
}

type multidayRequest struct {
	CustomerID       uint64              `json:"customer_id" validate:"required"`
	Dates            []string            `json:"dates" validate:"required,min=1,max=60,dive,datetime=2006-01-02"`
	PartySize        int                 `json:"party_size" validate:"required,min=1,max=200"`
	FurnitureIDs     []uint64            `json:"furniture_ids" validate:"dive,required"`
	FurnitureByDate  map[string][]uint64 `json:"furniture_by_date"`
	Fallback         string              `json:"fallback" validate:"omitempty,oneof=abort per_day"`
	TimeSlot         string              `json:"time_slot" validate:"omitempty,oneof=all_day morning afternoon"`
	Preferences      []string            `json:"preferences" validate:"dive,required,max=64"`
	Notes            string              `json:"notes" validate:"max=2000"`
	RejectDuplicates bool                `json:"reject_duplicates"`
}

type updateReservationRequest struct {
	Date         *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PartySize    *int     `json:"party_size" validate:"omitempty,min=1,max=200"`
	TimeSlot     *string  `json:"time_slot" validate:"omitempty,oneof=all_day morning afternoon"`
	Notes        *string  `json:"notes" validate:"omitempty,max=2000"`
	Preferences  []string `json:"preferences" validate:"omitempty,dive,required,max=64"`
	FurnitureIDs []uint64 `json:"furniture_ids" validate:"omitempty,min=1,dive,required"`
}

type stateRequest struct {
	State string `json:"state" validate:"required,max=64"`
	Note  string `json:"note" validate:"max=500"`
}

type noteRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type availabilityRequest struct {
	FurnitureIDs []uint64 `json:"furniture_ids" validate:"required,min=1,dive,required"`
	Dates        []string `json:"dates" validate:"required,min=1,max=60,dive,datetime=2006-01-02"`
	Exclude      uint64   `json:"exclude_reservation_id"`
}

type duplicateRequest struct {
	CustomerID uint64   `json:"customer_id" validate:"required"`
	Dates      []string `json:"dates" validate:"required,min=1,max=60,dive,datetime=2006-01-02"`
	Exclude    uint64   `json:"exclude_reservation_id"`
}

type suggestRequest struct {
	Dates       []string `json:"dates" validate:"required,min=1,max=60,dive,datetime=2006-01-02"`
	PartySize   int      `json:"party_size" validate:"required,min=1,max=200"`
	Preferences []string `json:"preferences" validate:"dive,required,max=64"`
	CustomerID  uint64   `json:"customer_id"`
	Limit       int      `json:"limit" validate:"omitempty,min=1,max=50"`
}

// NewValidator returns a validator reporting fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate decodes the JSON body into dst and validates it.
func bindAndValidate(c echo.Context, v *validator.Validate, dst any) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	return v.Struct(dst)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, booking.NewValidationError("reservation id must be a positive integer")
	}
	return id, nil
}

// parseDates converts validated YYYY-MM-DD strings.
func parseDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := model.ParseDate(s)
		if err != nil {
			return nil, booking.NewValidationError("invalid date " + s)
		}
		out = append(out, d)
	}
	return out, nil
}
