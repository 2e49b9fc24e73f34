package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	bookingapp "glampstay/internal/app/handlers/booking"
	"glampstay/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	PropertyID      string                  `json:"propertyId"`
	CheckIn         string                  `json:"checkIn"`
	CheckOut        string                  `json:"checkOut"`
	Guests          bookingapp.GuestsInput  `json:"guests"`
	Contact         bookingapp.ContactInput `json:"contactInformation"`
	SpecialRequests string                  `json:"specialRequests"`
	Policy          string                  `json:"cancellationPolicy"`
}

type updateBookingRequest struct {
	Contact         *bookingapp.ContactPatch `json:"contactInformation"`
	SpecialRequests *string                  `json:"specialRequests"`
}

type cancelBookingRequest struct {
	BookingID    string `json:"bookingId"`
	Reason       string `json:"reason"`
	RefundAmount *int64 `json:"refundAmount"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.Logger, "invalid request body")
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		PropertyID:      req.PropertyID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		Contact:         req.Contact,
		SpecialRequests: req.SpecialRequests,
		Policy:          req.Policy,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "bookingId", result.BookingID)
}

func (h BookingHandler) Get(c *gin.Context) {
	q := bookingapp.GetBookingQuery{BookingID: c.Param("id")}
	booking, err := queries.Ask[bookingapp.GetBookingQuery, dto.BookingDTO](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", booking)
}

func (h BookingHandler) Update(c *gin.Context) {
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.Logger, "invalid request body")
		return
	}
	cmd := bookingapp.UpdateBookingCommand{
		BookingID:       c.Param("id"),
		Contact:         req.Contact,
		SpecialRequests: req.SpecialRequests,
	}
	booking, err := commands.Dispatch[bookingapp.UpdateBookingCommand, dto.BookingDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "booking", booking)
}

// Cancel serves both POST /bookings/cancel with the id in the body and
// POST /bookings/:id/cancel.
func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, h.Logger, "invalid request body")
			return
		}
	}
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		req.BookingID = id
	}
	cmd := bookingapp.CancelBookingCommand{
		BookingID:       req.BookingID,
		Reason:          req.Reason,
		RefundAmount:    req.RefundAmount,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"bookingId":    result.BookingID,
		"status":       result.Status,
		"refundAmount": result.RefundAmount,
	})
}

var _ BookingHTTP = BookingHandler{}
