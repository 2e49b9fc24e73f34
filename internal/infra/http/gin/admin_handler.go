package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	bookingapp "glampstay/internal/app/handlers/booking"
	propertyapp "glampstay/internal/app/handlers/properties"
	"glampstay/internal/app/queries"
)

const maxPhotoBytes = 10 << 20

type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createPropertyRequest struct {
	ID          string                    `json:"id"`
	Slug        string                    `json:"slug"`
	Name        string                    `json:"name"`
	Kind        string                    `json:"kind"`
	Description string                    `json:"description"`
	Capacity    int                       `json:"capacity"`
	PetsAllowed bool                      `json:"petsAllowed"`
	Amenities   []string                  `json:"amenities"`
	Rates       propertyapp.RateCardInput `json:"rates"`
	Active      *bool                     `json:"active"`
}

type propertyStateRequest struct {
	Active *bool `json:"active"`
}

type confirmBookingRequest struct {
	PaymentReference string `json:"paymentReference"`
}

type recordPaymentRequest struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

func (h AdminHandler) CreateProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.Logger, "invalid request body")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	cmd := propertyapp.CreatePropertyCommand{
		ID:          req.ID,
		Slug:        req.Slug,
		Name:        req.Name,
		Kind:        req.Kind,
		Description: req.Description,
		Capacity:    req.Capacity,
		PetsAllowed: req.PetsAllowed,
		Amenities:   req.Amenities,
		Rates:       req.Rates,
		Active:      active,
	}
	property, err := commands.Dispatch[propertyapp.CreatePropertyCommand, dto.PropertyDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "data", property)
}

// UpdateRates replaces the rate card. Existing bookings keep their frozen price.
func (h AdminHandler) UpdateRates(c *gin.Context) {
	var req propertyapp.RateCardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.Logger, "invalid request body")
		return
	}
	cmd := propertyapp.UpdateRatesCommand{PropertyID: c.Param("id"), Rates: req}
	property, err := commands.Dispatch[propertyapp.UpdateRatesCommand, dto.PropertyDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", property)
}

func (h AdminHandler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes+1<<20)
	header, err := c.FormFile("photo")
	if err != nil {
		respondBadRequest(c, h.Logger, "multipart field \"photo\" is required")
		return
	}
	if header.Size <= 0 || header.Size > maxPhotoBytes {
		respondBadRequest(c, h.Logger, "photo must be between 1 byte and 10 MiB")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondBadRequest(c, h.Logger, "photo could not be read")
		return
	}
	defer file.Close()

	cmd := propertyapp.UploadPhotoCommand{
		PropertyID:  c.Param("id"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}
	property, err := commands.Dispatch[propertyapp.UploadPhotoCommand, dto.PropertyDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "data", property)
}

func (h AdminHandler) SetPropertyState(c *gin.Context) {
	var req propertyStateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		respondBadRequest(c, h.Logger, "active flag is required")
		return
	}
	cmd := propertyapp.SetPropertyStateCommand{PropertyID: c.Param("id"), Active: *req.Active}
	property, err := commands.Dispatch[propertyapp.SetPropertyStateCommand, dto.PropertyDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", property)
}

func (h AdminHandler) ListBookings(c *gin.Context) {
	q := bookingapp.ListBookingsQuery{
		PropertyID: c.Query("propertyId"),
		Status:     c.Query("status"),
	}
	items, err := queries.Ask[bookingapp.ListBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", items)
}

func (h AdminHandler) ConfirmBooking(c *gin.Context) {
	var req confirmBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, h.Logger, "invalid request body")
			return
		}
	}
	cmd := bookingapp.ConfirmBookingCommand{BookingID: c.Param("id"), PaymentReference: req.PaymentReference}
	booking, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, dto.BookingDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "booking", booking)
}

func (h AdminHandler) CompleteBooking(c *gin.Context) {
	cmd := bookingapp.CompleteBookingCommand{BookingID: c.Param("id")}
	booking, err := commands.Dispatch[bookingapp.CompleteBookingCommand, dto.BookingDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "booking", booking)
}

func (h AdminHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.Logger, "invalid request body")
		return
	}
	cmd := bookingapp.RecordPaymentCommand{BookingID: c.Param("id"), Status: req.Status, Reference: req.Reference}
	booking, err := commands.Dispatch[bookingapp.RecordPaymentCommand, dto.BookingDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "booking", booking)
}

var _ AdminHTTP = AdminHandler{}
