package ginserver

import (
	"context"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"glampstay/internal/app/dto"
	meapp "glampstay/internal/app/handlers/me"
	"glampstay/internal/app/queries"
	domainauth "glampstay/internal/domain/auth"
)

// DeviceRegistry keeps push tokens for the caller.
type DeviceRegistry interface {
	RegisterDevice(ctx context.Context, principal domainauth.Principal, token string) error
	RemoveDevice(ctx context.Context, principal domainauth.Principal, token string) error
}

type MeHandler struct {
	Queries queries.Bus
	Devices DeviceRegistry
	Logger  *slog.Logger
}

type deviceRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h MeHandler) ListBookings(c *gin.Context) {
	items, err := queries.Ask[meapp.ListGuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, meapp.ListGuestBookingsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "data", items)
}

func (h MeHandler) RegisterDevice(c *gin.Context) {
	p, ok := requirePrincipal(c, h.Logger)
	if !ok {
		return
	}
	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.Logger, "device token is required")
		return
	}
	if err := h.Devices.RegisterDevice(c.Request.Context(), p, req.Token); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "", nil)
}

func (h MeHandler) RemoveDevice(c *gin.Context) {
	p, ok := requirePrincipal(c, h.Logger)
	if !ok {
		return
	}
	if err := h.Devices.RemoveDevice(c.Request.Context(), p, c.Param("token")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "", nil)
}

var _ MeHTTP = MeHandler{}
