package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	remindersapp "glampstay/internal/app/handlers/reminders"
)

const opsKeyHeader = "X-Ops-Key"

// OpsKeyChecker verifies the shared key that guards /internal routes.
type OpsKeyChecker interface {
	Verify(key string) error
}

type OpsHandler struct {
	Commands     commands.Bus
	Keys         OpsKeyChecker
	ReminderLead time.Duration
	Logger       *slog.Logger
}

// RequireOpsKey rejects requests without a valid X-Ops-Key header.
func (h OpsHandler) RequireOpsKey(c *gin.Context) {
	key := c.GetHeader(opsKeyHeader)
	if h.Keys == nil || key == "" {
		respondError(c, h.Logger, apperr.Unauthorized("ops key required"))
		return
	}
	if err := h.Keys.Verify(key); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("ops key rejected", "error", err, "client_ip", c.ClientIP())
		}
		respondError(c, h.Logger, apperr.Forbidden("ops key rejected"))
		return
	}
	c.Next()
}

type sweepRequest struct {
	LeadHours int `json:"leadHours"`
}

func (h OpsHandler) SweepReminders(c *gin.Context) {
	var req sweepRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, h.Logger, "invalid request body")
			return
		}
	}
	lead := h.ReminderLead
	if req.LeadHours > 0 {
		lead = time.Duration(req.LeadHours) * time.Hour
	}
	result, err := commands.Dispatch[remindersapp.SweepCommand, *remindersapp.SweepResult](c.Request.Context(), h.Commands, remindersapp.SweepCommand{Lead: lead})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusOK, "reminded", result.Reminded)
}

var _ OpsHTTP = OpsHandler{}
