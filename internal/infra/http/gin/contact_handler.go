package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"glampstay/internal/app/commands"
	contactapp "glampstay/internal/app/handlers/contact"
)

type ContactHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.Logger, "invalid request body")
		return
	}
	cmd := contactapp.SubmitCommand{Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message}
	result, err := commands.Dispatch[contactapp.SubmitCommand, *contactapp.SubmitResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "messageId", result.MessageID)
}

var _ ContactHTTP = ContactHandler{}
