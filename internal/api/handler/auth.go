package handler

import (
	"net/http"

	"github.com/btecbytes/bytesapi/internal/api/auth"
	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/btecbytes/bytesapi/internal/password"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Login checks an email and password pair and starts a session for the user.
// Unknown emails and wrong passwords produce the same response.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondException(c, http.StatusBadRequest, "Email and password are required.", err)
		return
	}

	user, err := h.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		password.VerifyDecoy(req.Password)
		respond(c, http.StatusUnauthorized, nil, "Unauthorised.")
		return
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		respond(c, http.StatusUnauthorized, nil, "Unauthorised.")
		return
	}

	if err := auth.StartSession(c, user.ID); err != nil {
		log.Error("Failed to save session", "error", err)
	}

	respond(c, http.StatusOK, models.Summary{ID: user.ID}, "Login authorised")
}
