package handler

import (
	"net/http"

	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/btecbytes/bytesapi/internal/password"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// ListUsers returns all users, optionally filtered by role with the whitelist and blacklist query parameters.
func (h *Handler) ListUsers(c *gin.Context) {
	whitelist, err := database.ParseRoles(c.QueryArray("whitelist"))
	if err != nil {
		respondException(c, http.StatusBadRequest, "Invalid whitelist.", err)
		return
	}
	blacklist, err := database.ParseRoles(c.QueryArray("blacklist"))
	if err != nil {
		respondException(c, http.StatusBadRequest, "Invalid blacklist.", err)
		return
	}

	users, err := h.db.GetAllUsers(c.Request.Context())
	if err != nil {
		respondException(c, http.StatusInternalServerError, unhandledMessage, err)
		return
	}
	users = database.RoleFilter{Whitelist: whitelist, Blacklist: blacklist}.Apply(users)

	h.respondList(c, models.ToUsers(users, detailed(c), h.avatars), "users")
}

// CreateUser creates a user and, when usertype is given, its role in one transaction.
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, "User", err)
		return
	}

	var assignment *database.RoleAssignment
	if req.Usertype != "" {
		role, err := database.ParseRole(req.Usertype)
		if err != nil {
			respondException(c, http.StatusBadRequest, "User not created", err)
			return
		}
		assignment = &database.RoleAssignment{
			Role:       role,
			AccessRank: req.AccessRank,
			Subject:    req.Subject,
		}
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		log.Error("Failed to hash password", "error", err)
		respondException(c, http.StatusInternalServerError, unhandledMessage, err)
		return
	}

	user, err := h.db.CreateUser(c.Request.Context(),
		database.NewUser(req.Firstname, req.Lastname, req.Email, hash, req.IsAdmin),
		assignment,
	)
	if err != nil {
		respondWriteError(c, "User", err)
		return
	}

	respond(c, http.StatusOK, models.ToUser(*user, h.avatars), "User successfully created")
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		respondNotFound(c, "User")
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "User")
		return
	}

	respond(c, http.StatusOK, models.ToUser(*user, h.avatars), "User found.")
}
