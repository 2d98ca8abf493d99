package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/btecbytes/bytesapi/internal/gravatar"
	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const (
	integrityFormat = "IntegrityError exception occurred. This may be due to violating UNIQUE constraint, " +
		"such as on the %s field. See 'Exception' for more info."
	unhandledMessage = "Unhandled exception occurred, see 'exception' for more information."
)

// uniqueFields names the constrained field most likely hit when writing an entity.
var uniqueFields = map[string]string{
	"User":     "Email",
	"Category": "url_ext",
	"Item":     "category_id",
	"Wishlist": "item_id or user_id",
}

func integrityMessage(entity string, err error) string {
	field, ok := uniqueFields[entity]
	if errors.Is(err, database.ErrRoleAlreadyAssigned) {
		field, ok = "usertype", true
	}
	if !ok {
		field = "ID"
	}
	return fmt.Sprintf(integrityFormat, field)
}

type Handler struct {
	db       database.DB
	config   *config.Config
	renderer *images.Renderer
	avatars  *gravatar.Resolver
}

func New(db database.DB, cfg *config.Config, renderer *images.Renderer, avatars *gravatar.Resolver) *Handler {
	return &Handler{
		db:       db,
		config:   cfg,
		renderer: renderer,
		avatars:  avatars,
	}
}

// Debug answers with a fixed envelope.
func (h *Handler) Debug(c *gin.Context) {
	respond(c, http.StatusOK, nil, "DEBUG DATA RESPONSE")
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, models.Envelope{
		Response: status,
		Data:     data,
		Message:  message,
	})
}

func respondException(c *gin.Context, status int, message string, err error) {
	c.JSON(status, models.Envelope{
		Response:  status,
		Message:   message,
		Exception: err.Error(),
	})
}

// respondList answers a list request. plural names the entity, e.g. "items".
func (h *Handler) respondList(c *gin.Context, data []any, plural string) {
	if len(data) == 0 && h.config.LegacyEmptyList {
		respond(c, http.StatusBadRequest, nil, fmt.Sprintf("No %s found.", plural))
		return
	}
	respond(c, http.StatusOK, data, fmt.Sprintf("%d %s(s) found.", len(data), plural))
}

// respondNotFound answers a lookup miss for entity, e.g. "Item".
func respondNotFound(c *gin.Context, entity string) {
	respond(c, http.StatusBadRequest, nil, entity+" does not exist.")
}

// respondWriteError maps a failed write on entity to its envelope.
func respondWriteError(c *gin.Context, entity string, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		var notFound *database.NotFoundError
		if errors.As(err, &notFound) && notFound.Entity != "" {
			respondNotFound(c, notFound.Entity)
			return
		}
		respondNotFound(c, entity)
	case errors.Is(err, database.ErrIntegrity):
		respondException(c, http.StatusBadRequest, integrityMessage(entity, err), err)
	default:
		log.Error("Unhandled error", "entity", entity, "error", err)
		respondException(c, http.StatusInternalServerError, unhandledMessage, err)
	}
}

// respondBindError answers a request whose body failed validation.
func respondBindError(c *gin.Context, entity string, err error) {
	respondException(c, http.StatusBadRequest, entity+" not created", err)
}

// detailed reads the detailed query flag.
func detailed(c *gin.Context) bool {
	switch strings.ToLower(c.Query("detailed")) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func parseUintParam(param string) (uint, error) {
	id, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Convert[uint](id)
}

// parseDimension reads an optional non-negative size query parameter.
func parseDimension(c *gin.Context, name string) (int, error) {
	value := c.Query(name)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return safecast.Convert[int](n)
}
