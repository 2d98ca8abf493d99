package handler

import (
	"errors"
	"net/http"

	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

func (h *Handler) serveImage(c *gin.Context, owner string, payload []byte, format string) {
	width, err := parseDimension(c, "width")
	if err != nil {
		respondException(c, http.StatusBadRequest, "Invalid image size.", err)
		return
	}
	height, err := parseDimension(c, "height")
	if err != nil {
		respondException(c, http.StatusBadRequest, "Invalid image size.", err)
		return
	}

	rendition, err := h.renderer.Render(c.Request.Context(), owner, payload, format, width, height)
	if err != nil {
		if errors.Is(err, images.ErrUndecodable) || errors.Is(err, images.ErrUnsupportedFormat) {
			respondException(c, http.StatusBadRequest, "Image cannot be displayed.", err)
			return
		}
		log.Error("Failed to render image", "owner", owner, "error", err)
		respondException(c, http.StatusInternalServerError, unhandledMessage, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, rendition.ContentType, rendition.Data)
}
