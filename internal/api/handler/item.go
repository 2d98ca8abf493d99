package handler

import (
	"net/http"

	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.db.GetAllItems(c.Request.Context())
	if err != nil {
		respondException(c, http.StatusInternalServerError, unhandledMessage, err)
		return
	}
	h.respondList(c, models.ToItems(items, detailed(c)), "items")
}

// CreateItem creates an item in an existing category.
func (h *Handler) CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Item", err)
		return
	}
	if _, err := images.ParseFormat(req.ImageFormat); err != nil {
		respondBindError(c, "Item", err)
		return
	}

	item, err := h.db.CreateItem(c.Request.Context(), database.NewItem(
		req.Title,
		req.Snippet,
		req.Description,
		req.Image,
		req.ImageFormat,
		*req.Price,
		req.CategoryID,
	))
	if err != nil {
		respondWriteError(c, "Item", err)
		return
	}

	respond(c, http.StatusOK, models.ToItem(*item), "Item successfully created")
}

func (h *Handler) GetItem(c *gin.Context) {
	item, ok := h.lookupItem(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, models.ToItem(*item), "Item found.")
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		respondNotFound(c, "Item")
		return
	}

	if err := h.db.DeleteItem(c.Request.Context(), id); err != nil {
		respondWriteError(c, "Item", err)
		return
	}

	h.renderer.Invalidate(c.Request.Context(), images.ItemOwner(id))
	respond(c, http.StatusOK, nil, "Item deleted.")
}

// ItemImage serves the item image, resized when width or height is given.
func (h *Handler) ItemImage(c *gin.Context) {
	item, ok := h.lookupItem(c)
	if !ok {
		return
	}
	h.serveImage(c, images.ItemOwner(item.ID), item.Image, item.ImageFormat)
}

func (h *Handler) lookupItem(c *gin.Context) (*database.Item, bool) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		respondNotFound(c, "Item")
		return nil, false
	}
	item, err := h.db.GetItemByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "Item")
		return nil, false
	}
	return item, true
}
