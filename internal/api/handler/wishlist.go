package handler

import (
	"net/http"

	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListWishlists(c *gin.Context) {
	wishlists, err := h.db.GetAllWishlists(c.Request.Context())
	if err != nil {
		respondException(c, http.StatusInternalServerError, unhandledMessage, err)
		return
	}
	h.respondList(c, models.ToWishlists(wishlists, detailed(c)), "wishlists")
}

// CreateWishlist links a user to an item.
func (h *Handler) CreateWishlist(c *gin.Context) {
	var req models.CreateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Wishlist", err)
		return
	}

	wishlist, err := h.db.CreateWishlist(c.Request.Context(),
		database.NewWishlist(req.ItemID, req.UserID, req.Title, req.Snippet, req.Description),
	)
	if err != nil {
		respondWriteError(c, "Wishlist", err)
		return
	}

	respond(c, http.StatusOK, models.ToWishlist(*wishlist), "Wishlist successfully created")
}

func (h *Handler) GetWishlist(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		respondNotFound(c, "Wishlist")
		return
	}

	wishlist, err := h.db.GetWishlistByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "Wishlist")
		return
	}

	respond(c, http.StatusOK, models.ToWishlist(*wishlist), "Wishlist found.")
}
