package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

var errEmptyURLExt = errors.New("url_ext must contain at least one letter or digit")

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.db.GetAllCategories(c.Request.Context())
	if err != nil {
		respondException(c, http.StatusInternalServerError, unhandledMessage, err)
		return
	}
	h.respondList(c, models.ToCategories(categories, detailed(c)), "categories")
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "Category", err)
		return
	}

	urlExt, err := normalizeURLExt(req.URLExt)
	if err != nil {
		respondBindError(c, "Category", err)
		return
	}
	if _, err := images.ParseFormat(req.ImageFormat); err != nil {
		respondBindError(c, "Category", err)
		return
	}

	category, err := h.db.CreateCategory(c.Request.Context(), database.NewCategory(
		req.Title,
		urlExt,
		req.Image,
		req.ImageFormat,
		req.Snippet,
		req.Description,
	))
	if err != nil {
		respondWriteError(c, "Category", err)
		return
	}

	respond(c, http.StatusOK, models.ToCategory(*category), "Category successfully created")
}

func (h *Handler) GetCategory(c *gin.Context) {
	category, err := h.db.GetCategoryByURLExt(c.Request.Context(), c.Param("url_ext"))
	if err != nil {
		respondNotFound(c, "Category")
		return
	}
	respond(c, http.StatusOK, models.ToCategory(*category), "Category found.")
}

// UpdateCategory applies the provided fields to a category.
func (h *Handler) UpdateCategory(c *gin.Context) {
	var req models.UpdateCategoryRequest
	// An empty body carries no fields.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondException(c, http.StatusBadRequest, "Category not updated", err)
		return
	}

	update := database.CategoryUpdate{
		Title:       req.Title,
		Image:       req.Image,
		ImageFormat: req.ImageFormat,
		Snippet:     req.Snippet,
		Description: req.Description,
	}
	if req.URLExt != nil {
		urlExt, err := normalizeURLExt(*req.URLExt)
		if err != nil {
			respondException(c, http.StatusBadRequest, "Category not updated", err)
			return
		}
		update.URLExt = &urlExt
	}
	if req.ImageFormat != nil {
		if _, err := images.ParseFormat(*req.ImageFormat); err != nil {
			respondException(c, http.StatusBadRequest, "Category not updated", err)
			return
		}
	}

	category, err := h.db.UpdateCategory(c.Request.Context(), c.Param("url_ext"), update)
	if err != nil {
		if errors.Is(err, database.ErrNoUpdates) {
			respond(c, http.StatusBadRequest, nil, "No updates provided.")
			return
		}
		respondWriteError(c, "Category", err)
		return
	}

	h.renderer.Invalidate(c.Request.Context(), images.CategoryOwner(category.ID))
	respond(c, http.StatusOK, models.ToCategory(*category), "Category updated.")
}

// DeleteCategory removes a category and its items.
func (h *Handler) DeleteCategory(c *gin.Context) {
	category, err := h.db.DeleteCategory(c.Request.Context(), c.Param("url_ext"))
	if err != nil {
		respondWriteError(c, "Category", err)
		return
	}

	ctx := c.Request.Context()
	h.renderer.Invalidate(ctx, images.CategoryOwner(category.ID))
	for _, item := range category.Items {
		h.renderer.Invalidate(ctx, images.ItemOwner(item.ID))
	}
	respond(c, http.StatusOK, nil, "Category deleted.")
}

// CategoryImage serves the category image, resized when width or height is given.
func (h *Handler) CategoryImage(c *gin.Context) {
	category, err := h.db.GetCategoryByURLExt(c.Request.Context(), c.Param("url_ext"))
	if err != nil {
		respondNotFound(c, "Category")
		return
	}
	h.serveImage(c, images.CategoryOwner(category.ID), category.Image, category.ImageFormat)
}

func normalizeURLExt(value string) (string, error) {
	urlExt := slug.Make(value)
	if urlExt == "" {
		return "", fmt.Errorf("%w: %q", errEmptyURLExt, value)
	}
	return urlExt, nil
}
