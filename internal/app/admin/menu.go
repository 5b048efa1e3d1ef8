package admin

import (
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kitchen-admin/internal/domain"
)

func (h *Handlers) listMenu(c *gin.Context) {
	items, err := h.menu.List(c.Request.Context())
	if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	out := make([]domain.MenuItemResponse, 0, len(items))
	for _, m := range items {
		out = append(out, domain.ToMenuItemResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *Handlers) createMenuItem(c *gin.Context) {
	var req domain.SaveMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if err := validateMenuItem(req); err != nil {
		problem(c, http.StatusBadRequest, "bad_menu_item", err.Error())
		return
	}
	created, err := h.menu.Insert(c.Request.Context(), domain.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	c.JSON(http.StatusCreated, domain.ToMenuItemResponse(created))
}

func (h *Handlers) updateMenuItem(c *gin.Context) {
	var req domain.SaveMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if err := validateMenuItem(req); err != nil {
		problem(c, http.StatusBadRequest, "bad_menu_item", err.Error())
		return
	}
	item := domain.MenuItem{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsAvailable: req.IsAvailable,
	}
	err := h.menu.Update(c.Request.Context(), item)
	if errors.Is(err, domain.ErrNotFound) {
		problem(c, http.StatusNotFound, "not_found", "menu item not found")
		return
	}
	if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, domain.ToMenuItemResponse(item))
}

func (h *Handlers) deleteMenuItem(c *gin.Context) {
	err := h.menu.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		problem(c, http.StatusNotFound, "not_found", "menu item not found")
		return
	}
	if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) setAvailability(c *gin.Context) {
	var req struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		problem(c, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	err := h.menu.SetAvailability(c.Request.Context(), c.Param("id"), req.IsAvailable)
	if errors.Is(err, domain.ErrNotFound) {
		problem(c, http.StatusNotFound, "not_found", "menu item not found")
		return
	}
	if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "is_available": req.IsAvailable})
}

// uploadMenuImage stores the image in the bucket first and only then
// points the menu item at the returned public URL.
func (h *Handlers) uploadMenuImage(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.menu.Get(c.Request.Context(), id); errors.Is(err, domain.ErrNotFound) {
		problem(c, http.StatusNotFound, "not_found", "menu item not found")
		return
	} else if err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		problem(c, http.StatusBadRequest, "bad_upload", "image file is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		problem(c, http.StatusBadRequest, "bad_upload", err.Error())
		return
	}
	defer src.Close()

	name := id + "-" + uuid.NewString() + path.Ext(file.Filename)
	url, err := h.images.Upload(c.Request.Context(), name, file.Header.Get("Content-Type"), src)
	if err != nil {
		problem(c, http.StatusBadGateway, "upload_failed", err.Error())
		return
	}
	if err := h.menu.SetImageURL(c.Request.Context(), id, url); err != nil {
		problem(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "image_url": url})
}

func validateMenuItem(req domain.SaveMenuItemRequest) error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if !req.Price.IsPositive() {
		return errors.New("price must be positive")
	}
	return nil
}
