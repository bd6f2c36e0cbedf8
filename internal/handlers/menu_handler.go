package handlers

import (
	"net/http"
	"strconv"

	"canteen_preorder/internal/services"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	catalog services.CatalogService
}

func NewMenuHandler(catalog services.CatalogService) *MenuHandler {
	return &MenuHandler{catalog: catalog}
}

func (h *MenuHandler) ListItems(c *gin.Context) {
	items, err := h.catalog.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *MenuHandler) GetItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	item, err := h.catalog.GetItem(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
