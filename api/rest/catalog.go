package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemvault/server/game/item"
	"github.com/kasuganosora/itemvault/server/resource"
)

// CatalogHandler exposes the read-only item catalog.
type CatalogHandler struct {
	res *resource.Loader
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(res *resource.Loader) *CatalogHandler {
	return &CatalogHandler{res: res}
}

// ListItems handles GET /api/catalog/items. An optional ?category= filter
// narrows the list.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var defs []*item.Definition
	if cat := c.Query("category"); cat != "" {
		defs = h.res.DefinitionsByCategory(cat)
	} else {
		defs = h.res.Definitions
	}
	if defs == nil {
		defs = []*item.Definition{}
	}
	c.JSON(http.StatusOK, gin.H{"items": defs})
}

// GetItem handles GET /api/catalog/items/:id.
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	def := h.res.Definition(item.DefinitionID(id))
	if def == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown item"})
		return
	}
	c.JSON(http.StatusOK, def)
}

// ListCategories handles GET /api/catalog/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats := h.res.Categories()
	if cats == nil {
		cats = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}
