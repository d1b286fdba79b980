package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/item"
	"github.com/kasuganosora/itemvault/server/game/vault"
	mw "github.com/kasuganosora/itemvault/server/middleware"
	"go.uber.org/zap"
)

// InventoryHandler handles inventory REST endpoints.
type InventoryHandler struct {
	vaults *vault.Manager
	logger *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(vaults *vault.Manager, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{vaults: vaults, logger: logger}
}

// ---- view types ----

type propertyView struct {
	ID    item.PropertyID `json:"id"`
	Name  string          `json:"name,omitempty"`
	Value item.Value      `json:"value"`
}

type slotView struct {
	Slot       int               `json:"slot"`
	Definition item.DefinitionID `json:"definition"`
	Name       string            `json:"name"`
	Quantity   int               `json:"quantity"`
	Properties []propertyView    `json:"properties,omitempty"`
}

type containerView struct {
	Name      string     `json:"name"`
	Slots     int        `json:"slots"`
	Used      int        `json:"used"`
	MaxWeight float64    `json:"max_weight"`
	Weight    float64    `json:"weight"`
	Items     []slotView `json:"items"`
}

func viewContainer(c *container.Container) containerView {
	cv := containerView{
		Name:      c.Name(),
		Slots:     c.SlotCount(),
		MaxWeight: c.MaxWeight(),
		Weight:    c.UsedWeight(),
		Items:     []slotView{},
	}
	for i := 0; i < c.SlotCount(); i++ {
		s := c.ItemAt(i)
		if s.IsEmpty() {
			continue
		}
		cv.Used++
		sv := slotView{
			Slot:       i,
			Definition: s.Item.DefinitionID(),
			Name:       s.Item.Definition().Name,
			Quantity:   s.Quantity,
		}
		for _, p := range s.Item.Properties() {
			pv := propertyView{ID: p.ID(), Value: p.Value()}
			if p.Definition() != nil {
				pv.Name = p.Definition().Name
			}
			sv.Properties = append(sv.Properties, pv)
		}
		cv.Items = append(cv.Items, sv)
	}
	return cv
}

// session loads the caller's inventory session or writes an error response.
func (h *InventoryHandler) session(c *gin.Context) *vault.Session {
	sess, err := h.vaults.Session(c.Request.Context(), mw.GetAccountID(c))
	if err != nil {
		h.logger.Error("load inventory session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil
	}
	return sess
}

// filterFromParams builds an item filter from definition/category parameters.
// Exactly one of the two must be present.
func filterFromParams(defStr, category string) (container.Filter, bool) {
	switch {
	case defStr != "" && category == "":
		id, err := strconv.Atoi(defStr)
		if err != nil || id <= 0 {
			return nil, false
		}
		return container.ByDefinition(item.DefinitionID(id)), true
	case category != "" && defStr == "":
		return container.ByCategory(category), true
	default:
		return nil, false
	}
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	var views []containerView
	sess.Do(func(inv *container.Inventory) {
		for _, ct := range inv.Containers() {
			views = append(views, viewContainer(ct))
		}
	})
	c.JSON(http.StatusOK, gin.H{"containers": views})
}

type addItemRequest struct {
	Definition int    `json:"definition" binding:"required,gt=0"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	Container  string `json:"container"`
}

// AddItem handles POST /api/inventory/items. An empty container name means
// first-fit across the whole inventory.
func (h *InventoryHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := h.session(c)
	if sess == nil {
		return
	}

	var added int
	var reason string
	ops := h.vaults.Ops()
	sess.Do(func(inv *container.Inventory) {
		if req.Container == "" {
			added, reason = ops.AddByIDToInventory(inv, item.DefinitionID(req.Definition), req.Quantity)
			return
		}
		ct := inv.Container(req.Container)
		if ct == nil {
			reason = "unknown container"
			return
		}
		added, reason = ops.AddByID(ct, item.DefinitionID(req.Definition), req.Quantity)
	})

	c.JSON(http.StatusOK, gin.H{
		"added":     added,
		"requested": req.Quantity,
		"reason":    reason,
	})
}

type removeItemRequest struct {
	Definition int    `json:"definition"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	Container  string `json:"container"`
}

// RemoveItem handles DELETE /api/inventory/items.
func (h *InventoryHandler) RemoveItem(c *gin.Context) {
	var req removeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defStr := ""
	if req.Definition > 0 {
		defStr = strconv.Itoa(req.Definition)
	}
	f, ok := filterFromParams(defStr, req.Category)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of definition or category required"})
		return
	}
	sess := h.session(c)
	if sess == nil {
		return
	}

	var removed int
	ops := h.vaults.Ops()
	sess.Do(func(inv *container.Inventory) {
		if req.Container == "" {
			removed, _ = ops.RemoveFromInventory(inv, f, req.Quantity)
			return
		}
		if ct := inv.Container(req.Container); ct != nil {
			removed, _ = ops.Remove(ct, f, req.Quantity)
		}
	})

	c.JSON(http.StatusOK, gin.H{
		"removed":   removed,
		"requested": req.Quantity,
	})
}

// Count handles GET /api/inventory/count?definition=N or ?category=tag.
func (h *InventoryHandler) Count(c *gin.Context) {
	f, ok := filterFromParams(c.Query("definition"), c.Query("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of definition or category required"})
		return
	}
	sess := h.session(c)
	if sess == nil {
		return
	}
	var total int
	ops := h.vaults.Ops()
	sess.Do(func(inv *container.Inventory) {
		total = ops.CountInInventory(inv, f)
	})
	c.JSON(http.StatusOK, gin.H{"count": total})
}

// Sort handles POST /api/inventory/containers/:name/sort. Stacks are ordered
// by definition ID, empties pushed to the back.
func (h *InventoryHandler) Sort(c *gin.Context) {
	name := c.Param("name")
	sess := h.session(c)
	if sess == nil {
		return
	}
	found := false
	sess.Do(func(inv *container.Inventory) {
		ct := inv.Container(name)
		if ct == nil {
			return
		}
		found = true
		ct.SortSlots(func(a, b item.Stack) bool {
			return a.Item.DefinitionID() < b.Item.DefinitionID()
		})
	})
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown container"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Save handles POST /api/inventory/save: immediate snapshot to the database.
func (h *InventoryHandler) Save(c *gin.Context) {
	if err := h.vaults.Save(c.Request.Context(), mw.GetAccountID(c)); err != nil {
		h.logger.Error("save inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
