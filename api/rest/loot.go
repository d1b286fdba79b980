package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/vault"
	mw "github.com/kasuganosora/itemvault/server/middleware"
	"github.com/kasuganosora/itemvault/server/resource"
	"go.uber.org/zap"
)

// LootHandler rolls drop tables into the caller's inventory.
type LootHandler struct {
	vaults *vault.Manager
	res    *resource.Loader
	logger *zap.Logger
}

// NewLootHandler creates a new LootHandler.
func NewLootHandler(vaults *vault.Manager, res *resource.Loader, logger *zap.Logger) *LootHandler {
	return &LootHandler{vaults: vaults, res: res, logger: logger}
}

type rollRequest struct {
	Table      string  `json:"table" binding:"required"`
	Count      int     `json:"count" binding:"required,gt=0,lte=100"`
	Container  string  `json:"container"`
	RarityBias float64 `json:"rarity_bias" binding:"gte=0"`
}

// Roll handles POST /api/loot/roll. Rolls the named drop table count times
// into the given container, or first-fit across the inventory when no
// container is named. Yield can be below count when rolls land on entries the
// target rejects. rarity_bias skews random picks towards rarer items.
func (h *LootHandler) Roll(c *gin.Context) {
	var req rollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	table := h.res.Table(req.Table)
	if table == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown drop table"})
		return
	}
	drops := h.vaults.Drops()
	if drops == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "loot disabled"})
		return
	}

	sess, err := h.vaults.Session(c.Request.Context(), mw.GetAccountID(c))
	if err != nil {
		h.logger.Error("load inventory session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	granted := 0
	unknown := false
	sess.Do(func(inv *container.Inventory) {
		if req.Container == "" {
			granted = drops.PopulateInventory(inv, table, req.Count, req.RarityBias)
			return
		}
		ct := inv.Container(req.Container)
		if ct == nil {
			unknown = true
			return
		}
		granted = drops.PopulateContainer(ct, table, req.Count, req.RarityBias)
	})
	if unknown {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown container"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":   req.Table,
		"rolls":   req.Count,
		"granted": granted,
	})
}
