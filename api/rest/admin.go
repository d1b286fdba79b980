package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/item"
	"github.com/kasuganosora/itemvault/server/game/vault"
	"github.com/kasuganosora/itemvault/server/model"
	"github.com/kasuganosora/itemvault/server/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by the AdminAuth middleware.
type AdminHandler struct {
	db     *gorm.DB
	vaults *vault.Manager
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, vaults *vault.Manager, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, vaults: vaults, sched: sched, logger: logger}
}

// Metrics returns server health metrics.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	var accounts, inventories int64
	h.db.Model(&model.Account{}).Count(&accounts)
	h.db.Model(&model.InventoryRecord{}).Count(&inventories)
	c.JSON(http.StatusOK, gin.H{
		"accounts":        accounts,
		"inventories":     inventories,
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

type grantRequest struct {
	AccountID  int64 `json:"account_id" binding:"required,gt=0"`
	Definition int   `json:"definition" binding:"required,gt=0"`
	Quantity   int   `json:"quantity" binding:"required,gt=0"`
}

// Grant adds items to any account's inventory, bypassing ownership but not
// admission. POST /api/admin/grant
func (h *AdminHandler) Grant(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.vaults.Session(c.Request.Context(), req.AccountID)
	if err != nil {
		h.logger.Error("load inventory session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	var added int
	var reason string
	ops := h.vaults.Ops()
	sess.Do(func(inv *container.Inventory) {
		added, reason = ops.AddByIDToInventory(inv, item.DefinitionID(req.Definition), req.Quantity)
	})
	h.logger.Info("admin grant",
		zap.Int64("account", req.AccountID),
		zap.Int("definition", req.Definition),
		zap.Int("added", added),
	)
	c.JSON(http.StatusOK, gin.H{"added": added, "reason": reason})
}

// SaveAll persists every dirty live session immediately.
// POST /api/admin/save
func (h *AdminHandler) SaveAll(c *gin.Context) {
	h.vaults.SaveAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// BanAccount bans or unbans an account.
// POST /api/admin/accounts/:id/ban?unban=1
func (h *AdminHandler) BanAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	status := 0
	if c.Query("unban") == "1" {
		status = 1
	}
	res := h.db.Model(&model.Account{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	h.logger.Info("admin account status change", zap.Int64("account", id), zap.Int("status", status))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
