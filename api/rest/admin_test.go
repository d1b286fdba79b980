package rest_test

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/itemvault/server/api/rest"
	"github.com/kasuganosora/itemvault/server/config"
	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/loot"
	"github.com/kasuganosora/itemvault/server/game/vault"
	mw "github.com/kasuganosora/itemvault/server/middleware"
	"github.com/kasuganosora/itemvault/server/model"
	"github.com/kasuganosora/itemvault/server/scheduler"
	"github.com/kasuganosora/itemvault/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAdminRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	_, pubsub := testutil.SetupTestCache(t)
	rl := testutil.SetupLoader(t)

	rng := rand.New(rand.NewSource(1))
	ops := container.NewService(rl, rng, zap.NewNop())
	drops := loot.NewService(rl, ops, rng, zap.NewNop())
	vaults := vault.NewManager(db, rl, ops, drops, pubsub, []string{"backpack"}, zap.NewNop())
	sched := scheduler.New(zap.NewNop())
	t.Cleanup(sched.Stop)

	h := rest.NewAdminHandler(db, vaults, sched, zap.NewNop())
	srv := config.ServerConfig{AdminKey: "sekrit"}

	r := gin.New()
	g := r.Group("/api/admin", mw.AdminAuth(srv))
	g.GET("/metrics", h.Metrics)
	g.POST("/grant", h.Grant)
	g.POST("/save", h.SaveAll)
	g.POST("/accounts/:id/ban", h.BanAccount)
	return r, db
}

func getWithKey(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Admin-Key", "sekrit")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuthRequired(t *testing.T) {
	r, _ := newAdminRouter(t)

	w := getJSON(r, "/api/admin/metrics", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(r, "/api/admin/grant", nil, "X-Admin-Key", "wrong")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	r := gin.New()
	r.GET("/api/admin/metrics", mw.AdminAuth(config.ServerConfig{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	w := getJSON(r, "/api/admin/metrics", "")
	assert.Equal(t, http.StatusForbidden, w.Code, "an empty admin key rejects even empty headers")
}

func TestAdminMetrics(t *testing.T) {
	r, db := newAdminRouter(t)
	require.NoError(t, db.Create(&model.Account{Username: "a", PasswordHash: "x"}).Error)

	w := getWithKey(r, "/api/admin/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["accounts"])
}

func TestAdminGrantAndSave(t *testing.T) {
	r, db := newAdminRouter(t)

	w := postJSON(r, "/api/admin/grant",
		map[string]interface{}{"account_id": 42, "definition": 2, "quantity": 5},
		"X-Admin-Key", "sekrit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), decode(t, w)["added"])

	w = postJSON(r, "/api/admin/save", nil, "X-Admin-Key", "sekrit")
	require.Equal(t, http.StatusOK, w.Code)

	var n int64
	db.Model(&model.InventoryRecord{}).Where("account_id = ?", 42).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestAdminBan(t *testing.T) {
	r, db := newAdminRouter(t)
	acc := model.Account{Username: "banme", PasswordHash: "x", Status: 1}
	require.NoError(t, db.Create(&acc).Error)

	w := postJSON(r, fmt.Sprintf("/api/admin/accounts/%d/ban", acc.ID), nil, "X-Admin-Key", "sekrit")
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Account
	require.NoError(t, db.First(&got, acc.ID).Error)
	assert.Equal(t, 0, got.Status)

	w = postJSON(r, "/api/admin/accounts/999/ban", nil, "X-Admin-Key", "sekrit")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
