package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/itemvault/server/api/rest"
	"github.com/kasuganosora/itemvault/server/api/sse"
	"github.com/kasuganosora/itemvault/server/cache"
	"github.com/kasuganosora/itemvault/server/config"
	dbadapter "github.com/kasuganosora/itemvault/server/db"
	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/loot"
	"github.com/kasuganosora/itemvault/server/game/vault"
	mw "github.com/kasuganosora/itemvault/server/middleware"
	"github.com/kasuganosora/itemvault/server/model"
	"github.com/kasuganosora/itemvault/server/resource"
	"github.com/kasuganosora/itemvault/server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Item catalog ----
	res := resource.NewLoader(cfg.Data.Path)
	if err := res.Load(); err != nil {
		log.Fatalf("resource: %v", err)
	}
	logger.Info("Item catalog loaded",
		zap.Int("items", len(res.Definitions)),
		zap.Int("templates", len(res.Templates)),
	)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Engine services ----
	seed := cfg.Game.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	ops := container.NewService(res, rng, logger)
	drops := loot.NewService(res, ops, rng, logger)
	vaults := vault.NewManager(db, res, ops, drops, pubsub, cfg.Game.DefaultContainers, logger)

	// ---- Periodic scheduler tasks ----
	sched.AddTicker("auto_save", time.Duration(cfg.Game.SaveIntervalS)*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		vaults.SaveAll(ctx)
	})

	// ---- Gin HTTP server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security, vaults)
	catalogH := apirest.NewCatalogHandler(res)
	invH := apirest.NewInventoryHandler(vaults, logger)
	lootH := apirest.NewLootHandler(vaults, res, logger)
	adminH := apirest.NewAdminHandler(db, vaults, sched, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		catalogG := api.Group("/catalog")
		catalogG.GET("/items", catalogH.ListItems)
		catalogG.GET("/items/:id", catalogH.GetItem)
		catalogG.GET("/categories", catalogH.ListCategories)

		invG := api.Group("/inventory")
		invG.Use(mw.Auth(cfg.Security, c))
		invG.GET("", invH.List)
		invG.POST("/items", invH.AddItem)
		invG.DELETE("/items", invH.RemoveItem)
		invG.GET("/count", invH.Count)
		invG.POST("/containers/:name/sort", invH.Sort)
		invG.POST("/save", invH.Save)

		lootG := api.Group("/loot")
		lootG.Use(mw.Auth(cfg.Security, c))
		lootG.POST("/roll", lootH.Roll)

		adminG := api.Group("/admin")
		adminG.Use(mw.AdminAuth(cfg.Server))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.POST("/grant", adminH.Grant)
		adminG.POST("/save", adminH.SaveAll)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
	}

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, c, cfg.Security, logger)
	r.GET("/sse", sseH.ServeSSE)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
