package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"romhub/internal/auth"
	"romhub/internal/console"
	"romhub/internal/game"
	"romhub/internal/importer"
	"romhub/internal/settings"
	synchub "romhub/internal/sync"
	"romhub/pkg/database"
	"romhub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db, err := database.OpenMigrated(cfg)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer db.Close()

	srvCfg := utils.LoadServerConfig()
	authCfg := utils.LoadAuthConfig()
	if authCfg.AdminPasswordHash == "" {
		log.Println("ROMHUB_ADMIN_PASSWORD_HASH not set; admin routes answer 503")
	}
	if authCfg.SecretGenerated {
		log.Println("ROMHUB_JWT_SECRET not set; using a random secret, tokens end with this process")
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start TCP sync first (so you notice binding errors early)
	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(srvCfg.SyncAddr, hub)
	if err := tcpSrv.Listen(); err != nil {
		log.Fatalf("tcp sync listen failed: %v", err)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authHandler := auth.NewHandler(tokenSvc, authCfg.AdminPasswordHash)
	authHandler.RegisterRoutes(router.Group("/auth"))
	requireAdmin := authHandler.RequireAdmin()

	// Catalog (public reads)
	consoleRepo := console.NewRepo(db)
	gameRepo := game.NewRepo(db)
	consoleHandler := console.NewHandler(consoleRepo, gameRepo)
	consoleHandler.RegisterRoutes(router.Group("/consoles"))
	consoleHandler.RegisterProtected(router.Group("/consoles", requireAdmin))
	game.NewHandler(gameRepo).RegisterRoutes(router.Group(""))

	// Imports (protected)
	im := importer.New(db, consoleRepo, log.Default())
	im.Events = hub
	importer.NewHandler(im).RegisterRoutes(router.Group("/imports", requireAdmin))

	// Settings
	abbrs, err := consoleRepo.Abbreviations(context.Background())
	if err != nil {
		log.Fatalf("load consoles failed: %v", err)
	}
	store, err := settings.Load(srvCfg.SettingsPath, abbrs)
	if err != nil {
		log.Fatalf("load settings failed: %v", err)
	}
	settingsHandler := settings.NewHandler(store)
	settingsHandler.RegisterRoutes(router.Group("/settings"))
	settingsHandler.RegisterProtected(router.Group("/settings", requireAdmin))

	httpSrv := &http.Server{
		Addr:    srvCfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Serve(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
