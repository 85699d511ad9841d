package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookmap/internal/catalog"
	"bookmap/internal/facet"
	"bookmap/internal/grpcserver"
	"bookmap/internal/lookup"
	"bookmap/internal/lookupcache"
	"bookmap/internal/middleware"
	"bookmap/internal/provider"
	"bookmap/internal/reconcile"
	synchub "bookmap/internal/sync"
	"bookmap/pkg/database"
	"bookmap/pkg/utils"
)

func main() {
	configPath := flag.String("config", "bookmap.json5", "config file (json5)")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	priority, err := catalog.ParsePriority(cfg.MergePriority)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	// Catalog
	store := catalog.NewStore(
		catalog.NewRemoteSource(cfg.CatalogURL),
		&catalog.SnapshotSource{Path: cfg.SnapshotPath},
		priority,
	)
	registrar := catalog.NewRegistrar(cfg.CatalogURL)

	// Live events
	hub := synchub.NewHub()
	tcpSrv := synchub.NewServer(cfg.SyncAddr, hub)

	// Bibliographic providers
	retailer := provider.NewRetailer(cfg.RetailerBaseURL, cfg.RetailerTTBKey)
	cache := lookupcache.NewRepo(db)
	lookupHandler := &lookup.Handler{
		Resolver: reconcile.New(retailer),
		Search:   provider.NewXMLSearch(cfg.RetailerBaseURL, cfg.RetailerTTBKey),
		Library:  provider.NewNationalLibrary(cfg.LibraryBaseURL, cfg.SeojiCertKey, cfg.KolisnetAPIKey),
		Cache:    cache,
		CacheTTL: cfg.LookupCacheTTL(),
	}

	grpcSrv := grpcserver.NewServer()

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})
	router.Use(middleware.RequestID())

	router.GET("/ws", synchub.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		loadedAt := store.LoadedAt()
		body := gin.H{"books": len(store.CurrentCollection()), "loaded_at": loadedAt}
		if err := db.PingContext(ctx); err != nil {
			body["status"] = "not_ready"
			body["db_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		if loadedAt.IsZero() {
			body["status"] = "not_ready"
			body["catalog"] = "loading"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})

	router.GET("/debug", func(c *gin.Context) {
		cached, err := cache.Count(c.Request.Context())
		if err != nil {
			log.Printf("[debug] cache count: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{
			"db":             dbCfg.Path,
			"books":          len(store.CurrentCollection()),
			"cached_lookups": cached,
			"sync":           hub.Stats(),
			"process":        processStats(c.Request.Context()),
		})
	})

	catalog.NewHandler(store, registrar, hub).RegisterRoutes(router.Group("/books"))
	facet.NewHandler(store).RegisterRoutes(router.Group(""))
	lookupHandler.RegisterRoutes(router.Group("/api"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := store.Load(loadCtx); err != nil {
			log.Printf("initial catalog load failed: %v", err)
			return
		}
		grpcSrv.SetServing(true)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	grpcLn, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("grpc listen failed: %v", err)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := grpcSrv.Serve(grpcLn); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", cfg.HTTPAddr)
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
	grpcSrv.SetServing(false)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	grpcSrv.Stop()
	hub.Close()

	wg.Wait()
	log.Println("servers stopped")
}
