package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danateck/eco-file-system/internal/config"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
	"github.com/danateck/eco-file-system/internal/domain/services"
	"github.com/danateck/eco-file-system/internal/infrastructure/blob"
	"github.com/danateck/eco-file-system/internal/infrastructure/cache"
	"github.com/danateck/eco-file-system/internal/infrastructure/database"
	dbrepos "github.com/danateck/eco-file-system/internal/infrastructure/database/repositories"
	"github.com/danateck/eco-file-system/internal/infrastructure/extract"
	"github.com/danateck/eco-file-system/internal/infrastructure/localstore"
	"github.com/danateck/eco-file-system/internal/infrastructure/stream"
	"github.com/danateck/eco-file-system/internal/interfaces/handlers"
	"github.com/danateck/eco-file-system/pkg/logger"
)

func Run(cfg config.Config) error {
	store, err := localstore.NewBoltStore(cfg.LocalStore.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	redisClient, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	sessionRepo := cache.NewSessionRepository(redisClient)

	// The remote backend is optional: when disabled or unreachable at boot
	// the server runs local-only and sync operations no-op.
	var backend *repositories.Backend
	var userRepo repositories.UserRepository
	if cfg.Backend.Enabled {
		db, err := database.NewPostgresDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		feed, err := stream.NewFeed(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer feed.Close()

		blobs, err := blob.NewMinIOStorage(cfg.MinIO)
		if err != nil {
			return err
		}

		userRepo = dbrepos.NewUserRepository(db.DB())
		backend = &repositories.Backend{
			Docs:       dbrepos.NewDocumentStore(db.Pool()),
			Invites:    dbrepos.NewInviteStore(db.DB()),
			Folders:    dbrepos.NewFolderStore(db.Pool()),
			SharedDocs: dbrepos.NewSharedDocStore(db.Pool()),
			Blobs:      blobs,
			Feed:       feed,
			Pinger:     db,
		}
	} else {
		logger.Info("backend disabled, running local-only")
		userRepo = localstore.NewUserRepository(store)
	}

	syncSvc := services.NewSyncService(backend, store)
	docSvc := services.NewDocumentService(store, syncSvc)
	authSvc := services.NewAuthService(userRepo, sessionRepo, docSvc, cfg.Auth.TokenDuration)
	shareSvc := services.NewShareService(backend, store, docSvc)
	extractSvc := services.NewExtractService(extract.NewPDFExtractor(), nil)

	docSvc.OnOpen(shareSvc.OpenFor)
	docSvc.OnClose(shareSvc.StopWatches)

	authHandler := handlers.NewAuthHandler(authSvc)
	docHandler := handlers.NewDocumentHandler(docSvc, extractSvc, syncSvc)
	shareHandler := handlers.NewShareHandler(shareSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.HeadToGetMiddleware())
	r.Use(handlers.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/auth", authHandler.Login)
		api.DELETE("/auth", authHandler.Logout)

		authed := api.Group("", handlers.AuthMiddleware(authSvc))
		{
			authed.GET("/status", docHandler.Status)

			authed.POST("/docs/open", docHandler.Open)
			authed.GET("/docs", docHandler.List)
			authed.HEAD("/docs", docHandler.List)
			authed.POST("/docs", docHandler.Create)
			authed.GET("/docs/:id", docHandler.Get)
			authed.HEAD("/docs/:id", docHandler.Get)
			authed.GET("/docs/:id/file", docHandler.Download)
			authed.PUT("/docs/:id", docHandler.Update)
			authed.DELETE("/docs/:id", docHandler.Delete)
			authed.POST("/docs/:id/restore", docHandler.Restore)
			authed.POST("/docs/purge", docHandler.PurgeExpired)
			authed.POST("/docs/sync", docHandler.SyncToCloud)
			authed.POST("/docs/:id/share", shareHandler.ShareDocument)

			authed.POST("/folders", shareHandler.CreateFolder)
			authed.GET("/folders", shareHandler.ListFolders)
			authed.GET("/folders/:id/docs", shareHandler.FolderDocs)
			authed.GET("/folders/:id/members", shareHandler.FolderMembers)
			authed.POST("/folders/:id/reconcile", shareHandler.Reconcile)

			authed.POST("/invites", shareHandler.SendInvite)
			authed.GET("/invites", shareHandler.PendingInvites)
			authed.POST("/invites/:id/respond", shareHandler.RespondToInvite)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
