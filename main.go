// File: cosecha/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosecha/config"
	"cosecha/database"
	collectionRepo "cosecha/database/repository/collection"
	lotRepo "cosecha/database/repository/lot"
	treeRepo "cosecha/database/repository/tree"
	userRepoPkg "cosecha/database/repository/user"
	"cosecha/handlers"
	"cosecha/middleware"
	"cosecha/routes"
	"cosecha/services/capability"
	"cosecha/services/harvest"
	"cosecha/services/identity"
	"cosecha/services/notification"
	"cosecha/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	collections := collectionRepo.NewMongoCollectionRepo()
	trees := treeRepo.NewMongoTreeRepo()
	lots := lotRepo.NewMongoLotRepo()
	users := userRepoPkg.NewMongoUserRepo()

	// resolvers.
	capabilityResolver := &capability.DefaultResolver{
		Users: users,
		Cache: utils.GetCapabilityCacheClient(),
	}
	identityResolver := &identity.DefaultResolver{
		Users: users,
		Cache: utils.GetIdentityCacheClient(),
	}

	// services.
	notificationService, err := notification.NewDefaultNotificationService(
		capabilityResolver, users, notification.FCMPusher{},
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	harvestService := &harvest.DefaultHarvestService{
		Records:    collections,
		Trees:      trees,
		Lots:       lots,
		Capability: capabilityResolver,
		Identity:   identityResolver,
		Notifier:   notificationService,
	}

	harvestHandler := handlers.NewHarvestHandler(harvestService, trees, collections, identityResolver, logger)
	lotHandler := handlers.NewLotHandler(lots)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Capability: capabilityResolver,

		SubmitCollectionHandler:  harvestHandler.SubmitCollectionHandler,
		ApproveCollectionHandler: harvestHandler.ApproveCollectionHandler,
		RejectCollectionHandler:  harvestHandler.RejectCollectionHandler,

		LotSummaryHandler: harvestHandler.LotSummaryHandler,
		LotStreamHandler:  harvestHandler.LotStreamHandler,

		GetLotHandler:                 lotHandler.GetLotHandler,
		UpdateLotStatusHandler:        lotHandler.UpdateLotStatusHandler,
		UpdateLotCollaboratorsHandler: lotHandler.UpdateLotCollaboratorsHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	// Let in-flight notification fan-out drain before exiting.
	notificationService.Wait()

	logger.Sugar().Info("main: server stopped gracefully")
}
