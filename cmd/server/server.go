package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "kindred/backend/docs" // registers the swagger document

	"kindred/backend/internal/database"
	"kindred/backend/internal/handler"
	"kindred/backend/internal/logger"
	"kindred/backend/internal/relationship"
)

const shutdownTimeout = 10 * time.Second

func (a *app) migrate() error {
	db, err := database.Open(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	a.log.Info("database migrated successfully")
	return nil
}

func (a *app) serve() error {
	db, err := database.Open(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	sugar := a.log.Sugar()
	relationships := relationship.NewService(database.NewStore(db), sugar.Named("relationship"))
	h := handler.New(db, relationships, []byte(a.cfg.JWTSecret), sugar.Named("http"))

	if !a.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logger.GinMiddleware(a.log.Named("http")), gin.Recovery())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	h.RegisterRoutes(router.Group("/api/v1"))

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server is running", zap.String("addr", srv.Addr))
		a.log.Info(fmt.Sprintf("Swagger UI is available at http://localhost%s/swagger/index.html", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
