package main

import (
	"bitwise74/file-drop/app"
	"bitwise74/file-drop/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	if err := config.Setup(); err != nil {
		panic(err)
	}

	if err := config.SetupLogger(); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	d, err := app.NewDeps()
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.CleanupOnStart() {
		if _, err := d.Cleanup.RunOnce(ctx); err != nil {
			zap.L().Error("Startup cleanup failed", zap.Error(err))
		}
	}

	d.Cleanup.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", v.GetInt("host.port")),
		Handler:           app.NewRouter(d, app.RouterConfigFromViper()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down server gracefully", zap.Error(err))
	}

	if err := d.Cleanup.Stop(shutdownCtx); err != nil {
		zap.L().Error("Cleanup job did not stop in time", zap.Error(err))
	}
}
