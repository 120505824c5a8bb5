package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/despensa-app/despensa/config"
	"github.com/despensa-app/despensa/internal/adminapi"
	"github.com/despensa-app/despensa/internal/app"
)

var (
	confFile = flag.String("c", "despensa.yml", "config file")
	showVer  = flag.Bool("v", false, "show version")
)

var version = "dev"

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version)
		return
	}

	cfg := config.LoadConfig(*confFile)
	application := app.NewApplication(cfg)
	if err := application.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "init failed:", err)
		os.Exit(1)
	}
	defer application.Release()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	adminapi.NewHandler(application.Service()).RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)

	g.Go(func() error {
		zap.L().Info("despensa listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
