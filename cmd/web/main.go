package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minaorangina/seashooter/config"
	"github.com/minaorangina/seashooter/server"
	"github.com/minaorangina/seashooter/store"
	"go.uber.org/zap"
)

const shutdownWait = 5 * time.Second

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal(err.Error())
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer logger.Sync()

	s := server.NewServer(store.NewInMemoryGameStore(), logger, cfg.AllowedOrigins...)
	s.Addr = cfg.Addr

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
