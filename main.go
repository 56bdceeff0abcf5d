package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"polling-backend/cache"
	"polling-backend/config"
	"polling-backend/database"
	"polling-backend/handlers"
	"polling-backend/logging"
	"polling-backend/repository"
	"polling-backend/routes"
	"polling-backend/service"
)

func main() {
	cfg := config.Load()

	if err := database.InitDB(cfg); err != nil {
		logging.Logger.WithError(err).Fatal("database initialization failed")
	}
	if err := database.Migrate(database.DB); err != nil {
		logging.Logger.WithError(err).Fatal("database migration failed")
	}

	if err := cache.InitRedis(cfg); err != nil {
		if err == cache.ErrRedisNotAvailable {
			logging.Logger.Info("redis not configured, distributed features disabled")
		} else {
			logging.Logger.WithError(err).Warn("redis connection failed, continuing without it")
		}
	}

	pollRepo := repository.NewGormPollRepository(database.DB)
	userRepo := repository.NewGormUserRepository(database.DB)

	pollSvc := service.NewPollService(pollRepo, userRepo)
	voteSvc := service.NewVoteService(pollRepo, userRepo)
	userSvc := service.NewUserService(userRepo)

	pollH := handlers.NewPollHandler(pollSvc)
	voteH := handlers.NewVoteHandler(voteSvc)
	userH := handlers.NewUserHandler(userSvc)

	router := routes.SetupRouter(cfg, pollH, voteH, userH)
	srv := routes.StartServer(cfg, router)
	stopSweeper := routes.StartExpirySweeper(cfg, pollSvc)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("shutting down")

	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.WithError(err).Error("server shutdown error")
	}

	cache.CloseRedis()
	if err := database.CloseDB(); err != nil {
		logging.Logger.WithError(err).Error("database close error")
	}
	logging.Logger.Info("stopped")
}
