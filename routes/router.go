package routes

import (
	"context"
	"net/http"
	"time"

	"polling-backend/cache"
	"polling-backend/config"
	"polling-backend/handlers"
	"polling-backend/logging"
	"polling-backend/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP server so main can drive graceful shutdown.
type Server struct {
	*http.Server
}

// SetupRouter configures the Gin engine and mounts all routes.
func SetupRouter(cfg *config.Config, pollH *handlers.PollHandler, voteH *handlers.VoteHandler, userH *handlers.UserHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handlers.RequestID())
	router.Use(handlers.RequestLogger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // restrict to the frontend origin in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.Use(handlers.RateLimitMiddleware(cfg))

		api.GET("/health", handlers.HealthCheck)
		api.GET("/status", handlers.SystemStatus)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", userH.Signup)
			auth.POST("/login", userH.Login)
		}

		users := api.Group("/users")
		{
			users.GET("/:id", userH.GetUser)
			users.PUT("/:id", userH.UpdateUser)
		}

		polls := api.Group("/polls")
		{
			polls.POST("", pollH.CreatePoll)
			polls.GET("", pollH.GetPolls)
			polls.GET("/my", pollH.GetMyPolls)
			polls.GET("/voted", pollH.GetVotedPolls)
			polls.GET("/:id", pollH.GetPoll)
			polls.PUT("/:id/close", pollH.ClosePoll)
			polls.PUT("/:id/expiry", pollH.UpdateExpiry)
			polls.DELETE("/:id", pollH.DeletePoll)

			polls.POST("/:id/vote", voteH.CastVote)
			polls.DELETE("/:id/vote", voteH.DeleteVote)
			polls.GET("/:id/results", voteH.GetResults)
		}
	}

	return router
}

// StartServer starts the HTTP server in its own goroutine.
func StartServer(cfg *config.Config, router *gin.Engine) *Server {
	addr := ":" + cfg.ServerPort

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	go func() {
		logging.Logger.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.WithError(err).Fatal("server failed")
		}
	}()

	return srv
}

// StartExpirySweeper periodically closes polls whose expiry has passed.
// When Redis is available a distributed lock keeps multiple instances
// from sweeping at once; lazy close-on-read covers the gap either way.
// The returned stop function cancels the loop.
func StartExpirySweeper(cfg *config.Config, polls service.PollService) func() {
	if cfg.SweepInterval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()

		lockSvc, _ := cache.NewLockService()

		sweep := func() {
			closed, err := polls.CloseExpired(ctx)
			if err != nil {
				logging.Logger.WithError(err).Warn("expiry sweep failed")
				return
			}
			if closed > 0 {
				logging.Logger.WithField("closed", closed).Info("expired polls closed")
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if lockSvc != nil {
					err := lockSvc.WithLock("poll:sweep", cfg.SweepInterval, func() error {
						sweep()
						return nil
					})
					if err != nil && err != cache.ErrLockNotAcquired {
						logging.Logger.WithError(err).Warn("sweep lock error")
					}
				} else {
					sweep()
				}
			}
		}
	}()

	return cancel
}
