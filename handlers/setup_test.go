package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"polling-backend/database"
	"polling-backend/models"
	"polling-backend/repository"
	"polling-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestEnvironment wires the full handler stack against an in-memory
// SQLite database and returns the router ready for httptest traffic.
func setupTestEnvironment(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	database.DB = db
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	pollRepo := repository.NewGormPollRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	pollH := NewPollHandler(service.NewPollService(pollRepo, userRepo))
	voteH := NewVoteHandler(service.NewVoteService(pollRepo, userRepo))
	userH := NewUserHandler(service.NewUserService(userRepo))

	router := gin.New()
	router.Use(RequestID())

	api := router.Group("/api")
	{
		api.GET("/health", HealthCheck)
		api.GET("/status", SystemStatus)

		api.POST("/auth/signup", userH.Signup)
		api.POST("/auth/login", userH.Login)
		api.GET("/users/:id", userH.GetUser)
		api.PUT("/users/:id", userH.UpdateUser)

		api.POST("/polls", pollH.CreatePoll)
		api.GET("/polls", pollH.GetPolls)
		api.GET("/polls/my", pollH.GetMyPolls)
		api.GET("/polls/voted", pollH.GetVotedPolls)
		api.GET("/polls/:id", pollH.GetPoll)
		api.PUT("/polls/:id/close", pollH.ClosePoll)
		api.PUT("/polls/:id/expiry", pollH.UpdateExpiry)
		api.DELETE("/polls/:id", pollH.DeletePoll)
		api.POST("/polls/:id/vote", voteH.CastVote)
		api.DELETE("/polls/:id/vote", voteH.DeleteVote)
		api.GET("/polls/:id/results", voteH.GetResults)
	}

	return router, db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPoll(t *testing.T, db *gorm.DB, creator *models.User, question string, expiry time.Time, options ...string) *models.Poll {
	t.Helper()
	poll := &models.Poll{
		Question:    question,
		CreatedByID: creator.ID,
		ExpiryTime:  &expiry,
	}
	for _, text := range options {
		poll.Options = append(poll.Options, models.PollOption{Text: text})
	}
	require.NoError(t, db.Create(poll).Error)
	return poll
}

// doJSON performs a request with a JSON body and returns the recorder.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
