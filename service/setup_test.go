package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"polling-backend/database"
	"polling-backend/models"
	"polling-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a uniquely named in-memory SQLite database so tests
// never share state. The name keeps the shared-cache database alive for
// every connection gorm opens from its pool.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type testEnv struct {
	db    *gorm.DB
	polls repository.PollRepository
	users repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	return &testEnv{
		db:    db,
		polls: repository.NewGormPollRepository(db),
		users: repository.NewGormUserRepository(db),
	}
}

func (e *testEnv) pollService() *pollService {
	return &pollService{polls: e.polls, users: e.users, now: time.Now}
}

func (e *testEnv) voteService() *voteService {
	return &voteService{polls: e.polls, users: e.users, now: time.Now}
}

func (e *testEnv) createUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// createPoll seeds a poll with the given options directly through the
// repository.
func (e *testEnv) createPoll(t *testing.T, creator *models.User, question string, expiry *time.Time, options ...string) *models.Poll {
	t.Helper()
	poll := &models.Poll{
		Question:    question,
		CreatedByID: creator.ID,
		ExpiryTime:  expiry,
	}
	for _, text := range options {
		poll.Options = append(poll.Options, models.PollOption{Text: text})
	}
	require.NoError(t, e.polls.CreatePoll(context.Background(), poll))
	return poll
}

func timePtr(t time.Time) *time.Time { return &t }
