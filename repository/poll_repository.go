package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"polling-backend/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateVote indicates the (poll, user) uniqueness constraint
	// rejected an insert. Both the losing side of a concurrent race and a
	// plain repeat cast end up here.
	ErrDuplicateVote = errors.New("duplicate vote")
)

// PollRepository defines data access for polls, options and votes.
type PollRepository interface {
	CreatePoll(ctx context.Context, poll *models.Poll) error
	GetPollByID(ctx context.Context, id uint) (*models.Poll, error)
	ListPolls(ctx context.Context) ([]*models.Poll, error)
	ListPollsByCreator(ctx context.Context, userID uint) ([]*models.Poll, error)
	ListPollsVotedBy(ctx context.Context, userID uint) ([]*models.Poll, error)
	SetClosed(ctx context.Context, pollID uint) (bool, error)
	UpdateExpiry(ctx context.Context, pollID uint, expiry time.Time) error
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
	DeletePoll(ctx context.Context, pollID uint) error

	GetOption(ctx context.Context, optionID uint) (*models.PollOption, error)

	CreateVote(ctx context.Context, vote *models.Vote) error
	HasUserVoted(ctx context.Context, pollID, userID uint) (bool, error)
	FindVote(ctx context.Context, pollID, userID uint) (*models.Vote, error)
	DeleteVote(ctx context.Context, voteID uint) error
	CountVotesByPoll(ctx context.Context, pollID uint) (int64, error)
	CountVotesByOption(ctx context.Context, pollID uint) (map[uint]int64, error)
}

// GormPollRepository implements PollRepository on top of gorm.
type GormPollRepository struct {
	db *gorm.DB
}

func NewGormPollRepository(db *gorm.DB) *GormPollRepository {
	return &GormPollRepository{db: db}
}

// CreatePoll persists a poll together with its options in one
// transaction; a partially created poll is never observable.
func (r *GormPollRepository) CreatePoll(ctx context.Context, poll *models.Poll) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(poll).Error
	})
}

func (r *GormPollRepository) GetPollByID(ctx context.Context, id uint) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("CreatedBy").
		First(&poll, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &poll, nil
}

func (r *GormPollRepository) ListPolls(ctx context.Context) ([]*models.Poll, error) {
	var polls []*models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("CreatedBy").
		Order("created_at desc").
		Find(&polls).Error
	return polls, err
}

func (r *GormPollRepository) ListPollsByCreator(ctx context.Context, userID uint) ([]*models.Poll, error) {
	var polls []*models.Poll
	err := r.db.WithContext(ctx).
		Where("created_by_id = ?", userID).
		Order("created_at desc").
		Find(&polls).Error
	return polls, err
}

func (r *GormPollRepository) ListPollsVotedBy(ctx context.Context, userID uint) ([]*models.Poll, error) {
	var polls []*models.Poll
	err := r.db.WithContext(ctx).
		Joins("JOIN votes ON votes.poll_id = polls.id").
		Where("votes.user_id = ?", userID).
		Order("polls.created_at desc").
		Find(&polls).Error
	return polls, err
}

// SetClosed flips the closed flag. The WHERE clause makes the transition
// conditional, so concurrent closers resolve at the storage layer: the
// return value reports whether this call performed the transition.
func (r *GormPollRepository) SetClosed(ctx context.Context, pollID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("id = ? AND closed = ?", pollID, false).
		Update("closed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateExpiry reschedules an open poll. A closed poll is never updated,
// even if the caller's view of it was stale.
func (r *GormPollRepository) UpdateExpiry(ctx context.Context, pollID uint, expiry time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("id = ? AND closed = ?", pollID, false).
		Update("expiry_time", expiry).Error
}

// CloseExpired flips the flag on every open poll whose expiry has passed
// and returns how many it closed.
func (r *GormPollRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("closed = ? AND expiry_time IS NOT NULL AND expiry_time < ?", false, now).
		Update("closed", true)
	return res.RowsAffected, res.Error
}

// DeletePoll removes the poll and its owned options and votes in one
// transaction.
func (r *GormPollRepository) DeletePoll(ctx context.Context, pollID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Poll{}, pollID).Error
	})
}

func (r *GormPollRepository) GetOption(ctx context.Context, optionID uint) (*models.PollOption, error) {
	var option models.PollOption
	err := r.db.WithContext(ctx).First(&option, optionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &option, nil
}

// CreateVote inserts a vote. The unique index on (poll_id, user_id) is
// the arbiter under concurrency; a rejected insert comes back as
// ErrDuplicateVote.
func (r *GormPollRepository) CreateVote(ctx context.Context, vote *models.Vote) error {
	err := r.db.WithContext(ctx).Create(vote).Error
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateVote
		}
		return err
	}
	return nil
}

func (r *GormPollRepository) HasUserVoted(ctx context.Context, pollID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormPollRepository) FindVote(ctx context.Context, pollID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vote, nil
}

func (r *GormPollRepository) DeleteVote(ctx context.Context, voteID uint) error {
	return r.db.WithContext(ctx).Delete(&models.Vote{}, voteID).Error
}

func (r *GormPollRepository) CountVotesByPoll(ctx context.Context, pollID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("poll_id = ?", pollID).
		Count(&count).Error
	return count, err
}

func (r *GormPollRepository) CountVotesByOption(ctx context.Context, pollID uint) (map[uint]int64, error) {
	type row struct {
		OptionID uint
		Count    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("option_id, count(*) as count").
		Where("poll_id = ?", pollID).
		Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.OptionID] = r.Count
	}
	return counts, nil
}

// isDuplicateKey matches translated gorm errors plus the raw driver
// messages, since TranslateError coverage differs between drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
