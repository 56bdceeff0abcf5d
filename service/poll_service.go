package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"polling-backend/errs"
	"polling-backend/models"
	"polling-backend/repository"
)

// DefaultExpiry is applied when a poll is created without an explicit
// expiry time.
const DefaultExpiry = 7 * 24 * time.Hour

const maxQuestionLen = 500

// PollService owns the poll lifecycle: creation, the transition from
// open to closed (explicit or lazy on read), expiry rescheduling and
// the votes-exist deletion guard.
type PollService interface {
	CreatePoll(ctx context.Context, input CreatePollInput) (*PollView, error)
	GetPoll(ctx context.Context, pollID uint, callerID *uint) (*PollView, error)
	ClosePoll(ctx context.Context, pollID, callerID uint) (*PollView, error)
	UpdateExpiry(ctx context.Context, pollID, callerID uint, expiry *time.Time) (*PollView, error)
	DeletePoll(ctx context.Context, pollID, callerID uint) error
	ListAll(ctx context.Context) ([]*PollView, error)
	ListByCreator(ctx context.Context, userID uint) ([]*PollSummary, error)
	ListVotedByUser(ctx context.Context, userID uint) ([]*PollSummary, error)
	CloseExpired(ctx context.Context) (int64, error)
}

type pollService struct {
	polls repository.PollRepository
	users repository.UserRepository
	// now is swappable in tests.
	now func() time.Time
}

func NewPollService(polls repository.PollRepository, users repository.UserRepository) PollService {
	return &pollService{polls: polls, users: users, now: time.Now}
}

func (s *pollService) CreatePoll(ctx context.Context, input CreatePollInput) (*PollView, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, errs.Validation("Poll question is required")
	}
	if len(question) > maxQuestionLen {
		return nil, errs.Validation("Poll question must be at most %d characters", maxQuestionLen)
	}
	if len(input.Options) < 2 {
		return nil, errs.Validation("At least 2 options are required")
	}
	for _, text := range input.Options {
		if strings.TrimSpace(text) == "" {
			return nil, errs.Validation("Option text is required")
		}
	}

	if _, err := s.users.GetUserByID(ctx, input.CreatorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("User not found with id %d", input.CreatorID)
		}
		return nil, err
	}

	expiry := input.ExpiryTime
	if expiry == nil {
		t := s.now().Add(DefaultExpiry)
		expiry = &t
	}

	poll := &models.Poll{
		Question:    question,
		CreatedByID: input.CreatorID,
		ExpiryTime:  expiry,
		Closed:      false,
	}
	for _, text := range input.Options {
		poll.Options = append(poll.Options, models.PollOption{Text: text})
	}

	if err := s.polls.CreatePoll(ctx, poll); err != nil {
		return nil, err
	}

	return s.GetPoll(ctx, poll.ID, nil)
}

// GetPoll returns the poll view. Reading a poll whose expiry has passed
// transitions it to closed as a side effect; there is no background
// process this transition depends on.
func (s *pollService) GetPoll(ctx context.Context, pollID uint, callerID *uint) (*PollView, error) {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	view, err := s.buildView(ctx, poll)
	if err != nil {
		return nil, err
	}

	if callerID != nil {
		voted, err := s.polls.HasUserVoted(ctx, pollID, *callerID)
		if err != nil {
			return nil, err
		}
		view.HasVoted = &voted
	}

	return view, nil
}

func (s *pollService) ClosePoll(ctx context.Context, pollID, callerID uint) (*PollView, error) {
	poll, caller, err := s.loadForMutation(ctx, pollID, callerID)
	if err != nil {
		return nil, err
	}

	if !CanMutate(poll, caller) {
		return nil, errs.Authorization("Not authorized to close this poll")
	}

	if s.isClosedNow(poll) {
		return nil, errs.Business("Poll is already closed")
	}

	changed, err := s.polls.SetClosed(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !changed {
		// A concurrent closer won; same outcome for the caller.
		return nil, errs.Business("Poll is already closed")
	}

	return s.GetPoll(ctx, pollID, nil)
}

func (s *pollService) UpdateExpiry(ctx context.Context, pollID, callerID uint, expiry *time.Time) (*PollView, error) {
	poll, caller, err := s.loadForMutation(ctx, pollID, callerID)
	if err != nil {
		return nil, err
	}

	if !CanMutate(poll, caller) {
		return nil, errs.Authorization("Not authorized to update expiry")
	}

	// An expired-but-unflagged poll counts as closed here; rescheduling
	// must not resurrect it.
	if s.isClosedNow(poll) {
		return nil, errs.Business("Cannot update expiry for a closed poll")
	}

	if expiry == nil {
		return nil, errs.Business("Expiry time cannot be null")
	}
	if !expiry.After(s.now()) {
		return nil, errs.Business("Expiry time must be in the future")
	}

	if err := s.polls.UpdateExpiry(ctx, pollID, *expiry); err != nil {
		return nil, err
	}

	return s.GetPoll(ctx, pollID, nil)
}

func (s *pollService) DeletePoll(ctx context.Context, pollID, callerID uint) error {
	poll, caller, err := s.loadForMutation(ctx, pollID, callerID)
	if err != nil {
		return err
	}

	if !CanMutate(poll, caller) {
		return errs.Authorization("Not authorized to delete this poll")
	}

	count, err := s.polls.CountVotesByPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if count > 0 {
		return errs.Business("Cannot delete poll after votes are cast")
	}

	return s.polls.DeletePoll(ctx, pollID)
}

func (s *pollService) ListAll(ctx context.Context) ([]*PollView, error) {
	polls, err := s.polls.ListPolls(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*PollView, 0, len(polls))
	for _, poll := range polls {
		view, err := s.buildView(ctx, poll)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *pollService) ListByCreator(ctx context.Context, userID uint) ([]*PollSummary, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("User not found with id %d", userID)
		}
		return nil, err
	}

	polls, err := s.polls.ListPollsByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildSummaries(ctx, polls)
}

func (s *pollService) ListVotedByUser(ctx context.Context, userID uint) ([]*PollSummary, error) {
	polls, err := s.polls.ListPollsVotedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildSummaries(ctx, polls)
}

// CloseExpired closes every open poll whose expiry has passed. Used by
// the optional background sweeper; correctness never depends on it
// because every read and cast re-checks expiry.
func (s *pollService) CloseExpired(ctx context.Context) (int64, error) {
	return s.polls.CloseExpired(ctx, s.now())
}

// loadPoll fetches a poll and applies lazy expiry: past-expiry polls are
// persisted as closed before being returned.
func (s *pollService) loadPoll(ctx context.Context, pollID uint) (*models.Poll, error) {
	poll, err := s.polls.GetPollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("Poll not found with id %d", pollID)
		}
		return nil, err
	}

	if !poll.Closed && poll.ExpiryTime != nil && poll.ExpiryTime.Before(s.now()) {
		if _, err := s.polls.SetClosed(ctx, pollID); err != nil {
			return nil, err
		}
		poll.Closed = true
	}

	return poll, nil
}

func (s *pollService) loadForMutation(ctx context.Context, pollID, callerID uint) (*models.Poll, *models.User, error) {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return nil, nil, err
	}

	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, errs.NotFound("User not found with id %d", callerID)
		}
		return nil, nil, err
	}

	return poll, caller, nil
}

// isClosedNow treats the expiry timestamp as authoritative over the
// persisted flag, which may lag until the next read.
func (s *pollService) isClosedNow(poll *models.Poll) bool {
	if poll.Closed {
		return true
	}
	return poll.ExpiryTime != nil && poll.ExpiryTime.Before(s.now())
}

func (s *pollService) buildView(ctx context.Context, poll *models.Poll) (*PollView, error) {
	counts, err := s.polls.CountVotesByOption(ctx, poll.ID)
	if err != nil {
		return nil, err
	}

	view := &PollView{
		ID:         poll.ID,
		Question:   poll.Question,
		CreatedAt:  poll.CreatedAt,
		ExpiryTime: poll.ExpiryTime,
		Closed:     poll.Closed,
		Options:    make([]OptionView, 0, len(poll.Options)),
	}
	if poll.CreatedBy != nil {
		view.CreatedBy = poll.CreatedBy.Username
	}

	for _, option := range poll.Options {
		count := counts[option.ID]
		view.Options = append(view.Options, OptionView{
			ID:        option.ID,
			Text:      option.Text,
			VoteCount: count,
		})
		view.TotalVotes += count
	}

	return view, nil
}

func (s *pollService) buildSummaries(ctx context.Context, polls []*models.Poll) ([]*PollSummary, error) {
	summaries := make([]*PollSummary, 0, len(polls))
	for _, poll := range polls {
		count, err := s.polls.CountVotesByPoll(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &PollSummary{
			ID:         poll.ID,
			Question:   poll.Question,
			ExpiryTime: poll.ExpiryTime,
			Closed:     poll.Closed,
			CreatedAt:  poll.CreatedAt,
			VoteCount:  count,
		})
	}
	return summaries, nil
}
