package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"

	"github.com/google/uuid"
)

type ReferralService struct {
	repo   ReferralRepository
	users  UserRepository
	events EventPublisher
}

func NewReferralService(repo ReferralRepository, users UserRepository, events EventPublisher) *ReferralService {
	return &ReferralService{
		repo:   repo,
		users:  users,
		events: events,
	}
}

// ApplyCode validates a referral code and records the pending edge. The
// referee welcome bonus is paid immediately; the referrer bonus waits for
// the referee's first completed task.
func (s *ReferralService) ApplyCode(ctx context.Context, userID int64, code string) (*model.ReferralTracking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrReferralCodeNotFound
	}

	referrer, err := s.users.GetUserByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReferralCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}

	if referrer.ID == userID {
		return nil, ErrSelfReferral
	}

	ref := &model.ReferralTracking{
		ID:            uuid.New(),
		ReferrerID:    referrer.ID,
		RefereeID:     userID,
		CodeUsed:      code,
		Status:        model.ReferralStatusPending,
		RefereePoints: RefereeWelcomeBonus,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.repo.CreateReferral(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyReferred) {
			return nil, ErrAlreadyReferred
		}
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}

	s.events.Publish(userID, model.Event{
		Type: model.EventPointsAwarded,
		Payload: map[string]any{
			"points": RefereeWelcomeBonus,
			"reason": "referral_welcome",
		},
		At: ref.CreatedAt,
	})

	return ref, nil
}

// CompleteForUser flips the user's pending referral edge, if any, and pays
// the referrer bonus. Called after every task completion; non-pending edges
// are left alone.
func (s *ReferralService) CompleteForUser(ctx context.Context, refereeID int64) error {
	ref, err := s.repo.GetReferralByReferee(ctx, refereeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get referral: %w", err)
	}
	if ref.Status != model.ReferralStatusPending {
		return nil
	}

	completedAt := time.Now().UTC()
	err = s.repo.CompleteReferral(ctx, refereeID, ReferrerBonus, completedAt)
	if err != nil {
		return fmt.Errorf("failed to complete referral: %w", err)
	}

	s.events.Publish(ref.ReferrerID, model.Event{
		Type: model.EventReferralCompleted,
		Payload: map[string]any{
			"referee_id": refereeID,
			"points":     ReferrerBonus,
		},
		At: completedAt,
	})

	return nil
}

func (s *ReferralService) ListReferrals(ctx context.Context, referrerID int64) ([]*model.RefereeSummary, error) {
	referees, err := s.repo.GetReferralsByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referees, nil
}

func (s *ReferralService) GetStats(ctx context.Context, referrerID int64) (*model.ReferralStats, error) {
	stats, err := s.repo.GetReferralStats(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral stats: %w", err)
	}
	return stats, nil
}
