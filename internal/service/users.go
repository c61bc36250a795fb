package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"
)

// referral codes skip 0/O/1/I to keep them typeable off a screenshot
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	referralCodeLength = 8
	codeGenAttempts    = 5
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

type UserService struct {
	repo   UserRepository
	events EventPublisher
}

func NewUserService(repo UserRepository, events EventPublisher) *UserService {
	return &UserService{
		repo:   repo,
		events: events,
	}
}

// Authenticate resolves a wallet address to a user record, creating one on
// first sight. The bool reports whether the user was created.
func (s *UserService) Authenticate(ctx context.Context, walletAddress string) (*model.User, bool, error) {
	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if err == nil {
		now := time.Now().UTC()
		if err := s.repo.TouchLastSeen(ctx, user.ID, now); err != nil {
			return nil, false, fmt.Errorf("failed to update last seen: %w", err)
		}
		user.LastSeenAt = now
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by wallet: %w", err)
	}

	user, err = s.createUser(ctx, walletAddress)
	if err != nil {
		return nil, false, err
	}

	return user, true, nil
}

func (s *UserService) createUser(ctx context.Context, walletAddress string) (*model.User, error) {
	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := s.freeReferralCode(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		user := &model.User{
			WalletAddress: walletAddress,
			Username:      "hunter_" + strings.ToLower(code),
			ReferralCode:  code,
			CreatedAt:     now,
			LastSeenAt:    now,
		}

		err = s.repo.CreateUser(ctx, user)
		if errors.Is(err, repository.ErrReferralCodeTaken) {
			// lost the race on the unique index, try a fresh code
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		return user, nil
	}

	return nil, fmt.Errorf("failed to create user after %d referral code attempts", codeGenAttempts)
}

func (s *UserService) freeReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}

		_, err = s.repo.GetUserByReferralCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check referral code: %w", err)
		}
	}

	return "", fmt.Errorf("failed to generate a free referral code after %d attempts", codeGenAttempts)
}

func generateReferralCode() (string, error) {
	code := make([]byte, referralCodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by wallet: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateUsername(ctx context.Context, userID int64, username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}

	err := s.repo.UpdateUsername(ctx, userID, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update username: %w", err)
	}
	return nil
}

func (s *UserService) AwardPoints(ctx context.Context, userID int64, points int) error {
	err := s.repo.UpdateUserPoints(ctx, userID, points)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to award points: %w", err)
	}

	s.events.Publish(userID, model.Event{
		Type: model.EventPointsAwarded,
		Payload: map[string]any{
			"points": points,
			"reason": "manual",
		},
		At: time.Now().UTC(),
	})

	return nil
}

func (s *UserService) GetCompletedTaskIDs(ctx context.Context, userID int64) ([]string, error) {
	taskIDs, err := s.repo.GetCompletedTaskIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}
	return taskIDs, nil
}
