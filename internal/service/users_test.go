package service

import (
	"context"
	"strings"
	"testing"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"
	"bountyhunter/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testWallet = "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b"

func TestUserService_Authenticate(t *testing.T) {
	t.Run("Existing user is touched, not created", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		events := &mocks.MockEventPublisher{}
		repo.On("GetUserByWallet", mock.Anything, testWallet).
			Return(&model.User{ID: 9, WalletAddress: testWallet, ReferralCode: "ABCD2345"}, nil)
		repo.On("TouchLastSeen", mock.Anything, int64(9), mock.Anything).Return(nil)

		svc := NewUserService(repo, events)
		user, created, err := svc.Authenticate(context.Background(), testWallet)

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(9), user.ID)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("First sight creates a user with code and username", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		events := &mocks.MockEventPublisher{}
		repo.On("GetUserByWallet", mock.Anything, testWallet).
			Return(nil, repository.ErrNotFound)
		repo.On("GetUserByReferralCode", mock.Anything, mock.Anything).
			Return(nil, repository.ErrNotFound)
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.WalletAddress == testWallet &&
				len(u.ReferralCode) == referralCodeLength &&
				u.Username == "hunter_"+strings.ToLower(u.ReferralCode) &&
				u.Points == 0
		})).Return(nil)

		svc := NewUserService(repo, events)
		user, created, err := svc.Authenticate(context.Background(), testWallet)

		assert.NoError(t, err)
		assert.True(t, created)
		assert.Len(t, user.ReferralCode, referralCodeLength)
		for _, r := range user.ReferralCode {
			assert.Contains(t, codeAlphabet, string(r))
		}
		repo.AssertExpectations(t)
	})

	t.Run("Taken referral code on insert retries with a fresh one", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		events := &mocks.MockEventPublisher{}
		repo.On("GetUserByWallet", mock.Anything, testWallet).
			Return(nil, repository.ErrNotFound)
		repo.On("GetUserByReferralCode", mock.Anything, mock.Anything).
			Return(nil, repository.ErrNotFound)
		repo.On("CreateUser", mock.Anything, mock.Anything).
			Return(repository.ErrReferralCodeTaken).Once()
		repo.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil)

		svc := NewUserService(repo, events)
		user, created, err := svc.Authenticate(context.Background(), testWallet)

		assert.NoError(t, err)
		assert.True(t, created)
		assert.Len(t, user.ReferralCode, referralCodeLength)
		repo.AssertNumberOfCalls(t, "CreateUser", 2)
	})
}

func TestUserService_UpdateUsername(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		expectedError error
	}{
		{name: "Too short", username: "ab", expectedError: ErrInvalidUsername},
		{name: "Illegal characters", username: "bad name!", expectedError: ErrInvalidUsername},
		{name: "Valid", username: "degen_hunter42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockUserRepository{}
			events := &mocks.MockEventPublisher{}
			if tt.expectedError == nil {
				repo.On("UpdateUsername", mock.Anything, int64(1), tt.username).Return(nil)
			}

			svc := NewUserService(repo, events)
			err := svc.UpdateUsername(context.Background(), 1, tt.username)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				repo.AssertNotCalled(t, "UpdateUsername", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
