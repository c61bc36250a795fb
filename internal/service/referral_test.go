package service

import (
	"context"
	"testing"
	"time"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"
	"bountyhunter/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReferralService_ApplyCode(t *testing.T) {
	const (
		refereeID  = int64(2)
		referrerID = int64(1)
	)

	tests := []struct {
		name          string
		code          string
		mockSetup     func(repo *mocks.MockReferralRepository, users *mocks.MockUserRepository, events *mocks.MockEventPublisher)
		expectedError error
	}{
		{
			name: "Unknown code",
			code: "NOSUCHCD",
			mockSetup: func(repo *mocks.MockReferralRepository, users *mocks.MockUserRepository, events *mocks.MockEventPublisher) {
				users.On("GetUserByReferralCode", mock.Anything, "NOSUCHCD").
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrReferralCodeNotFound,
		},
		{
			name:          "Empty code",
			code:          "   ",
			mockSetup:     func(repo *mocks.MockReferralRepository, users *mocks.MockUserRepository, events *mocks.MockEventPublisher) {},
			expectedError: ErrReferralCodeNotFound,
		},
		{
			name: "Self referral",
			code: "SELFCODE",
			mockSetup: func(repo *mocks.MockReferralRepository, users *mocks.MockUserRepository, events *mocks.MockEventPublisher) {
				users.On("GetUserByReferralCode", mock.Anything, "SELFCODE").
					Return(&model.User{ID: refereeID, ReferralCode: "SELFCODE"}, nil)
			},
			expectedError: ErrSelfReferral,
		},
		{
			name: "Already referred",
			code: "GOODCODE",
			mockSetup: func(repo *mocks.MockReferralRepository, users *mocks.MockUserRepository, events *mocks.MockEventPublisher) {
				users.On("GetUserByReferralCode", mock.Anything, "GOODCODE").
					Return(&model.User{ID: referrerID, ReferralCode: "GOODCODE"}, nil)
				repo.On("CreateReferral", mock.Anything, mock.Anything).
					Return(repository.ErrAlreadyReferred)
			},
			expectedError: ErrAlreadyReferred,
		},
		{
			name: "Code is uppercased before lookup",
			code: "  goodcode ",
			mockSetup: func(repo *mocks.MockReferralRepository, users *mocks.MockUserRepository, events *mocks.MockEventPublisher) {
				users.On("GetUserByReferralCode", mock.Anything, "GOODCODE").
					Return(&model.User{ID: referrerID, ReferralCode: "GOODCODE"}, nil)
				repo.On("CreateReferral", mock.Anything, mock.MatchedBy(func(ref *model.ReferralTracking) bool {
					return ref.ReferrerID == referrerID &&
						ref.RefereeID == refereeID &&
						ref.Status == model.ReferralStatusPending &&
						ref.RefereePoints == RefereeWelcomeBonus
				})).Return(nil)
				events.On("Publish", refereeID, mock.MatchedBy(func(e model.Event) bool {
					return e.Type == model.EventPointsAwarded
				})).Return()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockReferralRepository{}
			users := &mocks.MockUserRepository{}
			events := &mocks.MockEventPublisher{}
			tt.mockSetup(repo, users, events)

			svc := NewReferralService(repo, users, events)
			ref, err := svc.ApplyCode(context.Background(), refereeID, tt.code)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, model.ReferralStatusPending, ref.Status)
			assert.Equal(t, "GOODCODE", ref.CodeUsed)
			repo.AssertExpectations(t)
			events.AssertExpectations(t)
		})
	}
}

func TestReferralService_CompleteForUser(t *testing.T) {
	const (
		refereeID  = int64(2)
		referrerID = int64(1)
	)

	t.Run("No referral is a no-op", func(t *testing.T) {
		repo := &mocks.MockReferralRepository{}
		users := &mocks.MockUserRepository{}
		events := &mocks.MockEventPublisher{}
		repo.On("GetReferralByReferee", mock.Anything, refereeID).
			Return(nil, repository.ErrNotFound)

		svc := NewReferralService(repo, users, events)
		assert.NoError(t, svc.CompleteForUser(context.Background(), refereeID))
		repo.AssertNotCalled(t, "CompleteReferral", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Completed referral is not paid twice", func(t *testing.T) {
		repo := &mocks.MockReferralRepository{}
		users := &mocks.MockUserRepository{}
		events := &mocks.MockEventPublisher{}
		completedAt := time.Now().UTC()
		repo.On("GetReferralByReferee", mock.Anything, refereeID).
			Return(&model.ReferralTracking{
				ReferrerID:  referrerID,
				RefereeID:   refereeID,
				Status:      model.ReferralStatusCompleted,
				CompletedAt: &completedAt,
			}, nil)

		svc := NewReferralService(repo, users, events)
		assert.NoError(t, svc.CompleteForUser(context.Background(), refereeID))
		repo.AssertNotCalled(t, "CompleteReferral", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Pending referral pays the referrer", func(t *testing.T) {
		repo := &mocks.MockReferralRepository{}
		users := &mocks.MockUserRepository{}
		events := &mocks.MockEventPublisher{}
		repo.On("GetReferralByReferee", mock.Anything, refereeID).
			Return(&model.ReferralTracking{
				ReferrerID: referrerID,
				RefereeID:  refereeID,
				Status:     model.ReferralStatusPending,
			}, nil)
		repo.On("CompleteReferral", mock.Anything, refereeID, ReferrerBonus, mock.Anything).
			Return(nil)
		events.On("Publish", referrerID, mock.MatchedBy(func(e model.Event) bool {
			return e.Type == model.EventReferralCompleted
		})).Return()

		svc := NewReferralService(repo, users, events)
		assert.NoError(t, svc.CompleteForUser(context.Background(), refereeID))
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})
}
