package service

import (
	"context"
	"testing"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"
	"bountyhunter/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSocialService_ConnectX(t *testing.T) {
	const userID = int64(5)

	tests := []struct {
		name           string
		handle         string
		mockSetup      func(repo *mocks.MockSocialRepository, tasks *mocks.MockTaskCompleter)
		expectedError  error
		expectedHandle string
		wantErr        bool
	}{
		{
			name:    "Empty handle",
			handle:  "",
			wantErr: true,
			mockSetup: func(repo *mocks.MockSocialRepository, tasks *mocks.MockTaskCompleter) {
			},
		},
		{
			name:    "Handle too long",
			handle:  "this_handle_is_way_too_long",
			wantErr: true,
			mockSetup: func(repo *mocks.MockSocialRepository, tasks *mocks.MockTaskCompleter) {
			},
		},
		{
			name:   "Leading @ is stripped",
			handle: "@defi_master",
			mockSetup: func(repo *mocks.MockSocialRepository, tasks *mocks.MockTaskCompleter) {
				repo.On("UpsertConnection", mock.Anything, mock.MatchedBy(func(conn *model.SocialConnection) bool {
					return conn.Platform == model.PlatformX &&
						conn.PlatformUserID == "defi_master" &&
						conn.PlatformUsername == "defi_master" &&
						conn.IsActive
				})).Return(nil)
				tasks.On("AutoComplete", mock.Anything, userID, model.TaskConnectX).Return(nil)
			},
			expectedHandle: "defi_master",
		},
		{
			name:   "Handle taken by another user",
			handle: "defi_master",
			mockSetup: func(repo *mocks.MockSocialRepository, tasks *mocks.MockTaskCompleter) {
				repo.On("UpsertConnection", mock.Anything, mock.Anything).
					Return(repository.ErrConnectionTaken)
			},
			expectedError: ErrConnectionTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockSocialRepository{}
			tasks := &mocks.MockTaskCompleter{}
			tt.mockSetup(repo, tasks)

			svc := NewSocialService(repo, tasks, "", true)
			conn, err := svc.ConnectX(context.Background(), userID, tt.handle)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			if tt.wantErr {
				assert.Error(t, err)
				repo.AssertNotCalled(t, "UpsertConnection", mock.Anything, mock.Anything)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedHandle, conn.PlatformUsername)
			repo.AssertExpectations(t)
			tasks.AssertExpectations(t)
		})
	}
}

func TestSocialService_ConnectTelegram_RejectsGarbage(t *testing.T) {
	repo := &mocks.MockSocialRepository{}
	tasks := &mocks.MockTaskCompleter{}

	// debug mode skips signature validation but parsing still applies
	svc := NewSocialService(repo, tasks, "", true)

	_, err := svc.ConnectTelegram(context.Background(), 5, "%%%not-query-string")
	assert.ErrorIs(t, err, ErrInvalidInitData)
	repo.AssertNotCalled(t, "UpsertConnection", mock.Anything, mock.Anything)
}
