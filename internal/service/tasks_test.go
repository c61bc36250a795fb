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

type taskMocks struct {
	repo      *mocks.MockTaskRepository
	social    *mocks.MockSocialRepository
	referrals *mocks.MockReferralService
	verifier  *mocks.MockTelegramVerifier
	events    *mocks.MockEventPublisher
}

func newTaskService() (*TaskService, *taskMocks) {
	m := &taskMocks{
		repo:      &mocks.MockTaskRepository{},
		social:    &mocks.MockSocialRepository{},
		referrals: &mocks.MockReferralService{},
		verifier:  &mocks.MockTelegramVerifier{},
		events:    &mocks.MockEventPublisher{},
	}
	return NewTaskService(m.repo, m.social, m.referrals, m.verifier, m.events), m
}

func TestTaskService_ClaimTask(t *testing.T) {
	const userID = int64(42)

	tests := []struct {
		name           string
		taskID         string
		mockSetup      func(m *taskMocks)
		expectedError  error
		expectedStatus model.TaskStatus
	}{
		{
			name:          "Unknown task",
			taskID:        "plant_a_tree",
			mockSetup:     func(m *taskMocks) {},
			expectedError: ErrTaskNotFound,
		},
		{
			name:   "Claim before start",
			taskID: model.TaskFollowX,
			mockSetup: func(m *taskMocks) {
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrTaskNotStarted,
		},
		{
			name:   "Already completed",
			taskID: model.TaskFollowX,
			mockSetup: func(m *taskMocks) {
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(&model.UserTask{
						UserID: userID,
						TaskID: model.TaskFollowX,
						Status: model.TaskCompleted,
					}, nil)
			},
			expectedError: ErrTaskAlreadyCompleted,
		},
		{
			name:   "Timed task first claim parks in verifying",
			taskID: model.TaskFollowX,
			mockSetup: func(m *taskMocks) {
				started := time.Now().UTC().Add(-time.Minute)
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(&model.UserTask{
						UserID:    userID,
						TaskID:    model.TaskFollowX,
						Status:    model.TaskInProgress,
						StartedAt: &started,
					}, nil).Once()
				m.repo.On("MarkTaskVerifying", mock.Anything, userID, model.TaskFollowX, mock.Anything).
					Return(nil)

				claimed := time.Now().UTC()
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(&model.UserTask{
						UserID:    userID,
						TaskID:    model.TaskFollowX,
						Status:    model.TaskVerifying,
						StartedAt: &started,
						ClaimedAt: &claimed,
					}, nil)
			},
			expectedStatus: model.TaskVerifying,
		},
		{
			name:   "Timed task inside window stays verifying",
			taskID: model.TaskFollowX,
			mockSetup: func(m *taskMocks) {
				claimed := time.Now().UTC().Add(-10 * time.Second)
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(&model.UserTask{
						UserID:    userID,
						TaskID:    model.TaskFollowX,
						Status:    model.TaskVerifying,
						ClaimedAt: &claimed,
					}, nil)
			},
			expectedStatus: model.TaskVerifying,
		},
		{
			name:   "Timed task completes after window",
			taskID: model.TaskFollowX,
			mockSetup: func(m *taskMocks) {
				claimed := time.Now().UTC().Add(-2 * time.Minute)
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(&model.UserTask{
						UserID:    userID,
						TaskID:    model.TaskFollowX,
						Status:    model.TaskVerifying,
						ClaimedAt: &claimed,
					}, nil).Once()
				m.repo.On("CompleteTask", mock.Anything, userID, model.TaskFollowX, 150, mock.Anything).
					Return(2, nil)
				m.events.On("Publish", userID, mock.MatchedBy(func(e model.Event) bool {
					return e.Type == model.EventTaskCompleted
				})).Return()
				m.referrals.On("CompleteForUser", mock.Anything, userID).Return(nil)

				completed := time.Now().UTC()
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(&model.UserTask{
						UserID:      userID,
						TaskID:      model.TaskFollowX,
						Status:      model.TaskCompleted,
						ClaimedAt:   &claimed,
						CompletedAt: &completed,
					}, nil)
			},
			expectedStatus: model.TaskCompleted,
		},
		{
			name:   "First completion triggers referral hook",
			taskID: model.TaskFollowX,
			mockSetup: func(m *taskMocks) {
				claimed := time.Now().UTC().Add(-2 * time.Minute)
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(&model.UserTask{
						UserID:    userID,
						TaskID:    model.TaskFollowX,
						Status:    model.TaskVerifying,
						ClaimedAt: &claimed,
					}, nil).Once()
				m.repo.On("CompleteTask", mock.Anything, userID, model.TaskFollowX, 150, mock.Anything).
					Return(1, nil)
				m.events.On("Publish", userID, mock.Anything).Return()
				m.referrals.On("CompleteForUser", mock.Anything, userID).Return(nil)

				completed := time.Now().UTC()
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskFollowX).
					Return(&model.UserTask{
						UserID:      userID,
						TaskID:      model.TaskFollowX,
						Status:      model.TaskCompleted,
						CompletedAt: &completed,
					}, nil)
			},
			expectedStatus: model.TaskCompleted,
		},
		{
			// a code applied after earlier completions leaves a pending edge;
			// the next completion must still flip it
			name:   "Later completion still flips a pending referral",
			taskID: model.TaskRepostX,
			mockSetup: func(m *taskMocks) {
				claimed := time.Now().UTC().Add(-2 * time.Minute)
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskRepostX).
					Return(&model.UserTask{
						UserID:    userID,
						TaskID:    model.TaskRepostX,
						Status:    model.TaskVerifying,
						ClaimedAt: &claimed,
					}, nil).Once()
				m.repo.On("CompleteTask", mock.Anything, userID, model.TaskRepostX, 250, mock.Anything).
					Return(2, nil)
				m.events.On("Publish", userID, mock.Anything).Return()
				m.referrals.On("CompleteForUser", mock.Anything, userID).Return(nil)

				completed := time.Now().UTC()
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskRepostX).
					Return(&model.UserTask{
						UserID:      userID,
						TaskID:      model.TaskRepostX,
						Status:      model.TaskCompleted,
						CompletedAt: &completed,
					}, nil)
			},
			expectedStatus: model.TaskCompleted,
		},
		{
			name:   "Telegram task needs a connection",
			taskID: model.TaskJoinTelegramChannel,
			mockSetup: func(m *taskMocks) {
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskJoinTelegramChannel).
					Return(&model.UserTask{
						UserID: userID,
						TaskID: model.TaskJoinTelegramChannel,
						Status: model.TaskInProgress,
					}, nil)
				m.social.On("GetActiveConnection", mock.Anything, userID, model.PlatformTelegram).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrConnectionRequired,
		},
		{
			name:   "Telegram task rejected when not a member",
			taskID: model.TaskJoinTelegramChannel,
			mockSetup: func(m *taskMocks) {
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskJoinTelegramChannel).
					Return(&model.UserTask{
						UserID: userID,
						TaskID: model.TaskJoinTelegramChannel,
						Status: model.TaskInProgress,
					}, nil)
				m.social.On("GetActiveConnection", mock.Anything, userID, model.PlatformTelegram).
					Return(&model.SocialConnection{
						UserID:         userID,
						Platform:       model.PlatformTelegram,
						PlatformUserID: "5060715466",
						IsActive:       true,
					}, nil)
				m.verifier.On("IsChatMember", mock.Anything, int64(-1002201886654), int64(5060715466)).
					Return(false, nil)
			},
			expectedError: ErrVerificationFailed,
		},
		{
			name:   "Telegram task completes for a member",
			taskID: model.TaskJoinTelegramChannel,
			mockSetup: func(m *taskMocks) {
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskJoinTelegramChannel).
					Return(&model.UserTask{
						UserID: userID,
						TaskID: model.TaskJoinTelegramChannel,
						Status: model.TaskInProgress,
					}, nil).Once()
				m.social.On("GetActiveConnection", mock.Anything, userID, model.PlatformTelegram).
					Return(&model.SocialConnection{
						UserID:         userID,
						Platform:       model.PlatformTelegram,
						PlatformUserID: "5060715466",
						IsActive:       true,
					}, nil)
				m.verifier.On("IsChatMember", mock.Anything, int64(-1002201886654), int64(5060715466)).
					Return(true, nil)
				m.repo.On("CompleteTask", mock.Anything, userID, model.TaskJoinTelegramChannel, 200, mock.Anything).
					Return(3, nil)
				m.events.On("Publish", userID, mock.Anything).Return()
				m.referrals.On("CompleteForUser", mock.Anything, userID).Return(nil)

				completed := time.Now().UTC()
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskJoinTelegramChannel).
					Return(&model.UserTask{
						UserID:      userID,
						TaskID:      model.TaskJoinTelegramChannel,
						Status:      model.TaskCompleted,
						CompletedAt: &completed,
					}, nil)
			},
			expectedStatus: model.TaskCompleted,
		},
		{
			name:   "Connect task without linked account",
			taskID: model.TaskConnectX,
			mockSetup: func(m *taskMocks) {
				m.repo.On("GetUserTask", mock.Anything, userID, model.TaskConnectX).
					Return(&model.UserTask{
						UserID: userID,
						TaskID: model.TaskConnectX,
						Status: model.TaskInProgress,
					}, nil)
				m.social.On("GetActiveConnection", mock.Anything, userID, model.PlatformX).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrConnectionRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTaskService()
			tt.mockSetup(m)

			view, err := svc.ClaimTask(context.Background(), userID, tt.taskID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, view.Status)
			m.repo.AssertExpectations(t)
			m.referrals.AssertExpectations(t)
		})
	}
}

func TestTaskService_ListTasks(t *testing.T) {
	const userID = int64(7)

	svc, m := newTaskService()
	started := time.Now().UTC()
	m.repo.On("GetUserTasks", mock.Anything, userID).
		Return(map[string]*model.UserTask{
			model.TaskConnectTelegram: {
				UserID:    userID,
				TaskID:    model.TaskConnectTelegram,
				Status:    model.TaskInProgress,
				StartedAt: &started,
			},
		}, nil)

	views, err := svc.ListTasks(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, views, len(model.Catalog()))

	byID := make(map[string]*model.UserTaskView)
	for _, view := range views {
		byID[view.Task.ID] = view
	}

	assert.Equal(t, model.TaskInProgress, byID[model.TaskConnectTelegram].Status)
	assert.Equal(t, model.TaskNotStarted, byID[model.TaskFollowX].Status)
}

func TestCatalogIsConsistent(t *testing.T) {
	seen := make(map[string]struct{})
	for _, task := range model.Catalog() {
		_, dup := seen[task.ID]
		assert.False(t, dup, "duplicate task id %s", task.ID)
		seen[task.ID] = struct{}{}

		assert.Greater(t, task.Points, 0, "task %s has no reward", task.ID)
		if task.Verification == model.VerifyTelegramMember {
			assert.NotEmpty(t, task.Target, "task %s needs a chat id", task.ID)
		}
	}
}
