package mocks

import (
	"context"
	"time"

	"bountyhunter/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastSeen(ctx context.Context, userID int64, seenAt time.Time) error {
	args := m.Called(ctx, userID, seenAt)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, userID int64, username string) error {
	args := m.Called(ctx, userID, username)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserPoints(ctx context.Context, userID int64, points int) error {
	args := m.Called(ctx, userID, points)
	return args.Error(0)
}

func (m *MockUserRepository) GetCompletedTaskIDs(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) CreateReferral(ctx context.Context, ref *model.ReferralTracking) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferralRepository) GetReferralByReferee(ctx context.Context, refereeID int64) (*model.ReferralTracking, error) {
	args := m.Called(ctx, refereeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReferralTracking), args.Error(1)
}

func (m *MockReferralRepository) CompleteReferral(ctx context.Context, refereeID int64, referrerBonus int, completedAt time.Time) error {
	args := m.Called(ctx, refereeID, referrerBonus, completedAt)
	return args.Error(0)
}

func (m *MockReferralRepository) GetReferralsByReferrer(ctx context.Context, referrerID int64) ([]*model.RefereeSummary, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RefereeSummary), args.Error(1)
}

func (m *MockReferralRepository) GetReferralStats(ctx context.Context, referrerID int64) (*model.ReferralStats, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReferralStats), args.Error(1)
}

type MockSocialRepository struct {
	mock.Mock
}

func (m *MockSocialRepository) UpsertConnection(ctx context.Context, conn *model.SocialConnection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockSocialRepository) DeactivateConnection(ctx context.Context, userID int64, platform model.SocialPlatform) error {
	args := m.Called(ctx, userID, platform)
	return args.Error(0)
}

func (m *MockSocialRepository) GetConnections(ctx context.Context, userID int64) ([]*model.SocialConnection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SocialConnection), args.Error(1)
}

func (m *MockSocialRepository) GetActiveConnection(ctx context.Context, userID int64, platform model.SocialPlatform) (*model.SocialConnection, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SocialConnection), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) GetUserTasks(ctx context.Context, userID int64) (map[string]*model.UserTask, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*model.UserTask), args.Error(1)
}

func (m *MockTaskRepository) GetUserTask(ctx context.Context, userID int64, taskID string) (*model.UserTask, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserTask), args.Error(1)
}

func (m *MockTaskRepository) StartTask(ctx context.Context, userID int64, taskID string, startedAt time.Time) error {
	args := m.Called(ctx, userID, taskID, startedAt)
	return args.Error(0)
}

func (m *MockTaskRepository) MarkTaskVerifying(ctx context.Context, userID int64, taskID string, claimedAt time.Time) error {
	args := m.Called(ctx, userID, taskID, claimedAt)
	return args.Error(0)
}

func (m *MockTaskRepository) CompleteTask(ctx context.Context, userID int64, taskID string, points int, completedAt time.Time) (int, error) {
	args := m.Called(ctx, userID, taskID, points, completedAt)
	return args.Int(0), args.Error(1)
}

type MockLeaderboardRepository struct {
	mock.Mock
}

func (m *MockLeaderboardRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepository) GetUserRank(ctx context.Context, userID int64) (*model.UserRank, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserRank), args.Error(1)
}

func (m *MockLeaderboardRepository) GetProgramStats(ctx context.Context) (*model.ProgramStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgramStats), args.Error(1)
}

type MockLeaderboardCache struct {
	mock.Mock
}

func (m *MockLeaderboardCache) Get(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardCache) Set(ctx context.Context, limit int, entries []*model.LeaderboardEntry) error {
	args := m.Called(ctx, limit, entries)
	return args.Error(0)
}

type MockTelegramVerifier struct {
	mock.Mock
}

func (m *MockTelegramVerifier) IsChatMember(ctx context.Context, chatID int64, telegramUserID int64) (bool, error) {
	args := m.Called(ctx, chatID, telegramUserID)
	return args.Bool(0), args.Error(1)
}

type MockReferralService struct {
	mock.Mock
}

func (m *MockReferralService) ApplyCode(ctx context.Context, userID int64, code string) (*model.ReferralTracking, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReferralTracking), args.Error(1)
}

func (m *MockReferralService) CompleteForUser(ctx context.Context, refereeID int64) error {
	args := m.Called(ctx, refereeID)
	return args.Error(0)
}

func (m *MockReferralService) ListReferrals(ctx context.Context, referrerID int64) ([]*model.RefereeSummary, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RefereeSummary), args.Error(1)
}

func (m *MockReferralService) GetStats(ctx context.Context, referrerID int64) (*model.ReferralStats, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReferralStats), args.Error(1)
}

type MockTaskCompleter struct {
	mock.Mock
}

func (m *MockTaskCompleter) AutoComplete(ctx context.Context, userID int64, taskID string) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

// MockEventPublisher records published events for assertions.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(userID int64, event model.Event) {
	m.Called(userID, event)
}
