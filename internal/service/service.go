package service

import (
	"context"
	"errors"
	"time"

	"bountyhunter/internal/model"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidUsername      = errors.New("invalid username")
	ErrReferralCodeNotFound = errors.New("referral code not found")
	ErrSelfReferral         = errors.New("cannot use your own referral code")
	ErrAlreadyReferred      = errors.New("user already has a referrer")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskNotStarted       = errors.New("task not started")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	ErrVerificationFailed   = errors.New("task verification failed")
	ErrConnectionRequired   = errors.New("social connection required")
	ErrConnectionTaken      = errors.New("social account already linked to another user")
	ErrInvalidInitData      = errors.New("invalid telegram init data")
	ErrUnsupportedPlatform  = errors.New("unsupported platform")
)

const (
	// One-time bonuses on referral creation / completion.
	RefereeWelcomeBonus = 250
	ReferrerBonus       = 500

	// X tasks have no membership API; a claim parks the task in verifying
	// for this long before it completes.
	XVerificationWindow = 60 * time.Second
)

type UserServiceI interface {
	Authenticate(ctx context.Context, walletAddress string) (*model.User, bool, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error)
	UpdateUsername(ctx context.Context, userID int64, username string) error
	AwardPoints(ctx context.Context, userID int64, points int) error
	GetCompletedTaskIDs(ctx context.Context, userID int64) ([]string, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	TouchLastSeen(ctx context.Context, userID int64, seenAt time.Time) error
	UpdateUsername(ctx context.Context, userID int64, username string) error
	UpdateUserPoints(ctx context.Context, userID int64, points int) error
	GetCompletedTaskIDs(ctx context.Context, userID int64) ([]string, error)
}

type ReferralServiceI interface {
	ApplyCode(ctx context.Context, userID int64, code string) (*model.ReferralTracking, error)
	CompleteForUser(ctx context.Context, refereeID int64) error
	ListReferrals(ctx context.Context, referrerID int64) ([]*model.RefereeSummary, error)
	GetStats(ctx context.Context, referrerID int64) (*model.ReferralStats, error)
}

type ReferralRepository interface {
	CreateReferral(ctx context.Context, ref *model.ReferralTracking) error
	GetReferralByReferee(ctx context.Context, refereeID int64) (*model.ReferralTracking, error)
	CompleteReferral(ctx context.Context, refereeID int64, referrerBonus int, completedAt time.Time) error
	GetReferralsByReferrer(ctx context.Context, referrerID int64) ([]*model.RefereeSummary, error)
	GetReferralStats(ctx context.Context, referrerID int64) (*model.ReferralStats, error)
}

type SocialServiceI interface {
	ConnectTelegram(ctx context.Context, userID int64, initData string) (*model.SocialConnection, error)
	ConnectX(ctx context.Context, userID int64, username string) (*model.SocialConnection, error)
	Disconnect(ctx context.Context, userID int64, platform model.SocialPlatform) error
	ListConnections(ctx context.Context, userID int64) ([]*model.SocialConnection, error)
}

type SocialRepository interface {
	UpsertConnection(ctx context.Context, conn *model.SocialConnection) error
	DeactivateConnection(ctx context.Context, userID int64, platform model.SocialPlatform) error
	GetConnections(ctx context.Context, userID int64) ([]*model.SocialConnection, error)
	GetActiveConnection(ctx context.Context, userID int64, platform model.SocialPlatform) (*model.SocialConnection, error)
}

type TaskServiceI interface {
	ListTasks(ctx context.Context, userID int64) ([]*model.UserTaskView, error)
	StartTask(ctx context.Context, userID int64, taskID string) (*model.UserTaskView, error)
	ClaimTask(ctx context.Context, userID int64, taskID string) (*model.UserTaskView, error)
}

// TaskCompleter is the narrow slice of the task service the social service
// uses to auto-complete connect tasks.
type TaskCompleter interface {
	AutoComplete(ctx context.Context, userID int64, taskID string) error
}

type TaskRepository interface {
	GetUserTasks(ctx context.Context, userID int64) (map[string]*model.UserTask, error)
	GetUserTask(ctx context.Context, userID int64, taskID string) (*model.UserTask, error)
	StartTask(ctx context.Context, userID int64, taskID string, startedAt time.Time) error
	MarkTaskVerifying(ctx context.Context, userID int64, taskID string, claimedAt time.Time) error
	CompleteTask(ctx context.Context, userID int64, taskID string, points int, completedAt time.Time) (int, error)
}

type LeaderboardServiceI interface {
	GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	GetUserRank(ctx context.Context, userID int64) (*model.UserRank, error)
	GetProgramStats(ctx context.Context) (*model.ProgramStats, error)
}

type LeaderboardRepository interface {
	GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	GetUserRank(ctx context.Context, userID int64) (*model.UserRank, error)
	GetProgramStats(ctx context.Context) (*model.ProgramStats, error)
}

// LeaderboardCacheI sits in front of the ranking query; a nil-entries result
// is a miss.
type LeaderboardCacheI interface {
	Get(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	Set(ctx context.Context, limit int, entries []*model.LeaderboardEntry) error
}

// TelegramVerifier answers whether a telegram user sits in a chat.
type TelegramVerifier interface {
	IsChatMember(ctx context.Context, chatID int64, telegramUserID int64) (bool, error)
}

// EventPublisher fans domain events out to connected websocket clients.
type EventPublisher interface {
	Publish(userID int64, event model.Event)
}
