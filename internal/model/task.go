package model

import "time"

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskVerifying  TaskStatus = "verifying"
	TaskCompleted  TaskStatus = "completed"
)

type TaskAction string

const (
	ActionFollow  TaskAction = "follow"
	ActionJoin    TaskAction = "join"
	ActionRepost  TaskAction = "repost"
	ActionConnect TaskAction = "connect"
)

type VerificationKind string

const (
	// VerifyAuto completes on claim with no external check.
	VerifyAuto VerificationKind = "auto"
	// VerifySocial completes iff the matching platform connection is active.
	VerifySocial VerificationKind = "social"
	// VerifyTelegramMember asks the bot whether the user is in the target chat.
	VerifyTelegramMember VerificationKind = "telegram_member"
	// VerifyTimed parks the task in verifying and completes once the
	// verification window has elapsed. X has no membership API to ask.
	VerifyTimed VerificationKind = "timed"
)

type BountyTask struct {
	ID           string
	Title        string
	Description  string
	Platform     SocialPlatform
	Action       TaskAction
	Points       int
	Verification VerificationKind
	// Target is a chat id (telegram_member) or a URL shown to the client.
	Target string
	Link   string
}

type UserTask struct {
	UserID      int64
	TaskID      string
	Status      TaskStatus
	StartedAt   *time.Time
	ClaimedAt   *time.Time
	CompletedAt *time.Time
}

// UserTaskView is a catalog entry joined with the caller's progress row.
type UserTaskView struct {
	Task        BountyTask
	Status      TaskStatus
	StartedAt   *time.Time
	ClaimedAt   *time.Time
	CompletedAt *time.Time
}

const (
	TaskConnectTelegram     = "connect_telegram"
	TaskConnectX            = "connect_x"
	TaskJoinTelegramChannel = "join_telegram_channel"
	TaskJoinTelegramChat    = "join_telegram_chat"
	TaskFollowX             = "follow_x"
	TaskRepostX             = "repost_x"
)

// catalog is fixed in code; per-user progress lives in user_tasks.
var catalog = []BountyTask{
	{
		ID:           TaskConnectTelegram,
		Title:        "Connect Telegram",
		Description:  "Link your Telegram account to your hunter profile",
		Platform:     PlatformTelegram,
		Action:       ActionConnect,
		Points:       100,
		Verification: VerifySocial,
	},
	{
		ID:           TaskConnectX,
		Title:        "Connect X",
		Description:  "Link your X account to your hunter profile",
		Platform:     PlatformX,
		Action:       ActionConnect,
		Points:       100,
		Verification: VerifySocial,
	},
	{
		ID:           TaskJoinTelegramChannel,
		Title:        "Join the announcements channel",
		Description:  "Join the official Telegram announcements channel",
		Platform:     PlatformTelegram,
		Action:       ActionJoin,
		Points:       200,
		Verification: VerifyTelegramMember,
		Target:       "-1002201886654",
		Link:         "https://t.me/bountyhunter_news",
	},
	{
		ID:           TaskJoinTelegramChat,
		Title:        "Join the community chat",
		Description:  "Join the community discussion group",
		Platform:     PlatformTelegram,
		Action:       ActionJoin,
		Points:       200,
		Verification: VerifyTelegramMember,
		Target:       "-1002187339011",
		Link:         "https://t.me/bountyhunter_chat",
	},
	{
		ID:           TaskFollowX,
		Title:        "Follow on X",
		Description:  "Follow the project account on X",
		Platform:     PlatformX,
		Action:       ActionFollow,
		Points:       150,
		Verification: VerifyTimed,
		Link:         "https://x.com/bountyhunter_gg",
	},
	{
		ID:           TaskRepostX,
		Title:        "Repost the launch thread",
		Description:  "Repost the pinned launch announcement",
		Platform:     PlatformX,
		Action:       ActionRepost,
		Points:       250,
		Verification: VerifyTimed,
		Link:         "https://x.com/bountyhunter_gg/status/1830011223344556677",
	},
}

func Catalog() []BountyTask {
	out := make([]BountyTask, len(catalog))
	copy(out, catalog)
	return out
}

func TaskByID(id string) (BountyTask, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return BountyTask{}, false
}

// ConnectTaskFor maps a platform to its connect task.
func ConnectTaskFor(platform SocialPlatform) (string, bool) {
	switch platform {
	case PlatformTelegram:
		return TaskConnectTelegram, true
	case PlatformX:
		return TaskConnectX, true
	default:
		return "", false
	}
}
