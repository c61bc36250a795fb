package model

import "time"

type User struct {
	ID            int64
	WalletAddress string
	Username      string
	ReferralCode  string
	Points        int
	IsAdmin       bool
	CreatedAt     time.Time
	LastSeenAt    time.Time
}

type LeaderboardEntry struct {
	Rank          int
	Username      string
	WalletAddress string
	Points        int
	Referrals     int
}

type UserRank struct {
	UserID     int64
	Rank       int
	Points     int
	TotalUsers int
	Percentile float64
}

type ProgramStats struct {
	TotalUsers         int
	TotalPointsAwarded int
	CompletedTasks     int
	CompletedReferrals int
}
