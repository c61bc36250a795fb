package model

import (
	"time"

	"github.com/google/uuid"
)

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusCompleted ReferralStatus = "completed"
)

// ReferralTracking is one referrer->referee edge. A referee has at most one
// edge; the edge stays pending until the referee completes their first
// bounty task.
type ReferralTracking struct {
	ID             uuid.UUID
	ReferrerID     int64
	RefereeID      int64
	CodeUsed       string
	Status         ReferralStatus
	ReferrerPoints int
	RefereePoints  int
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

type RefereeSummary struct {
	Username      string
	WalletAddress string
	Status        ReferralStatus
	PointsEarned  int
	JoinedAt      time.Time
}

type ReferralStats struct {
	TotalReferrals     int
	PendingReferrals   int
	CompletedReferrals int
	PointsEarned       int
}
