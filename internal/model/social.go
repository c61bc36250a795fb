package model

import (
	"time"

	"github.com/google/uuid"
)

type SocialPlatform string

const (
	PlatformTelegram SocialPlatform = "telegram"
	PlatformX        SocialPlatform = "x"
)

func (p SocialPlatform) IsValid() bool {
	switch p {
	case PlatformTelegram, PlatformX:
		return true
	default:
		return false
	}
}

type SocialConnection struct {
	ID               uuid.UUID
	UserID           int64
	Platform         SocialPlatform
	PlatformUserID   string
	PlatformUsername string
	IsActive         bool
	ConnectedAt      time.Time
}
