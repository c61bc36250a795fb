package model

import "time"

type EventType string

const (
	EventPointsAwarded     EventType = "points_awarded"
	EventTaskCompleted     EventType = "task_completed"
	EventReferralCompleted EventType = "referral_completed"
)

type Event struct {
	Type    EventType      `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}
