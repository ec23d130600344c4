package domain

import "time"

// Notification types pushed over the realtime stream and stored durably.
const (
	NotificationTypeJobPosted = "job_posted"
	NotificationTypeSystem    = "system"
)

type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	UserID         string            `json:"user_id" dynamodbav:"user_id"`
	Type           string            `json:"type" dynamodbav:"type"`
	Title          string            `json:"title" dynamodbav:"title"`
	Message        string            `json:"message" dynamodbav:"message"`
	Data           map[string]string `json:"data,omitempty" dynamodbav:"data"`
	Read           bool              `json:"read" dynamodbav:"read"`
	ReadAt         *time.Time        `json:"read_at,omitempty" dynamodbav:"read_at"`
	CreatedAt      time.Time         `json:"created" dynamodbav:"created_at"`
}
