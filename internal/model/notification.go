package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationLevel 通知级别
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationWarning NotificationLevel = "warning"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a user-visible workflow message, stored so that clients
// reconnecting over Socket.IO can replay what they missed.
type Notification struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReleaseID string            `gorm:"column:release_id;type:varchar(64);not null;index:idx_release_id" json:"releaseId"`
	RunID     string            `gorm:"column:run_id;type:varchar(36)" json:"runId"`
	Level     NotificationLevel `gorm:"column:level;type:enum('success','error','warning','info');not null" json:"level"`
	Action    string            `gorm:"column:action;type:varchar(32)" json:"action"`
	Message   string            `gorm:"column:message;type:varchar(255);not null" json:"message"`
	Payload   datatypes.JSON    `gorm:"column:payload;type:json" json:"payload,omitempty"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "release_notifications"
}
