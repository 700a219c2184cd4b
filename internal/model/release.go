package model

import "time"

// LinkType 实体链接类型
type LinkType string

const (
	LinkTypeEntry LinkType = "Entry"
	LinkTypeAsset LinkType = "Asset"
)

// Valid reports whether the link type is one a release may hold
func (t LinkType) Valid() bool {
	return t == LinkTypeEntry || t == LinkTypeAsset
}

// EntityLink points at an entry or asset in the content space.
// A release never owns the entity it links to.
type EntityLink struct {
	ID       string   `json:"id"`
	LinkType LinkType `json:"linkType"`
}

// ActionRef 最近一次发布动作的引用
type ActionRef struct {
	ID     string       `json:"id"`
	Type   ActionType   `json:"type"`
	Status ActionStatus `json:"status"`
}

// Release 内容发布集合
type Release struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Version    int          `json:"version"`
	Entities   []EntityLink `json:"entities"`
	LastAction *ActionRef   `json:"lastAction"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ActionType 发布动作类型
type ActionType string

const (
	ActionTypePublish   ActionType = "publish"
	ActionTypeUnpublish ActionType = "unpublish"
	ActionTypeValidate  ActionType = "validate"
)

// ActionStatus 发布动作状态
type ActionStatus string

const (
	ActionStatusScheduled  ActionStatus = "scheduled"
	ActionStatusInProgress ActionStatus = "inProgress"
	ActionStatusSucceeded  ActionStatus = "succeeded"
	ActionStatusFailed     ActionStatus = "failed"
)

// Terminal reports whether polling should stop at this status
func (s ActionStatus) Terminal() bool {
	return s == ActionStatusSucceeded || s == ActionStatusFailed
}

// ReleaseAction is an asynchronous server-side operation against a release.
type ReleaseAction struct {
	ID        string        `json:"id"`
	ReleaseID string        `json:"releaseId"`
	Type      ActionType    `json:"type"`
	Status    ActionStatus  `json:"status"`
	Errors    []EntityError `json:"errors"`
}

// EntityError 单个实体的校验错误
type EntityError struct {
	EntityID string   `json:"entityId"`
	LinkType LinkType `json:"linkType"`
	Message  string   `json:"message"`
}

// EntityStatus 实体发布状态
type EntityStatus string

const (
	EntityStatusDraft     EntityStatus = "draft"
	EntityStatusChanged   EntityStatus = "changed"
	EntityStatusPublished EntityStatus = "published"
	EntityStatusArchived  EntityStatus = "archived"
)

// EntityState pairs a release entity with its current publish status
type EntityState struct {
	Link   EntityLink   `json:"link"`
	Status EntityStatus `json:"status"`
}
