package model

import "time"

// JobStatus 定时任务状态
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusCanceled  JobStatus = "canceled"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// ScheduledJob is a deferred release action executed server-side at ScheduledAt
type ScheduledJob struct {
	ID          string     `json:"id"`
	ReleaseID   string     `json:"releaseId"`
	Action      ActionType `json:"action"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	Timezone    string     `json:"timezone"`
	Status      JobStatus  `json:"status"`
}

// ScheduleParams 创建定时任务参数
type ScheduleParams struct {
	ReleaseID   string
	Action      ActionType
	ScheduledAt time.Time
	Timezone    string
}
