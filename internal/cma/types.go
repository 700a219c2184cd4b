package cma

import (
	"encoding/json"
	"time"
)

// linkSys 链接的sys字段
type linkSys struct {
	Type     string `json:"type"`
	LinkType string `json:"linkType"`
	ID       string `json:"id"`
}

type link struct {
	Sys linkSys `json:"sys"`
}

func newLink(linkType, id string) link {
	return link{Sys: linkSys{Type: "Link", LinkType: linkType, ID: id}}
}

type arrayOfLinks struct {
	Sys struct {
		Type string `json:"type"`
	} `json:"sys"`
	Items []link `json:"items"`
}

// releasePayload 创建/更新release的请求体
type releasePayload struct {
	Title    string       `json:"title"`
	Entities arrayOfLinks `json:"entities"`
}

// releaseResource release响应体
type releaseResource struct {
	Sys struct {
		ID         string    `json:"id"`
		Version    int       `json:"version"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
		LastAction *struct {
			Sys struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"sys"`
			Action string `json:"action"`
		} `json:"lastAction,omitempty"`
	} `json:"sys"`
	Title    string       `json:"title"`
	Entities arrayOfLinks `json:"entities"`
}

type releaseCollection struct {
	Total int               `json:"total"`
	Items []releaseResource `json:"items"`
}

// erroredEntity 校验失败的实体
type erroredEntity struct {
	Sys   linkSys    `json:"sys"`
	Error *errorBody `json:"error,omitempty"`
}

// validationResult 校验接口响应
type validationResult struct {
	Action  string          `json:"action"`
	Errored []erroredEntity `json:"errored"`
}

// releaseActionResource 发布动作响应
type releaseActionResource struct {
	Sys struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Release link   `json:"release"`
	} `json:"sys"`
	Action string `json:"action"`
	Error  *struct {
		Message string `json:"message"`
		Details struct {
			Errors []erroredEntity `json:"errors"`
		} `json:"details"`
	} `json:"error,omitempty"`
}

// entitySys 条目/资源的sys字段（用于计算发布状态）
type entitySys struct {
	ID               string `json:"id"`
	Version          int    `json:"version"`
	PublishedVersion *int   `json:"publishedVersion,omitempty"`
	ArchivedVersion  *int   `json:"archivedVersion,omitempty"`
}

type entityCollection struct {
	Items []struct {
		Sys entitySys `json:"sys"`
	} `json:"items"`
}

// scheduledActionResource 定时任务
type scheduledActionResource struct {
	Sys struct {
		ID     string `json:"id,omitempty"`
		Status string `json:"status,omitempty"`
	} `json:"sys"`
	Entity       link   `json:"entity"`
	Environment  link   `json:"environment"`
	Action       string `json:"action"`
	ScheduledFor struct {
		Datetime string `json:"datetime"`
		Timezone string `json:"timezone,omitempty"`
	} `json:"scheduledFor"`
}

type scheduledActionCollection struct {
	Items []scheduledActionResource `json:"items"`
}

// errorBody CMA错误响应
type errorBody struct {
	Sys struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"sys"`
	Message   string          `json:"message"`
	RequestID string          `json:"requestId"`
	Details   json.RawMessage `json:"details,omitempty"`
}
