package tracker

import (
	"context"
	"time"
)

const (
	ActivitySessionCreated   = "session_created"
	ActivitySessionChangedIp = "session_changed_ip"
	ActivityLoginFailed      = "login_failed"
	ActivityProfileCreated   = "profile_created"
	ActivityProfileUpdated   = "profile_updated"
)

type Activity struct {
	Name string
	Data map[string]interface{}
}

type ActivityLog struct {
	Id        int64
	CreatedAt time.Time
	UserId    UserId
	Name      string
	Data      map[string]interface{}
}

type ActivityStore interface {
	AddLog(ctx context.Context, userId UserId, activity Activity) error

	// Most recent logs first, at most "limit" entries.
	ByUserId(ctx context.Context, userId UserId, limit int) ([]ActivityLog, error)
}
