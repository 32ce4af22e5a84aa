package mock

import (
	"context"

	"github.com/issuetrack/tracker"
)

type ActivityStore struct {
	AddLogFn func(ctx context.Context, userId tracker.UserId, activity tracker.Activity) error

	ByUserIdFn func(ctx context.Context, userId tracker.UserId, limit int) ([]tracker.ActivityLog, error)
}

func (s ActivityStore) AddLog(ctx context.Context, userId tracker.UserId, activity tracker.Activity) error {
	return s.AddLogFn(ctx, userId, activity)
}

func (s ActivityStore) ByUserId(ctx context.Context, userId tracker.UserId, limit int) ([]tracker.ActivityLog, error) {
	return s.ByUserIdFn(ctx, userId, limit)
}
