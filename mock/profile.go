package mock

import (
	"context"
	"time"

	"github.com/issuetrack/tracker"
)

type ProfileStore struct {
	GetExistingFn func(ctx context.Context, userId tracker.UserId) (tracker.Profile, error)
	UpsertFn      func(ctx context.Context, userId tracker.UserId, profile tracker.Profile) (bool, error)
	AllFn         func(ctx context.Context) ([]tracker.Profile, error)
	TouchLoginFn  func(ctx context.Context, userId tracker.UserId, success bool, at time.Time) error
}

func (s ProfileStore) GetExisting(ctx context.Context, userId tracker.UserId) (tracker.Profile, error) {
	return s.GetExistingFn(ctx, userId)
}

func (s ProfileStore) Upsert(ctx context.Context, userId tracker.UserId, profile tracker.Profile) (bool, error) {
	return s.UpsertFn(ctx, userId, profile)
}

func (s ProfileStore) All(ctx context.Context) ([]tracker.Profile, error) {
	return s.AllFn(ctx)
}

func (s ProfileStore) TouchLogin(ctx context.Context, userId tracker.UserId, success bool, at time.Time) error {
	return s.TouchLoginFn(ctx, userId, success, at)
}
