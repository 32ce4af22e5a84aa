package mock

import (
	"context"

	"github.com/issuetrack/tracker"
)

type UserStore struct {
	RegisterFn func(ctx context.Context, user tracker.User) (tracker.User, error)
	ByIdFn     func(ctx context.Context, userId tracker.UserId) (tracker.User, error)
	ByEmailFn  func(ctx context.Context, email tracker.Email) (tracker.User, error)
	UpdateFn   func(ctx context.Context, user tracker.User) error
}

func (s UserStore) Register(ctx context.Context, user tracker.User) (tracker.User, error) {
	return s.RegisterFn(ctx, user)
}

func (s UserStore) ById(ctx context.Context, userId tracker.UserId) (tracker.User, error) {
	return s.ByIdFn(ctx, userId)
}

func (s UserStore) ByEmail(ctx context.Context, email tracker.Email) (tracker.User, error) {
	return s.ByEmailFn(ctx, email)
}

func (s UserStore) Update(ctx context.Context, user tracker.User) error {
	return s.UpdateFn(ctx, user)
}
