package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/issuetrack/tracker"
)

type UserStore struct {
	lastId int64
	users  map[tracker.UserId]tracker.User
	mutex  sync.RWMutex
}

var _ tracker.UserStore = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{
		users: map[tracker.UserId]tracker.User{},
	}
}

func (s *UserStore) Register(ctx context.Context, u tracker.User) (tracker.User, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	email := u.Email.Normalized()
	for _, existing := range s.users {
		if existing.Email == email {
			return tracker.User{}, tracker.ErrUserExists
		}
	}

	s.lastId++
	u.Id = tracker.UserId(s.lastId)
	u.CreatedAt = time.Now().UTC()
	u.Email = email
	if len(u.Roles) == 0 {
		u.Roles = tracker.RolesByIds(nil)
	}
	s.users[u.Id] = u
	return u, nil
}

func (s *UserStore) ById(ctx context.Context, userId tracker.UserId) (tracker.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	u, ok := s.users[userId]
	if !ok {
		return u, tracker.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email tracker.Email) (tracker.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	email = email.Normalized()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return tracker.User{}, tracker.ErrUserNotFound
}

func (s *UserStore) Update(ctx context.Context, user tracker.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[user.Id]; !ok {
		return tracker.ErrUserNotFound
	}
	user.Email = user.Email.Normalized()
	s.users[user.Id] = user
	return nil
}
