package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/issuetrack/tracker"
)

// ProfileStore keeps login timestamps for every user that logged in, but
// only users in saved have a profile.
type ProfileStore struct {
	profiles map[tracker.UserId]tracker.Profile
	saved    map[tracker.UserId]bool
	mutex    sync.RWMutex
}

var _ tracker.ProfileStore = (*ProfileStore)(nil)

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: map[tracker.UserId]tracker.Profile{},
		saved:    map[tracker.UserId]bool{},
	}
}

// Stored profiles never share slices with callers.
func copyProfile(p tracker.Profile) tracker.Profile {
	p.Contacts = append(make([]tracker.Contact, 0, len(p.Contacts)), p.Contacts...)
	p.Notifications = append(make([]tracker.NotificationType, 0, len(p.Notifications)), p.Notifications...)
	return p
}

func (s *ProfileStore) GetExisting(ctx context.Context, userId tracker.UserId) (tracker.Profile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, ok := s.profiles[userId]
	if !ok || !s.saved[userId] {
		return tracker.Profile{}, tracker.ErrProfileNotFound
	}
	return copyProfile(p), nil
}

func (s *ProfileStore) Upsert(ctx context.Context, userId tracker.UserId, p tracker.Profile) (bool, error) {
	mask, err := tracker.NotificationsMask(p.Notifications)
	if err != nil {
		return false, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, exists := s.profiles[userId]
	if !exists {
		stored = tracker.EmptyProfile(userId)
	}
	stored.Contacts = p.Contacts
	stored.Notifications = tracker.NotificationsFromMask(mask)
	s.profiles[userId] = copyProfile(stored)

	created := !s.saved[userId]
	s.saved[userId] = true
	return created, nil
}

func (s *ProfileStore) All(ctx context.Context) ([]tracker.Profile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	profiles := make([]tracker.Profile, 0, len(s.saved))
	for userId := range s.saved {
		profiles = append(profiles, copyProfile(s.profiles[userId]))
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].UserId < profiles[j].UserId
	})
	return profiles, nil
}

func (s *ProfileStore) TouchLogin(ctx context.Context, userId tracker.UserId, success bool, at time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.profiles[userId]
	if !ok {
		p = tracker.EmptyProfile(userId)
	}
	if success {
		p.LastLogin = at.UTC()
	} else {
		p.LastFailedLogin = at.UTC()
	}
	s.profiles[userId] = p
	return nil
}
