package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/issuetrack/tracker"
	"github.com/stretchr/testify/assert"
)

func TestProfileStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewProfileStore()
	_, err := s.GetExisting(ctx, 1)
	assert.Equal(tracker.ErrProfileNotFound, err)

	contacts := []tracker.Contact{{Type: tracker.ChannelSkype, Value: "jdoe"}}
	created, err := s.Upsert(ctx, 1, tracker.Profile{
		Contacts:      contacts,
		Notifications: []tracker.NotificationType{tracker.NotificationDeadline, tracker.NotificationStatus},
	})
	if !assert.NoError(err) {
		return
	}
	assert.True(created)

	// caller's slice must not leak into the store
	contacts[0].Value = "mutated"

	p, err := s.GetExisting(ctx, 1)
	if assert.NoError(err) {
		assert.Equal(tracker.UserId(1), p.UserId)
		assert.Equal([]tracker.Contact{{Type: tracker.ChannelSkype, Value: "jdoe"}}, p.Contacts)
		assert.Equal([]tracker.NotificationType{tracker.NotificationStatus, tracker.NotificationDeadline}, p.Notifications)
	}

	created, err = s.Upsert(ctx, 1, tracker.EmptyProfile(1))
	if assert.NoError(err) {
		assert.False(created)
	}
	p, _ = s.GetExisting(ctx, 1)
	assert.Equal([]tracker.Contact{}, p.Contacts)
	assert.Equal([]tracker.NotificationType{}, p.Notifications)

	_, err = s.Upsert(ctx, 1, tracker.Profile{Notifications: []tracker.NotificationType{"SOMETIMES"}})
	assert.Error(err)
}

func TestProfileStoreAllAndTouchLogin(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewProfileStore()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.NoError(s.TouchLogin(ctx, 7, true, at))
	assert.NoError(s.TouchLogin(ctx, 3, false, at))
	_, err := s.Upsert(ctx, 5, tracker.EmptyProfile(5))
	assert.NoError(err)

	// login alone does not create a profile
	_, err = s.GetExisting(ctx, 7)
	assert.Equal(tracker.ErrProfileNotFound, err)

	all, err := s.All(ctx)
	if !assert.NoError(err) || !assert.Equal(1, len(all)) {
		return
	}
	assert.Equal(tracker.UserId(5), all[0].UserId)

	// first save after login creates and keeps login timestamps
	created, err := s.Upsert(ctx, 7, tracker.EmptyProfile(7))
	if assert.NoError(err) {
		assert.True(created)
	}
	created, err = s.Upsert(ctx, 3, tracker.EmptyProfile(3))
	if assert.NoError(err) {
		assert.True(created)
	}
	p, _ := s.GetExisting(ctx, 7)
	assert.Equal(at, p.LastLogin)
	assert.True(p.LastFailedLogin.IsZero())

	all, err = s.All(ctx)
	if !assert.NoError(err) || !assert.Equal(3, len(all)) {
		return
	}
	assert.Equal(tracker.UserId(3), all[0].UserId)
	assert.Equal(tracker.UserId(5), all[1].UserId)
	assert.Equal(tracker.UserId(7), all[2].UserId)
	assert.Equal(at, all[0].LastFailedLogin)
	assert.True(all[0].LastLogin.IsZero())
}
