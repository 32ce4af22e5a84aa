package inmem

import (
	"context"
	"testing"

	"github.com/issuetrack/tracker"
	"github.com/stretchr/testify/assert"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)

	s := NewUserStore()
	_, err := s.ById(ctx, 1)
	assert.Equal(tracker.ErrUserNotFound, err)

	u, err := s.Register(ctx, tracker.User{
		Email:        "Aleja@Example.com ",
		DisplayName:  "aleja",
		PasswordHash: []byte("hash"),
	})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(tracker.Email("aleja@example.com"), u.Email)
	assert.Equal(tracker.Roles{tracker.AllRoles[tracker.RoleIdGuest]}, u.Roles)

	ufound, err := s.ById(ctx, u.Id)
	if assert.NoError(err) {
		assert.Equal(u, ufound)
	}
	ufound, err = s.ByEmail(ctx, "ALEJA@example.com")
	if assert.NoError(err) {
		assert.Equal(u, ufound)
	}

	_, err = s.Register(ctx, tracker.User{Email: "aleja@example.com"})
	assert.Equal(tracker.ErrUserExists, err)

	u.DisplayName = "renamed"
	assert.NoError(s.Update(ctx, u))
	ufound, _ = s.ById(ctx, u.Id)
	assert.Equal("renamed", ufound.DisplayName)

	assert.Equal(tracker.ErrUserNotFound, s.Update(ctx, tracker.User{Id: 999}))
}
