package persistent

import (
	"context"
	"testing"

	"github.com/issuetrack/tracker"
	"github.com/stretchr/testify/assert"
)

func TestUserRoles(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
		return
	}
	assert := assert.New(t)
	ctx := context.Background()

	db := PgOpenTest(ctx)
	defer db.Close()

	_, err := db.NewInsert().
		Model(&User{
			Email:        "user@rol.es",
			DisplayName:  "Roles",
			PasswordHash: []byte("x"),
			RolesNames:   []tracker.RoleId{tracker.RoleIdManager, tracker.RoleId("UNDEFINED role")},
		}).
		Exec(ctx)
	if !assert.NoError(err) {
		return
	}

	var user User
	err = db.NewSelect().
		Model((*User)(nil)).
		Where("email=?", "user@rol.es").
		Scan(ctx, &user)
	assert.NoError(err)

	roles := user.Roles
	assert.Equal(tracker.Roles{tracker.AllRoles[tracker.RoleIdManager]}, roles)
	assert.Equal(tracker.AccessAllowed, roles.Access(tracker.PermissionProfileWriteOwn))
	assert.Equal(tracker.AccessUndefined, roles.Access(tracker.PermissionProfileReadAll))
}

func TestUserStoreRegister(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
		return
	}
	assert := assert.New(t)
	ctx := context.Background()

	db := PgOpenTest(ctx)
	defer db.Close()
	store := UserStore{DB: db}

	hash, err := tracker.HashPassword("hunter22")
	if !assert.NoError(err) {
		return
	}
	user, err := store.Register(ctx, tracker.User{
		Email:        " JDoe@Example.com",
		DisplayName:  "John Doe",
		PasswordHash: hash,
		Roles:        tracker.RolesByIds([]tracker.RoleId{tracker.RoleIdDev}),
	})
	if !assert.NoError(err) {
		return
	}
	assert.NotZero(user.Id)
	assert.Equal(tracker.Email("jdoe@example.com"), user.Email)
	assert.True(user.Roles.Has(tracker.RoleIdDev))

	byEmail, err := store.ByEmail(ctx, "jdoe@EXAMPLE.com")
	if assert.NoError(err) {
		assert.Equal(user, byEmail)
	}

	_, err = store.Register(ctx, tracker.User{Email: "jdoe@example.com", PasswordHash: hash})
	assert.ErrorIs(err, tracker.ErrUserExists)

	user.DisplayName = "Johnny"
	user.Roles = tracker.RolesByIds([]tracker.RoleId{tracker.RoleIdAdmin})
	if !assert.NoError(store.Update(ctx, user)) {
		return
	}
	updated, err := store.ById(ctx, user.Id)
	if assert.NoError(err) {
		assert.Equal("Johnny", updated.DisplayName)
		assert.True(updated.Roles.Has(tracker.RoleIdAdmin))
	}

	_, err = store.ById(ctx, 987654321)
	assert.ErrorIs(err, tracker.ErrUserNotFound)
	assert.ErrorIs(store.Update(ctx, tracker.User{Id: 987654321}), tracker.ErrUserNotFound)
}
