package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/issuetrack/tracker"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Id           int64            `bun:",pk,autoincrement"`
	CreatedAt    time.Time        `bun:",nullzero,notnull,default:current_timestamp"`
	Email        string           `bun:",notnull,unique"`
	DisplayName  string           `bun:",notnull"`
	PasswordHash []byte           `bun:",notnull"`
	RolesNames   []tracker.RoleId `bun:",notnull,array"`

	// Mapped (in AfterScanRow hook) roles from RolesNames.
	Roles tracker.Roles `bun:"-"`
}

func (u User) ToDomain() tracker.User {
	return tracker.User{
		Id:           tracker.UserId(u.Id),
		CreatedAt:    u.CreatedAt,
		Email:        tracker.Email(u.Email),
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		Roles:        u.Roles,
	}
}

func userFromDomain(u tracker.User) *User {
	return &User{
		Id:           int64(u.Id),
		CreatedAt:    u.CreatedAt,
		Email:        string(u.Email.Normalized()),
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		RolesNames:   u.Roles.Ids(),
		Roles:        u.Roles,
	}
}

var _ bun.AfterScanRowHook = (*User)(nil)

func (u *User) AfterScanRow(ctx context.Context) error {
	u.Roles = tracker.RolesByIds(u.RolesNames)
	return nil
}

type UserStore struct {
	DB *bun.DB
}

var _ tracker.UserStore = (*UserStore)(nil)

func (s *UserStore) Register(ctx context.Context, u tracker.User) (tracker.User, error) {
	user := userFromDomain(u)
	user.Id = 0
	if user.RolesNames == nil {
		user.RolesNames = []tracker.RoleId{}
	}
	_, err := s.DB.NewInsert().
		Model(user).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return tracker.User{}, tracker.ErrUserExists
		}
		return tracker.User{}, fmt.Errorf("insert user: %w", err)
	}
	return s.ById(ctx, tracker.UserId(user.Id))
}

func (s *UserStore) ById(ctx context.Context, userId tracker.UserId) (tracker.User, error) {
	return s.selectOne(ctx, `"u"."id" = ?`, int64(userId))
}

func (s *UserStore) ByEmail(ctx context.Context, email tracker.Email) (tracker.User, error) {
	return s.selectOne(ctx, `"u"."email" = ?`, string(email.Normalized()))
}

func (s *UserStore) selectOne(ctx context.Context, where string, arg interface{}) (tracker.User, error) {
	user := new(User)
	err := s.DB.NewSelect().
		Model(user).
		Where(where, arg).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tracker.User{}, tracker.ErrUserNotFound
		}
		return tracker.User{}, fmt.Errorf("select user: %w", err)
	}
	return user.ToDomain(), nil
}

func (s *UserStore) Update(ctx context.Context, u tracker.User) error {
	user := userFromDomain(u)
	res, err := s.DB.NewUpdate().
		Model(user).
		Column("email", "display_name", "password_hash", "roles_names").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update query: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tracker.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
