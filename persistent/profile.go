package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/issuetrack/tracker"
	"github.com/uptrace/bun"
)

// Profile row. A login creates the row to hold its timestamps, but the
// profile exists only once the owner saved it and SavedAt is set.
type Profile struct {
	bun.BaseModel `bun:"table:profile"`

	Id                int64      `bun:",pk,autoincrement"`
	UserId            int64      `bun:",unique,notnull"`
	UpdatedAt         time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	MailNotifications int64      `bun:",notnull,default:0"`
	SavedAt           time.Time  `bun:",nullzero"`
	LastLogin         time.Time  `bun:",nullzero"`
	LastFailedLogin   time.Time  `bun:",nullzero"`
	Contacts          []*Contact `bun:"rel:has-many,join:id=profile_id"`
}

// Contact row. Channel type is part of the primary key so a profile
// can hold only one contact per channel.
type Contact struct {
	bun.BaseModel `bun:"table:contact"`

	ProfileId int64  `bun:",pk"`
	Code      string `bun:",pk,type:varchar(32)"`
	Value     string `bun:",notnull,type:varchar(256)"`
	Position  int    `bun:",notnull"`
}

func (p Profile) ToDomain() tracker.Profile {
	profile := tracker.EmptyProfile(tracker.UserId(p.UserId))
	for _, c := range p.Contacts {
		profile.Contacts = append(profile.Contacts, tracker.Contact{
			Type:  tracker.ChannelType(c.Code),
			Value: c.Value,
		})
	}
	profile.Notifications = tracker.NotificationsFromMask(p.MailNotifications)
	profile.LastLogin = p.LastLogin
	profile.LastFailedLogin = p.LastFailedLogin
	return profile
}

type ProfileStore struct {
	DB *bun.DB
}

var _ tracker.ProfileStore = (*ProfileStore)(nil)

func orderContacts(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("position ASC")
}

func (s *ProfileStore) GetExisting(ctx context.Context, userId tracker.UserId) (tracker.Profile, error) {
	profile := new(Profile)
	err := s.DB.NewSelect().
		Model(profile).
		Relation("Contacts", orderContacts).
		Where(`"profile"."user_id" = ?`, int64(userId)).
		Where(`"profile"."saved_at" IS NOT NULL`).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tracker.Profile{}, tracker.ErrProfileNotFound
		}
		return tracker.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	return profile.ToDomain(), nil
}

func (s *ProfileStore) All(ctx context.Context) ([]tracker.Profile, error) {
	var profiles []Profile
	err := s.DB.NewSelect().
		Model(&profiles).
		Relation("Contacts", orderContacts).
		Where(`"profile"."saved_at" IS NOT NULL`).
		Order("profile.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}

	mapped := make([]tracker.Profile, len(profiles))
	for i, p := range profiles {
		mapped[i] = p.ToDomain()
	}
	return mapped, nil
}

func (s *ProfileStore) Upsert(ctx context.Context, userId tracker.UserId, p tracker.Profile) (bool, error) {
	mask, err := tracker.NotificationsMask(p.Notifications)
	if err != nil {
		return false, err
	}

	var created bool
	err = s.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&Profile{UserId: int64(userId)}).
			On("CONFLICT (user_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}

		// row lock serializes concurrent saves of one user
		profile := new(Profile)
		err = tx.NewSelect().
			Model(profile).
			Column("id", "saved_at").
			Where("user_id = ?", int64(userId)).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("lock profile: %w", err)
		}
		created = profile.SavedAt.IsZero()

		_, err = tx.NewUpdate().
			Model((*Profile)(nil)).
			Set("mail_notifications = ?", mask).
			Set("saved_at = current_timestamp").
			Set("updated_at = current_timestamp").
			Where("id = ?", profile.Id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}

		_, err = tx.NewDelete().
			Model((*Contact)(nil)).
			Where("profile_id = ?", profile.Id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete contacts: %w", err)
		}
		if len(p.Contacts) == 0 {
			return nil
		}

		contacts := make([]Contact, len(p.Contacts))
		for i, c := range p.Contacts {
			contacts[i] = Contact{
				ProfileId: profile.Id,
				Code:      string(c.Type),
				Value:     c.Value,
				Position:  i,
			}
		}
		_, err = tx.NewInsert().
			Model(&contacts).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert contacts: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *ProfileStore) TouchLogin(ctx context.Context, userId tracker.UserId, success bool, at time.Time) error {
	profile := &Profile{UserId: int64(userId)}
	column := "last_failed_login"
	if success {
		profile.LastLogin = at.UTC()
		column = "last_login"
	} else {
		profile.LastFailedLogin = at.UTC()
	}

	_, err := s.DB.NewInsert().
		Model(profile).
		On("CONFLICT (user_id) DO UPDATE").
		Set("? = EXCLUDED.?", bun.Ident(column), bun.Ident(column)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("touch %s: %w", column, err)
	}
	return nil
}
