package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrProfileNotFound = errors.New("profile not found")

// ChannelType is a contact medium a user can be reached through.
type ChannelType string

const (
	ChannelSkype    ChannelType = "SKYPE"
	ChannelSlack    ChannelType = "SLACK"
	ChannelEmail    ChannelType = "EMAIL"
	ChannelPhone    ChannelType = "PHONE"
	ChannelMobile   ChannelType = "MOBILE"
	ChannelTelegram ChannelType = "TELEGRAM"
	ChannelWebsite  ChannelType = "WEBSITE"
	ChannelGithub   ChannelType = "GITHUB"
	ChannelLinkedin ChannelType = "LINKEDIN"
)

var AllChannelTypes = []ChannelType{
	ChannelSkype,
	ChannelSlack,
	ChannelEmail,
	ChannelPhone,
	ChannelMobile,
	ChannelTelegram,
	ChannelWebsite,
	ChannelGithub,
	ChannelLinkedin,
}

func (c ChannelType) Valid() bool {
	for _, known := range AllChannelTypes {
		if c == known {
			return true
		}
	}
	return false
}

// NotificationType is a kind of mail notification a user may subscribe to.
type NotificationType string

const (
	NotificationAssigned                NotificationType = "ASSIGNED"
	NotificationStatus                  NotificationType = "STATUS"
	NotificationThreeDaysBeforeDeadline NotificationType = "THREE_DAYS_BEFORE_DEADLINE"
	NotificationTwoDaysBeforeDeadline   NotificationType = "TWO_DAYS_BEFORE_DEADLINE"
	NotificationOneDayBeforeDeadline    NotificationType = "ONE_DAY_BEFORE_DEADLINE"
	NotificationDeadline                NotificationType = "DEADLINE"
	NotificationOverdue                 NotificationType = "OVERDUE"
)

// Position in this slice is the bit index used by NotificationsMask.
// Append only, never reorder.
var AllNotificationTypes = []NotificationType{
	NotificationAssigned,
	NotificationStatus,
	NotificationThreeDaysBeforeDeadline,
	NotificationTwoDaysBeforeDeadline,
	NotificationOneDayBeforeDeadline,
	NotificationDeadline,
	NotificationOverdue,
}

func (n NotificationType) bit() (int64, bool) {
	for i, known := range AllNotificationTypes {
		if n == known {
			return 1 << uint(i), true
		}
	}
	return 0, false
}

func (n NotificationType) Valid() bool {
	_, ok := n.bit()
	return ok
}

// NotificationsMask packs notification types into a bit set.
func NotificationsMask(types []NotificationType) (int64, error) {
	var mask int64
	for _, t := range types {
		bit, ok := t.bit()
		if !ok {
			return 0, fmt.Errorf("unknown notification type %q", t)
		}
		mask |= bit
	}
	return mask, nil
}

// NotificationsFromMask unpacks a bit set in declaration order.
// Bits without a known notification type are ignored.
func NotificationsFromMask(mask int64) []NotificationType {
	types := make([]NotificationType, 0, len(AllNotificationTypes))
	for i, t := range AllNotificationTypes {
		if mask&(1<<uint(i)) != 0 {
			types = append(types, t)
		}
	}
	return types
}

type Contact struct {
	Type  ChannelType
	Value string
}

type Profile struct {
	UserId          UserId
	Contacts        []Contact
	Notifications   []NotificationType
	LastLogin       time.Time
	LastFailedLogin time.Time
}

// EmptyProfile is what a user sees before saving anything.
func EmptyProfile(userId UserId) Profile {
	return Profile{
		UserId:        userId,
		Contacts:      []Contact{},
		Notifications: []NotificationType{},
	}
}

type ProfileStore interface {
	// Fails with ErrProfileNotFound when the user has not saved a profile yet.
	GetExisting(ctx context.Context, userId UserId) (Profile, error)

	// Replace contacts and notifications of the user's profile, creating it
	// when missing. Reports whether a new profile was created.
	Upsert(ctx context.Context, userId UserId, profile Profile) (bool, error)

	All(ctx context.Context) ([]Profile, error)

	TouchLogin(ctx context.Context, userId UserId, success bool, at time.Time) error
}
