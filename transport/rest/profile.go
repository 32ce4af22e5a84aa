package rest

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/issuetrack/tracker"
)

type ProfileController struct {
	Store         tracker.ProfileStore
	ActivityStore tracker.ActivityStore
	Validator     *Validator
}

func (c *ProfileController) InstallTo(requestAuthorizer fiber.Handler, app *fiber.App) {
	app.Get("/profiles", combineHandlers(requestAuthorizer, c.serveProfiles))
	app.Get("/profiles/:user_id", combineHandlers(requestAuthorizer, c.serveProfile))
	app.Put("/profiles", combineHandlers(requestAuthorizer, c.serveUpdateProfile))
}

type contactBody struct {
	Type  string `json:"type" validate:"required,channel"`
	Value string `json:"value" validate:"required,notblank,max=256,nohtml"`
}

type profileBody struct {
	Contacts      []contactBody `json:"contacts" validate:"required,unique=Type,dive"`
	Notifications []string      `json:"notifications" validate:"required,dive,notification"`
}

func (b profileBody) toDomain(userId tracker.UserId) tracker.Profile {
	profile := tracker.EmptyProfile(userId)
	for _, c := range b.Contacts {
		profile.Contacts = append(profile.Contacts, tracker.Contact{
			Type:  tracker.ChannelType(c.Type),
			Value: c.Value,
		})
	}
	for _, n := range b.Notifications {
		profile.Notifications = append(profile.Notifications, tracker.NotificationType(n))
	}
	return profile
}

type contactResponse struct {
	Type  tracker.ChannelType `json:"type"`
	Value string              `json:"value"`
}

type profileResponse struct {
	UserId          tracker.UserId             `json:"userId"`
	Contacts        []contactResponse          `json:"contacts"`
	Notifications   []tracker.NotificationType `json:"notifications"`
	LastLogin       *int64                     `json:"lastLogin"`
	LastFailedLogin *int64                     `json:"lastFailedLogin"`
}

func unixOrNil(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	unix := t.Unix()
	return &unix
}

func newProfileResponse(p tracker.Profile) profileResponse {
	contacts := make([]contactResponse, len(p.Contacts))
	for i, c := range p.Contacts {
		contacts[i] = contactResponse{Type: c.Type, Value: c.Value}
	}
	notifications := p.Notifications
	if notifications == nil {
		notifications = []tracker.NotificationType{}
	}
	return profileResponse{
		UserId:          p.UserId,
		Contacts:        contacts,
		Notifications:   notifications,
		LastLogin:       unixOrNil(p.LastLogin),
		LastFailedLogin: unixOrNil(p.LastFailedLogin),
	}
}

func (c *ProfileController) serveProfiles(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}

	switch tracker.Authorize(user.Roles, tracker.ActionReadProfile) {
	case tracker.ScopeAll:
		profiles, err := c.Store.All(ctx.Context())
		if err != nil {
			return fmt.Errorf("get all profiles: %w", err)
		}
		mapped := make([]profileResponse, len(profiles))
		for i, p := range profiles {
			mapped[i] = newProfileResponse(p)
		}
		return ctx.JSON(mapped)
	case tracker.ScopeOwn:
		profile, err := c.Store.GetExisting(ctx.Context(), user.Id)
		if err != nil {
			if !errors.Is(err, tracker.ErrProfileNotFound) {
				return fmt.Errorf("get own profile: %w", err)
			}
			profile = tracker.EmptyProfile(user.Id)
		}
		return ctx.JSON(newProfileResponse(profile))
	default:
		return fiber.ErrForbidden
	}
}

func (c *ProfileController) serveProfile(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	userId, err := strconv.ParseInt(ctx.Params("user_id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	scope := tracker.Authorize(user.Roles, tracker.ActionReadProfile)
	allowed := scope == tracker.ScopeAll ||
		(scope == tracker.ScopeOwn && tracker.UserId(userId) == user.Id)
	if !allowed {
		return fiber.ErrForbidden
	}

	profile, err := c.Store.GetExisting(ctx.Context(), tracker.UserId(userId))
	if err != nil {
		if errors.Is(err, tracker.ErrProfileNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "profile not found")
		}
		return fmt.Errorf("get profile by user id: %w", err)
	}
	return ctx.JSON(newProfileResponse(profile))
}

func (c *ProfileController) serveUpdateProfile(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if tracker.Authorize(user.Roles, tracker.ActionWriteProfile) == tracker.ScopeNone {
		return fiber.ErrForbidden
	}

	var body profileBody
	if err := ctx.BodyParser(&body); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := c.Validator.Struct(ctx.Context(), body); err != nil {
		return err
	}

	profile := body.toDomain(user.Id)
	created, err := c.Store.Upsert(ctx.Context(), user.Id, profile)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	activity := tracker.Activity{Name: tracker.ActivityProfileUpdated}
	if created {
		activity.Name = tracker.ActivityProfileCreated
	}
	activity.Data = map[string]interface{}{
		"contacts":      len(profile.Contacts),
		"notifications": len(profile.Notifications),
	}
	if err := c.ActivityStore.AddLog(ctx.Context(), user.Id, activity); err != nil {
		return fmt.Errorf("add %s activity log: %w", activity.Name, err)
	}

	requestLog(ctx).
		WithField("user_id", user.Id).
		WithField("created", created).
		Infoln("Profile saved.")
	return ctx.SendStatus(fiber.StatusNoContent)
}
