package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/issuetrack/tracker"
	"github.com/issuetrack/tracker/persistent"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultSeedPassword = "changeme"

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create one account per role for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.InMem = false
		if err := cfg.Validate(); err != nil {
			return err
		}
		db, err := persistent.PgOpen(cmd.Context(), cfg.PostgresDsn, cfg.DbVerbose)
		if err != nil {
			return err
		}
		defer db.Close()

		return seedUsers(cmd.Context(), &persistent.UserStore{DB: db}, seedPassword)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", defaultSeedPassword, "password of every seeded account")
}

var seedRoles = []tracker.RoleId{
	tracker.RoleIdAdmin,
	tracker.RoleIdManager,
	tracker.RoleIdDev,
	tracker.RoleIdGuest,
}

// seedUsers registers <role>@tracker.local for every role. Existing
// accounts are left untouched.
func seedUsers(ctx context.Context, store tracker.UserStore, password string) error {
	hash, err := tracker.HashPassword(password)
	if err != nil {
		return err
	}
	for _, role := range seedRoles {
		email := tracker.Email(string(role) + "@tracker.local")
		_, err := store.Register(ctx, tracker.User{
			Email:        email,
			DisplayName:  string(role),
			PasswordHash: hash,
			Roles:        tracker.RolesByIds([]tracker.RoleId{role}),
		})
		switch {
		case errors.Is(err, tracker.ErrUserExists):
			logrus.WithField("email", email).Infoln("Account already exists.")
		case err != nil:
			return fmt.Errorf("register %s: %w", email, err)
		default:
			logrus.WithField("email", email).Infoln("Account created.")
		}
	}
	return nil
}
