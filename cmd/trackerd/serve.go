package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/issuetrack/tracker"
	"github.com/issuetrack/tracker/config"
	"github.com/issuetrack/tracker/inmem"
	"github.com/issuetrack/tracker/persistent"
	"github.com/issuetrack/tracker/transport/rest"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tidwall/buntdb"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :2137)")
	serveCmd.Flags().Bool("inmem", false, "keep everything in memory, seeded with default accounts")
	_ = v.BindPFlag("httpaddr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("inmem", serveCmd.Flags().Lookup("inmem"))
}

type stores struct {
	users      tracker.UserStore
	profiles   tracker.ProfileStore
	activities tracker.ActivityStore
	sessions   tracker.SessionStore
}

func newServer(s stores, cfg config.Config) *fiber.App {
	authController := rest.AuthController{
		SessionStore:  s.sessions,
		UserStore:     s.users,
		ProfileStore:  s.profiles,
		ActivityStore: s.activities,
	}
	profileController := rest.ProfileController{
		Store:         s.profiles,
		ActivityStore: s.activities,
		Validator:     rest.NewValidator(),
	}
	activityController := rest.ActivityController{Store: s.activities}
	sessionController := rest.SessionController{Store: s.sessions}

	server := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          rest.ErrorHandler,
	})
	server.Use(rest.LogHandler())

	api := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: rest.ErrorHandler,
	})
	api.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))

	requestAuthorizer := rest.RequestAuthorizer(s.sessions, s.users)
	rest.InstallStatus(requestAuthorizer, api)
	authController.InstallTo(api)
	profileController.InstallTo(requestAuthorizer, api)
	activityController.InstallTo(requestAuthorizer, api)
	sessionController.InstallTo(requestAuthorizer, api)
	api.Use(rest.NotFoundHandler)

	server.Mount("/api/", api)
	server.Use(rest.NotFoundHandler)
	return server
}

func serve(ctx context.Context, cfg config.Config) error {
	logrus.Infoln("Starting tracker.")

	bdbPath := cfg.BuntdbPath
	if cfg.InMem {
		bdbPath = ":memory:"
	}
	bdb, err := buntdb.Open(bdbPath)
	if err != nil {
		return fmt.Errorf("open buntdb: %w", err)
	}
	defer bdb.Close()

	var s stores
	if cfg.InMem {
		logrus.Warnln("Using in-memory stores. Data is lost on shutdown.")
		activities := inmem.NewActivityStore()
		s = stores{
			users:      inmem.NewUserStore(),
			profiles:   inmem.NewProfileStore(),
			activities: activities,
			sessions:   &persistent.SessionStore{Buntdb: bdb, ActivityStore: activities},
		}
		if err := seedUsers(ctx, s.users, defaultSeedPassword); err != nil {
			return fmt.Errorf("seed in-memory users: %w", err)
		}
	} else {
		logrus.Infoln("Opening database.")
		db, err := persistent.PgOpen(ctx, cfg.PostgresDsn, cfg.DbVerbose)
		if err != nil {
			return err
		}
		defer db.Close()

		activities := &persistent.ActivityStore{DB: db}
		s = stores{
			users:      &persistent.UserStore{DB: db},
			profiles:   &persistent.ProfileStore{DB: db},
			activities: activities,
			sessions:   &persistent.SessionStore{Buntdb: bdb, ActivityStore: activities},
		}
	}

	server := newServer(s, cfg)
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- server.Listen(cfg.HttpAddr)
	}()
	logrus.WithField("addr", cfg.HttpAddr).Infoln("Listening... To shut down use ^C")

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	case <-interrupted:
	}

	logrus.Infoln("Shutting down...")
	if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
		logrus.WithError(err).Warningln("Fiber shutdown failed.")
	}
	return nil
}
