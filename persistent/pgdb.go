package persistent

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

func PgOpen(ctx context.Context, pgDsn string, verbose bool) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(pgDsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping pg database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if verbose {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

// Running integration tests requires real pg db instance, but we
// don't have enought time to start db for every test so we will start db once
// (see testenv) and then pass datasource to as many tests as we want.

func PgOpenTest(ctx context.Context) *bun.DB {
	db, err := PgOpen(ctx, TestEnvDsn(), os.Getenv("DB_VERBOSE") == "true")
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open test pg database.")
	}
	if err := CreateSchema(ctx, db); err != nil {
		logrus.WithError(err).Fatalln("Could not create test schema.")
	}
	return db
}

func TestEnvDsn() string {
	return os.Getenv("PGDB_DSN")
}

func SetTestEnvDsn(dsn string) {
	os.Setenv("PGDB_DSN", dsn)
}

// CreateSchema creates missing tables. Existing tables are left untouched.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*User)(nil),
		(*Profile)(nil),
		(*ActivityLog)(nil),
	}
	for _, model := range models {
		modelType := reflect.TypeOf(model)
		logrus.WithField("model", modelType).Debugln("Creating table.")
		_, err := db.NewCreateTable().
			IfNotExists().
			Model(model).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create table %s: %w", modelType, err)
		}
	}

	_, err := db.NewCreateTable().
		IfNotExists().
		Model((*Contact)(nil)).
		ForeignKey(`("profile_id") REFERENCES "profile" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create table contact: %w", err)
	}
	return nil
}
