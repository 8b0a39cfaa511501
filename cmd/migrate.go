package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/project-management/db/migrations"
	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/core/datamodel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files embedded from db/migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	// the SQL files are written for postgres; other drivers get the gorm schema
	if cfg.Database.Driver != "postgres" {
		return autoMigrate(cfg.Database)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.GetDSN())
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}

func autoMigrate(cfg internal.DatabaseConfig) error {
	if migrateRollback {
		return fmt.Errorf("rollback is only supported for the postgres driver, got %q", cfg.Driver)
	}

	gdb, db, err := initDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := gdb.AutoMigrate(datamodel.Models()...); err != nil {
		return fmt.Errorf("auto migrate (%s): %w", cfg.Driver, err)
	}
	log.Printf("schema migrated with gorm for driver %s", cfg.Driver)
	return nil
}
