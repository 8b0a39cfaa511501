package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/project-management/internal/auth"
	"github.com/frahmantamala/project-management/internal/bootstrap"
	userPostgres "github.com/frahmantamala/project-management/internal/user/postgres"
	"github.com/frahmantamala/project-management/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap admin account",
	Long:  `Create the configured ADMIN account unless an administrator already exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		gdb, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		seeder := bootstrap.NewSeeder(
			userPostgres.NewUserRepository(gdb),
			auth.NewBcryptHasher(cfg.Security.BCryptCost),
			cfg.Bootstrap,
			logger.LoggerWrapper(),
		)

		created, err := seeder.EnsureAdmin(context.Background())
		if err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		if created {
			log.Printf("Seeded admin user: %s", cfg.Bootstrap.AdminUsername)
			return
		}
		log.Println("admin user already exists; nothing to seed")
	},
}
