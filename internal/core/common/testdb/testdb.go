// Package testdb opens throwaway sqlite databases carrying the full schema.
package testdb

import (
	"fmt"

	"github.com/frahmantamala/project-management/internal/core/datamodel"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory gorm handle and an sqlx handle over the same
// connection.
func Open() (*gorm.DB, *sqlx.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	// each new connection would see its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(datamodel.Models()...); err != nil {
		return nil, nil, err
	}

	return db, sqlx.NewDb(sqlDB, "sqlite3"), nil
}

// CreateUser inserts a user with a placeholder hash.
func CreateUser(db *gorm.DB, username, name, role string) (*userDatamodel.User, error) {
	u := &userDatamodel.User{
		Name:         name,
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		Role:         role,
	}
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}
