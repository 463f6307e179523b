// Migration script for the resources API schema
package main

import (
	"fmt"
	"os"

	"resapi/config"
	"resapi/dao/model"
	"resapi/util"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectPostgres() *gorm.DB {
	pg := config.GetConfig().Postgres
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		pg.Host, pg.User, pg.Password, pg.DBName, pg.Port, pg.SSLMode, pg.TimeZone)
	db, err := gorm.Open(postgres.Open(dsn))
	if err != nil {
		panic(fmt.Errorf("connect to postgres: %w", err))
	}
	return db
}

func main() {
	db := ConnectPostgres()

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// create `quota_changes` audit table
			ID: "2026071015302",
			Migrate: func(tx *gorm.DB) error {
				// it's a good practice to copy the struct inside the function,
				// so side effects are prevented if the original struct changes during the time
				type QuotaChange struct {
					gorm.Model
					UserID uint   `gorm:"index:quota_change_user;not null"`
					Detail []byte `gorm:"type:jsonb"`
				}
				return tx.Migrator().CreateTable(&QuotaChange{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("quota_changes")
			},
		},
	})

	m.InitSchema(func(tx *gorm.DB) error {
		err := tx.AutoMigrate(
			&model.User{},
			&model.UserQuota{},
			&model.Resource{},
			&model.QuotaChange{},
		)
		if err != nil {
			return err
		}

		// seed the first admin; password comes from the environment so
		// it never lands in the repo
		email := os.Getenv("RESAPI_ADMIN_EMAIL")
		password := os.Getenv("RESAPI_ADMIN_PASSWORD")
		if email == "" || password == "" {
			return nil
		}
		hash, err := util.HashPassword(password, config.GetConfig().Auth.BcryptCost)
		if err != nil {
			return err
		}
		admin := model.User{
			Email:        email,
			PasswordHash: hash,
			IsStaff:      true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserQuota{UserID: admin.ID}).Error
	})

	if err := m.Migrate(); err != nil {
		panic(fmt.Errorf("could not migrate: %w", err))
	}
}
