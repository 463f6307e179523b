// Description: generate typed CRUD query code for all tables
package main

import (
	"fmt"

	"resapi/config"
	"resapi/dao/model"

	"gorm.io/driver/postgres"
	"gorm.io/gen"
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
	g := gen.NewGenerator(gen.Config{
		OutPath: "./dao/query",
		Mode:    gen.WithDefaultQuery | gen.WithQueryInterface,
	})

	g.UseDB(ConnectPostgres())

	g.ApplyBasic(
		model.User{},
		model.UserQuota{},
		model.Resource{},
		model.QuotaChange{},
	)

	g.Execute()
}
