package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"library_backend/internals/configs"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("[DB] connecting to PostgreSQL...")

	db, err := Open(configs.App.PostgresDSN(), gormLogger.Warn)
	if err != nil {
		log.Fatalf("[DB] connect failed: %v", err)
	}
	DB = db
	log.Println("[DB] connected")
}

// Open returns a gorm handle with duplicate-key errors translated to gorm.ErrDuplicatedKey.
func Open(dsn string, level gormLogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("[DB] pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.App.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(configs.App.DBMaxIdleConns)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(DB); err != nil {
			log.Printf("[DB] warm-up ping err: %v", err)
		}
	}()
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
