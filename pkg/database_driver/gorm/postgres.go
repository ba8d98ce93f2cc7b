package gorm

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB struct
type DB struct {
	Postgres *gorm.DB
}

// Options struct - connection settings for PostgreSQL
type Options struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	SSLMode  bool
	// MaxOpenConns of zero leaves the driver default
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration
}

// DSN builds the libpq connection string
func (o Options) DSN() string {
	sslmode := "disable"
	if o.SSLMode {
		sslmode = "require"
	}
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=%v connect_timeout=0",
		o.Host, o.Username, o.Password, o.DBName, o.Port, sslmode)
}

// ConnectToPostgreSQL func
func ConnectToPostgreSQL(opts Options) (*DB, error) {
	if opts.Host == "" && opts.Port == "" && opts.DBName == "" {
		return nil, errors.New("cannot estabished the connection")
	}

	dial := postgres.Open(opts.DSN())
	pg, err := gorm.Open(dial, &gorm.Config{
		DryRun:         false,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		logrus.Error(err)
		return nil, err
	}

	sqlDB, err := pg.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLife)
	}

	logrus.Infof("Connected to postgres %s:%s/%s", opts.Host, opts.Port, opts.DBName)
	return &DB{Postgres: pg}, nil
}

// DisconnectPostgres func
func DisconnectPostgres(db *gorm.DB) {
	sqlDb, err := db.DB()
	if err != nil {
		logrus.Error(err)
		return
	}
	err = sqlDb.Close()
	if err != nil {
		logrus.Error(err)
	}
	logrus.Println("Connected with postgres has closed")
}
