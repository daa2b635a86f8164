package database

import (
	"errors"
	"fmt"
	"log"

	"infraspend/config"
	"infraspend/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open opens a connection for the configured driver without migrating.
func Open(cfg config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local&clientFoundRows=true",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
		)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer; one connection also keeps :memory: databases alive
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Expenditure{},
		&models.Category{},
	)
}

// PasswordHasher hashes the password of the seeded admin.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// Init connects, migrates and seeds the global database
func Init(cfg *config.Config, hasher PasswordHasher) error {
	level := logger.Info
	if cfg.Server.Mode == "release" {
		level = logger.Warn
	}

	db, err := Open(cfg.Database, level)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := Seed(db, cfg.Seed, cfg.Server.Mode == "release", hasher); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	DB = db
	log.Println("database initialized")
	return nil
}

// Seed writes the default categories and the first admin when their tables are empty.
// In release mode the built-in default admin password is refused.
func Seed(db *gorm.DB, seed config.SeedConfig, release bool, hasher PasswordHasher) error {
	var catCount int64
	if err := db.Model(&models.Category{}).Count(&catCount).Error; err != nil {
		return err
	}
	if catCount == 0 {
		var cats []models.Category
		for _, name := range models.DefaultCategories() {
			cats = append(cats, models.Category{Name: name})
		}
		if err := db.Create(&cats).Error; err != nil {
			return err
		}
		log.Printf("seeded %d default categories", len(cats))
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		if seed.AdminUsername == "" || seed.AdminPassword == "" {
			return errors.New("users table is empty and no seed admin is configured")
		}
		if release && seed.AdminPassword == config.DefaultSeedPassword {
			return errors.New("refusing to seed the admin with the default password in release mode, set seed.admin_password")
		}
		hashed, err := hasher.Hash(seed.AdminPassword)
		if err != nil {
			return err
		}
		admin := models.User{
			Username: seed.AdminUsername,
			Password: hashed,
			Name:     "Administrator",
			Role:     models.RoleAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Printf("seeded admin user %q, change its password", admin.Username)
	}

	return nil
}

// GetDB returns the global connection
func GetDB() *gorm.DB {
	return DB
}
