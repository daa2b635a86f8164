package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigYAML is the built-in configuration every deployment starts from.
//
//go:embed default.yaml
var DefaultConfigYAML []byte

// Config application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Security SecurityConfig `mapstructure:"security"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	BaseURL     string   `mapstructure:"base_url"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig database settings. Driver is "mysql" or "sqlite"; Path is only
// used by sqlite.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
	Path     string `mapstructure:"path"`
}

// JWTConfig session token settings
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// EmailConfig SMTP settings for review notifications
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// AMQPConfig broker settings for expenditure review events
type AMQPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// StorageConfig attachment storage settings
type StorageConfig struct {
	Dir         string `mapstructure:"dir"`
	URLPrefix   string `mapstructure:"url_prefix"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

// SecurityConfig login throttling
type SecurityConfig struct {
	LoginMaxAttempts   int           `mapstructure:"login_max_attempts"`
	LoginWindowSeconds int           `mapstructure:"login_window_seconds"`
	LoginWindow        time.Duration `mapstructure:"-"`
}

// DefaultSeedPassword is the admin password shipped in default.yaml. It is
// refused in release mode.
const DefaultSeedPassword = "admin123"

// SeedConfig first admin account, created only when the users table is empty
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

var (
	// GlobalConfig global configuration instance
	GlobalConfig *Config
)

// LoadConfig loads configuration.
// Priority: environment > external file > embedded defaults.
// configPath is optional.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}
	log.Println("loaded embedded default config")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Printf("warning: cannot read config file %s: %v", configPath, err)
		} else {
			log.Printf("merged config file: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/infraspend")
		externalViper.AddConfigPath("$HOME/.infraspend")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Printf("warning: merge external config: %v", err)
			} else {
				log.Printf("merged config file: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	v.SetEnvPrefix("INFRASPEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	GlobalConfig = &cfg

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 24
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireHours) * time.Hour

	if cfg.Security.LoginMaxAttempts <= 0 {
		cfg.Security.LoginMaxAttempts = 10
	}
	if cfg.Security.LoginWindowSeconds <= 0 {
		cfg.Security.LoginWindowSeconds = 60
	}
	cfg.Security.LoginWindow = time.Duration(cfg.Security.LoginWindowSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if cfg.Storage.MaxUploadMB <= 0 {
		cfg.Storage.MaxUploadMB = 10
	}
}

// GetConfig returns the global configuration
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("config not initialized, call LoadConfig first")
	}
	return GlobalConfig
}

// IsRelease reports whether the server runs in gin release mode.
func IsRelease() bool {
	return GlobalConfig != nil && GlobalConfig.Server.Mode == "release"
}

// PrintConfig prints the active configuration without secrets
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Printf("active config:")
	log.Printf("  server: %s (mode: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	if GlobalConfig.Database.Driver == "sqlite" {
		log.Printf("  database: sqlite %s", GlobalConfig.Database.Path)
	} else {
		log.Printf("  database: %s@%s:%s/%s",
			GlobalConfig.Database.Username,
			GlobalConfig.Database.Host,
			GlobalConfig.Database.Port,
			GlobalConfig.Database.DBName)
	}
	log.Printf("  email: %v", GlobalConfig.Email.Enabled)
	log.Printf("  amqp: %v", GlobalConfig.AMQP.Enabled)
	log.Printf("  attachments: %s", GlobalConfig.Storage.Dir)
}
