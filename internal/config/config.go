package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Mail      MailConfig      `mapstructure:"mail"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Timezone     string        `mapstructure:"timezone"` // calendar used to resolve "today"
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // mongo | memory
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
	// Multi-document transactions need a replica set.
	UseTransactions bool `mapstructure:"use_transactions"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"` // empty keeps tokens in memory
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"` // empty disables video uploads
	PublicBaseURL   string `mapstructure:"public_base_url"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	Expiration        time.Duration `mapstructure:"expiration"`
	RefreshExpiration time.Duration `mapstructure:"refresh_expiration"`
}

type MailConfig struct {
	Driver string `mapstructure:"driver"` // ses | log
	From   string `mapstructure:"from"`
	Region string `mapstructure:"region"`
	AppURL string `mapstructure:"app_url"` // base of links sent by email
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	JSON   bool   `mapstructure:"json"`
	Stdout bool   `mapstructure:"stdout"`
}

type RateLimitConfig struct {
	AuthPerMinute int `mapstructure:"auth_per_minute"` // 0 disables
}

// AdminConfig seeds the first admin account at startup. An empty email skips
// the seed.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	FullName string `mapstructure:"full_name"`
}

// Location resolves Server.Timezone, defaulting to UTC.
func (c ServerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LoadConfig reads configuration from a .env file, a config.yaml under path
// and environment variables, in increasing order of precedence.
func LoadConfig(path string) (config Config, err error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, config.validate()
}

// Every key needs a default so AutomaticEnv can override it during Unmarshal.
var defaults = map[string]interface{}{
	"server.address":             ":8080",
	"server.timezone":            "UTC",
	"server.read_timeout":        "10s",
	"server.write_timeout":       "10s",
	"database.driver":            DriverMongo,
	"database.uri":               "mongodb://localhost:27017",
	"database.name":              "gym_app",
	"database.use_transactions":  false,
	"redis.address":              "",
	"redis.password":             "",
	"redis.db":                   0,
	"s3.endpoint":                "",
	"s3.region":                  "us-east-1",
	"s3.access_key_id":           "",
	"s3.secret_access_key":       "",
	"s3.bucket_name":             "",
	"s3.public_base_url":         "",
	"s3.use_ssl":                 true,
	"jwt.secret":                 "",
	"jwt.expiration":             "1h",
	"jwt.refresh_expiration":     "720h",
	"mail.driver":                "log",
	"mail.from":                  "no-reply@gym.local",
	"mail.region":                "us-east-1",
	"mail.app_url":               "http://localhost:3000",
	"log.level":                  "info",
	"log.file":                   "",
	"log.json":                   false,
	"log.stdout":                 true,
	"rate_limit.auth_per_minute": 20,
	"admin.email":                "",
	"admin.password":             "",
	"admin.full_name":            "Administrator",
}

func (c Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if _, err := c.Server.Location(); err != nil {
		return fmt.Errorf("server.timezone: %w", err)
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		return errors.New("admin.password is required when admin.email is set")
	}
	return nil
}

// Warnings lists settings that are valid but weaken guarantees.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Database.Driver == DriverMongo && !c.Database.UseTransactions {
		warnings = append(warnings, "database.use_transactions is off, routine edits and deletes are not atomic")
	}
	return warnings
}
