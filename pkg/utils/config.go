package utils

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
	Migrate  bool
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	UserCacheTTL time.Duration
}

type JWTConfig struct {
	Algorithm       string
	Secret          string
	PrivateKeyPath  string
	PublicKeyPath   string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	Leeway          time.Duration
	Issuer          string
	UpdateLastLogin bool
}

type PasswordConfig struct {
	Hasher         string
	BcryptCost     int
	Argon2Time     uint32
	Argon2MemoryKB uint32
	Argon2Threads  uint
}

type AuthConfig struct {
	// DeleteSelfOrAdminOnly restricts DELETE /api/delete-user/{id} to the
	// account owner or staff. Off by default.
	DeleteSelfOrAdminOnly bool
}

// LoadConfig reads an optional env file at path and overlays process
// environment variables on top of it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("HTTP_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			Migrate:  v.GetBool("DB_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:         v.GetString("REDIS_ADDR"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			UserCacheTTL: v.GetDuration("USER_CACHE_TTL"),
		},
		JWT: JWTConfig{
			Algorithm:       v.GetString("JWT_ALGORITHM"),
			Secret:          v.GetString("JWT_SECRET"),
			PrivateKeyPath:  v.GetString("JWT_PRIVATE_KEY_PATH"),
			PublicKeyPath:   v.GetString("JWT_PUBLIC_KEY_PATH"),
			AccessTTL:       v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL:      v.GetDuration("JWT_REFRESH_TTL"),
			Leeway:          v.GetDuration("JWT_LEEWAY"),
			Issuer:          v.GetString("JWT_ISSUER"),
			UpdateLastLogin: v.GetBool("JWT_UPDATE_LAST_LOGIN"),
		},
		Password: PasswordConfig{
			Hasher:         strings.ToLower(v.GetString("PASSWORD_HASHER")),
			BcryptCost:     v.GetInt("BCRYPT_COST"),
			Argon2Time:     v.GetUint32("ARGON2_TIME"),
			Argon2MemoryKB: v.GetUint32("ARGON2_MEMORY_KB"),
			Argon2Threads:  v.GetUint("ARGON2_THREADS"),
		},
		Auth: AuthConfig{
			DeleteSelfOrAdminOnly: v.GetBool("AUTH_DELETE_SELF_OR_ADMIN_ONLY"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "profile-auth")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")

	v.SetDefault("HTTP_READ_TIMEOUT", "10s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "15s")
	v.SetDefault("HTTP_IDLE_TIMEOUT", "60s")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIGRATE", true)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("USER_CACHE_TTL", "5m")

	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_ACCESS_TTL", "5m")
	v.SetDefault("JWT_REFRESH_TTL", "24h")
	v.SetDefault("JWT_LEEWAY", "0s")
	v.SetDefault("JWT_UPDATE_LAST_LOGIN", false)

	v.SetDefault("PASSWORD_HASHER", "bcrypt")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ARGON2_TIME", 3)
	v.SetDefault("ARGON2_MEMORY_KB", 64*1024)
	v.SetDefault("ARGON2_THREADS", 2)

	v.SetDefault("AUTH_DELETE_SELF_OR_ADMIN_ONLY", false)
}

// Validate reports configuration combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Password.Hasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.Password.Hasher)
	}

	if c.Password.Argon2Threads > math.MaxUint8 {
		return fmt.Errorf("ARGON2_THREADS must be at most %d, got %d", math.MaxUint8, c.Password.Argon2Threads)
	}

	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required for %s", c.JWT.Algorithm)
		}
	case "EdDSA":
		if c.JWT.PrivateKeyPath == "" || c.JWT.PublicKeyPath == "" {
			return errors.New("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH are required for EdDSA")
		}
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWT.Algorithm)
	}

	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}

	return nil
}
