package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type AuthConfig struct {
	AccessSecret string
}

type ContractsConfig struct {
	Seed      int64
	WeekStart time.Weekday
	Location  *time.Location
}

type Config struct {
	Environment string
	Storage     string
	HTTP        HTTPConfig
	DB          DBConfig
	Mongo       MongoConfig
	Auth        AuthConfig
	Contracts   ContractsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Storage:     strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("MONGO_URI"),
			Database:   v.GetString("MONGO_DB"),
			Collection: v.GetString("MONGO_COLLECTION"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Contracts: ContractsConfig{
			Seed: v.GetInt64("CONTRACTS_SEED"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Storage == "" {
		cfg.Storage = StorageMemory
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "freight_market"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "kv_store"
	}
	if cfg.Contracts.Seed == 0 {
		cfg.Contracts.Seed = time.Now().UnixNano()
	}

	weekStart, err := parseWeekday(v.GetString("CONTRACTS_WEEK_START"))
	if err != nil {
		return nil, err
	}
	cfg.Contracts.WeekStart = weekStart

	loc := time.Local
	if tz := strings.TrimSpace(v.GetString("CONTRACTS_TIMEZONE")); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid CONTRACTS_TIMEZONE: %w", err)
		}
	}
	cfg.Contracts.Location = loc

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required for postgres storage")
		}
	case StorageMongo:
		if cfg.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required for mongo storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage)
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}

func parseWeekday(raw string) (time.Weekday, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == raw {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid CONTRACTS_WEEK_START %q", raw)
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
