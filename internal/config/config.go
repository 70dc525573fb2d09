package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Redis    RedisConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// RawURL, when set, wins over the individual parts.
	RawURL   string
	MaxConns int32
}

type UploadConfig struct {
	Dir string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type LogConfig struct {
	Level string
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s ServerConfig) Development() bool {
	return strings.EqualFold(s.Env, "development")
}

func (d DatabaseConfig) URL() string {
	if d.RawURL != "" {
		return d.RawURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

var defaults = map[string]any{
	"host":           "",
	"port":           5000,
	"app_env":        "production",
	"db_host":        "localhost",
	"db_port":        5432,
	"db_user":        "postgres",
	"db_password":    "",
	"db_name":        "employees",
	"db_sslmode":     "disable",
	"database_url":   "",
	"db_max_conns":   10,
	"upload_dir":     "uploads",
	"cors_origins":   "http://localhost:3000,http://localhost:5173",
	"redis_addr":     "",
	"redis_password": "",
	"redis_db":       0,
	"cache_ttl":      "30s",
	"log_level":      "info",
}

// Load reads the environment (after an optional .env file) into AppConfig.
// Every key has a default, so only malformed values are errors.
func Load() (AppConfig, error) {
	_ = godotenv.Load() // load .env if present

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	port, err := intValue(v, "port")
	if err != nil {
		return AppConfig{}, err
	}
	dbPort, err := intValue(v, "db_port")
	if err != nil {
		return AppConfig{}, err
	}
	maxConns, err := intValue(v, "db_max_conns")
	if err != nil {
		return AppConfig{}, err
	}
	if maxConns < 1 {
		return AppConfig{}, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", maxConns)
	}
	redisDB, err := intValue(v, "redis_db")
	if err != nil {
		return AppConfig{}, err
	}
	ttl, err := time.ParseDuration(v.GetString("cache_ttl"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("CACHE_TTL: %w", err)
	}

	return AppConfig{
		Server: ServerConfig{
			Host:        v.GetString("host"),
			Port:        port,
			Env:         v.GetString("app_env"),
			CORSOrigins: splitList(v.GetString("cors_origins")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     dbPort,
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
			RawURL:   v.GetString("database_url"),
			MaxConns: int32(maxConns),
		},
		Upload: UploadConfig{
			Dir: v.GetString("upload_dir"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       redisDB,
			TTL:      ttl,
		},
		Log: LogConfig{
			Level: v.GetString("log_level"),
		},
	}, nil
}

// intValue is strict where viper.GetInt would silently return 0.
func intValue(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", strings.ToUpper(key), raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
