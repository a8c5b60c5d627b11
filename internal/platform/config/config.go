package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	TLS  bool   `yaml:"tls"`
}

// StorageConfig: backend は xlsx / mysql / sqlite / memory
type StorageConfig struct {
	Backend    string        `yaml:"backend"`
	XLSXPath   string        `yaml:"xlsx_path"`
	SQLitePath string        `yaml:"sqlite_path"`
	ReadWait   time.Duration `yaml:"read_wait"`
	WriteWait  time.Duration `yaml:"write_wait"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PhotosConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Timezone    string         `yaml:"timezone"`
	Server      ServerConfig   `yaml:"server"`
	Certificate Certs          `yaml:"certificate"`
	Storage     StorageConfig  `yaml:"storage"`
	DB          DatabaseConfig `yaml:"database"`
	Redis       RedisConfig    `yaml:"redis"`
	Photos      PhotosConfig   `yaml:"photos"`
	Slack       SlackConfig    `yaml:"slack"`
	Auth        AuthConfig     `yaml:"auth"`
	Log         LogConfig      `yaml:"log"`
}

// Default は設定ファイルが無い項目の既定値。
func Default() Config {
	return Config{
		Version:  "1",
		Mode:     "dev",
		Timezone: "Asia/Tokyo",
		Server:   ServerConfig{Addr: ":8443"},
		Storage: StorageConfig{
			Backend:    "xlsx",
			XLSXPath:   "data/portal.xlsx",
			SQLitePath: "data/portal.db",
			ReadWait:   10 * time.Second,
			WriteWait:  5 * time.Second,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Photos: PhotosConfig{
			Timeout:           15 * time.Second,
			CacheTTL:          6 * time.Hour,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Log: LogConfig{Level: "info"},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}

	// .env は無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// 秘密情報は環境変数を優先
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORTAL_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Slack.WebhookURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
}

func (c *Config) Validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("mode は dev か release: %q", c.Mode)
	}
	switch c.Storage.Backend {
	case "xlsx", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("未対応の storage.backend: %q", c.Storage.Backend)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.enabled なのに jwt_secret が空です")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone が不正: %w", err)
	}
	return nil
}

// Location は検証済み前提。
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
