package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMySQL  = "mysql"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	LLM      LLMConfig      `toml:"llm"`
	Store    StoreConfig    `toml:"store"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	MySQL    MySQLConfig    `toml:"mysql"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name           string   `toml:"name"`
	Env            string   `toml:"env"`
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	GinMode        string   `toml:"gin_mode"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AuthConfig protects the API with an owner password. Auth is disabled while
// OwnerPasswordHash is empty.
type AuthConfig struct {
	OwnerName         string `toml:"owner_name"`
	OwnerPasswordHash string `toml:"owner_password_hash"`
	JWTSecret         string `toml:"jwt_secret"`
	JWTExpireMinute   int    `toml:"jwt_expire_minute"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	SpeechModel    string `toml:"speech_model"`
	Voice          string `toml:"voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type StoreConfig struct {
	Driver    string `toml:"driver"`
	KeyPrefix string `toml:"key_prefix"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig enables the archive journal when URL is set.
type RabbitMQConfig struct {
	URL          string `toml:"url"`
	JournalQueue string `toml:"journal_queue"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverSQLite, StoreDriverMySQL, StoreDriverRedis, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

// GatewayConfigured reports whether the AI gateway credential is present.
func (c *Config) GatewayConfigured() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.Auth.OwnerPasswordHash) != ""
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "gemcanvas",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
				"http://localhost:3000",
			},
		},
		Auth: AuthConfig{
			OwnerName:       "owner",
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 720,
		},
		LLM: LLMConfig{
			Provider:       ProviderGemini,
			Model:          "gemini-2.5-flash",
			SpeechModel:    "gemini-2.5-flash-preview-tts",
			Voice:          "Kore",
			TimeoutSeconds: 90,
		},
		Store: StoreConfig{
			Driver: StoreDriverSQLite,
		},
		SQLite: SQLiteConfig{
			Path: "data/gemcanvas.db",
		},
		MySQL: MySQLConfig{
			Host:   "127.0.0.1",
			Port:   3306,
			User:   "root",
			DB:     "gemcanvas",
			Params: "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		RabbitMQ: RabbitMQConfig{
			JournalQueue: "gem.journal",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.AllowedOrigins = getEnvAsList("APP_ALLOWED_ORIGINS", cfg.App.AllowedOrigins)

	cfg.Auth.OwnerName = getEnv("OWNER_NAME", cfg.Auth.OwnerName)
	cfg.Auth.OwnerPasswordHash = getEnv("OWNER_PASSWORD_HASH", cfg.Auth.OwnerPasswordHash)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.APIKey = getEnv("GEMINI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.SpeechModel = getEnv("LLM_SPEECH_MODEL", cfg.LLM.SpeechModel)
	cfg.LLM.Voice = getEnv("LLM_VOICE", cfg.LLM.Voice)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.Store.Driver = getEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.KeyPrefix = getEnv("STORE_KEY_PREFIX", cfg.Store.KeyPrefix)
	cfg.SQLite.Path = getEnv("SQLITE_PATH", cfg.SQLite.Path)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.JournalQueue = getEnv("RABBITMQ_JOURNAL_QUEUE", cfg.RabbitMQ.JournalQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
