package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/avatarops-ai/avatarops/pkg/ai"
	"github.com/avatarops-ai/avatarops/pkg/live"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr     string      `toml:"addr"`
	Appid    string      `toml:"appid"`
	Log      Log         `toml:"log"`
	Postgres PGConfig    `toml:"postgres"`
	Redis    RedisConfig `toml:"redis"`

	AI        AIConfig            `toml:"ai"`
	Streaming live.ProviderConfig `toml:"streaming"`
	Session   SessionConfig       `toml:"session"`
	Security  Security            `toml:"security"`
	Sweeper   SweeperConfig       `toml:"sweeper"`
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("AVATAROPS_API_SERVICE_ADDRESS")
	c.Appid = os.Getenv("AVATAROPS_APPID")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.AI.FromENV()
	c.Streaming.Endpoint = os.Getenv("AVATAROPS_STREAMING_ENDPOINT")
	c.Streaming.APIKey = os.Getenv("AVATAROPS_STREAMING_API_KEY")
	c.Security.JWTSecret = os.Getenv("AVATAROPS_JWT_SECRET")
}

func (c CoreConfig) DefaultAppid() string {
	if c.Appid == "" {
		return "avatarops"
	}
	return c.Appid
}

type AIConfig struct {
	Token      string              `toml:"token"`
	Endpoint   string              `toml:"endpoint"`
	Summarizer ai.SummarizerConfig `toml:"summarizer"`
}

func (c *AIConfig) FromENV() {
	c.Token = os.Getenv("AVATAROPS_OPENAI_TOKEN")
	c.Endpoint = os.Getenv("AVATAROPS_OPENAI_ENDPOINT")
}

type SessionConfig struct {
	CloseTimeout   time.Duration `toml:"close_timeout"`
	PersistTimeout time.Duration `toml:"persist_timeout"`
}

func (c SessionConfig) forLive() live.SessionConfig {
	return live.SessionConfig{
		CloseTimeout:   c.CloseTimeout,
		PersistTimeout: c.PersistTimeout,
	}
}

type Security struct {
	JWTSecret string `toml:"jwt_secret"`
	// TokenTTLHours bounds how long an issued auth token stays valid.
	TokenTTLHours int `toml:"token_ttl_hours"`
}

func (s Security) TokenTTL() time.Duration {
	if s.TokenTTLHours <= 0 {
		return 24 * 7 * time.Hour
	}
	return time.Duration(s.TokenTTLHours) * time.Hour
}

type SweeperConfig struct {
	// Spec is a cron expression; empty disables the stale sweeper.
	Spec string `toml:"spec"`
	// StaleAfterHours marks active conversations completed after this much
	// inactivity.
	StaleAfterHours int `toml:"stale_after_hours"`
}

func (s SweeperConfig) StaleAfter() time.Duration {
	if s.StaleAfterHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.StaleAfterHours) * time.Hour
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("AVATAROPS_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("AVATAROPS_REDIS_ADDR")
	r.Password = os.Getenv("AVATAROPS_REDIS_PASSWORD")
	if dbStr := os.Getenv("AVATAROPS_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("AVATAROPS_LOG_LEVEL")
	l.Path = os.Getenv("AVATAROPS_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
