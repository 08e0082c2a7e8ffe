package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinJWTSecretLen is the shortest HS256 secret the HTTP host accepts.
const MinJWTSecretLen = 32

// httpDisabled as HTTP_ADDR turns the HTTP host off.
const httpDisabled = "off"

var ErrWeakJWTSecret = errors.New("JWT_SECRET must be set to at least 32 bytes while the HTTP host is enabled")

type Config struct {
	BotToken string
	GuildID  string

	// HTTPAddr is empty when the HTTP host is disabled.
	HTTPAddr  string
	JWTSecret string
	JWTIssuer string
	LogLevel  slog.Level

	PollTTL       time.Duration
	SweepInterval time.Duration

	VoteRatePerMinute int
	VoteBurst         int

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		BotToken:   os.Getenv("BOT_TOKEN"),
		GuildID:    os.Getenv("DISCORD_GUILD_ID"),
		HTTPAddr:   getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTIssuer:  getEnv("JWT_ISSUER", "poll-bot"),
		KafkaTopic: getEnv("KAFKA_TOPIC", "poll-votes"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	if cfg.PollTTL, err = getDuration("POLL_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.VoteRatePerMinute, err = getInt("VOTE_RATE_PER_MINUTE", 30); err != nil {
		return Config{}, err
	}
	if cfg.VoteBurst, err = getInt("VOTE_BURST", 5); err != nil {
		return Config{}, err
	}

	if cfg.HTTPAddr == httpDisabled {
		cfg.HTTPAddr = ""
	}
	if cfg.HTTPAddr != "" && len(cfg.JWTSecret) < MinJWTSecretLen {
		return Config{}, ErrWeakJWTSecret
	}

	if cfg.PollTTL > 0 && cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("SWEEP_INTERVAL must be positive when POLL_TTL is set")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
