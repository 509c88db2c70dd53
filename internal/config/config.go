package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/luishacm/poc-youtube-data-livestream/internal/schedule"
	"github.com/luishacm/poc-youtube-data-livestream/internal/youtube"
)

const (
	StoreXLSX     = "xlsx"
	StorePostgres = "postgres"
)

// DefaultChannelIDs are the broadcasts monitored when CHANNEL_IDS is unset.
var DefaultChannelIDs = []string{"-gsnysgeWP4", "iYst4wufCgc", "jfKfPfyJRdk"}

type Config struct {
	YouTubeAPIKey  string
	YouTubeBaseURL string
	ChannelIDs     []string

	StoreKind     string
	FileBase      string
	Bootstrap     bool
	DatabaseURL   string
	RedisURL      string
	RedisPassword string

	PollInterval   time.Duration
	RequestTimeout time.Duration
	OnPassError    schedule.Policy
	MaxPasses      int
	LogLevel       zerolog.Level
}

// Load reads the process environment. The API key is not checked here;
// youtube.New rejects an empty one.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("youtube_api_base_url", youtube.DefaultBaseURL)
	v.SetDefault("channel_ids", strings.Join(DefaultChannelIDs, ","))
	v.SetDefault("snapshot_store", StoreXLSX)
	v.SetDefault("snapshot_file_base", "channels_data")
	v.SetDefault("snapshot_bootstrap", true)
	v.SetDefault("poll_seconds", 60)
	v.SetDefault("request_timeout_seconds", 20)
	v.SetDefault("on_pass_error", "stop")
	v.SetDefault("max_passes", 0)
	v.SetDefault("log_level", "info")

	for _, key := range []string{
		"youtube_api_key",
		"youtube_api_base_url",
		"channel_ids",
		"snapshot_store",
		"snapshot_file_base",
		"snapshot_bootstrap",
		"database_url",
		"redis_url",
		"redis_password",
		"poll_seconds",
		"request_timeout_seconds",
		"on_pass_error",
		"max_passes",
		"log_level",
	} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	policy, err := schedule.ParsePolicy(v.GetString("on_pass_error"))
	if err != nil {
		return Config{}, fmt.Errorf("ON_PASS_ERROR: %w", err)
	}
	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log_level")))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := Config{
		YouTubeAPIKey:  v.GetString("youtube_api_key"),
		YouTubeBaseURL: v.GetString("youtube_api_base_url"),
		ChannelIDs:     splitIDs(v.GetString("channel_ids")),
		StoreKind:      strings.ToLower(v.GetString("snapshot_store")),
		FileBase:       v.GetString("snapshot_file_base"),
		Bootstrap:      v.GetBool("snapshot_bootstrap"),
		DatabaseURL:    v.GetString("database_url"),
		RedisURL:       v.GetString("redis_url"),
		RedisPassword:  v.GetString("redis_password"),
		PollInterval:   time.Duration(v.GetInt("poll_seconds")) * time.Second,
		RequestTimeout: time.Duration(v.GetInt("request_timeout_seconds")) * time.Second,
		OnPassError:    policy,
		MaxPasses:      v.GetInt("max_passes"),
		LogLevel:       level,
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreKind {
	case StoreXLSX:
		if c.FileBase == "" {
			return fmt.Errorf("SNAPSHOT_FILE_BASE must not be empty")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing DATABASE_URL (required for SNAPSHOT_STORE=postgres)")
		}
	default:
		return fmt.Errorf("invalid SNAPSHOT_STORE=%q (want xlsx|postgres)", c.StoreKind)
	}
	if len(c.ChannelIDs) == 0 {
		return fmt.Errorf("CHANNEL_IDS is empty")
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("invalid POLL_SECONDS: %s", c.PollInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS: %s", c.RequestTimeout)
	}
	if c.MaxPasses < 0 {
		return fmt.Errorf("invalid MAX_PASSES=%d", c.MaxPasses)
	}
	return nil
}

// splitIDs keeps order and duplicates; only blanks are dropped.
func splitIDs(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
