// Package config loads service settings: defaults, then an optional YAML
// file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ServiceName    = "video-recognition-service"
	ServiceVersion = "1.1.0"

	devJWTSecret = "supersecretjwtkeythatshouldbeverylongandrandominproduction"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Video    VideoConfig    `yaml:"video"`
	Host     HostConfig     `yaml:"host"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type VideoConfig struct {
	SupportedFormats []string `yaml:"supported_formats"`
	MaxSizeMB        int64    `yaml:"max_size_mb"`
	ResponseLanguage string   `yaml:"response_language"`
}

// HostConfig describes the capabilities the host offers. A MediaRoot enables
// native save into that directory; a BaseURL enables the generic upload and
// generate endpoints.
type HostConfig struct {
	MediaRoot      string        `yaml:"media_root"`
	PublicPrefix   string        `yaml:"public_prefix"`
	NativeFormats  []string      `yaml:"native_formats"`
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

type RabbitMQConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	EventsQueue string `yaml:"events_queue"`
	JobsQueue   string `yaml:"jobs_queue"`
}

func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.User, r.Password, r.Host, r.Port)
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: "5001"},
		Log:    LogConfig{Level: "info", Format: "json"},
		Video: VideoConfig{
			SupportedFormats: []string{"mp4", "webm", "ogg", "avi", "mov", "mkv"},
			MaxSizeMB:        100,
			ResponseLanguage: "English",
		},
		Host: HostConfig{
			PublicPrefix:   "/user/videos",
			NativeFormats:  []string{"mp4", "webm", "ogg"},
			RequestTimeout: 2 * time.Minute,
		},
		Database: DatabaseConfig{
			Host:     "db",
			Port:     "5432",
			User:     "user",
			Password: "password",
			Name:     "fiap_x_db",
		},
		RabbitMQ: RabbitMQConfig{
			Host:        "rabbitmq",
			Port:        "5672",
			User:        "guest",
			Password:    "guest",
			EventsQueue: "video_recognition_events",
			JobsQueue:   "video_recognition_jobs",
		},
	}
}

// Load reads path (if non-empty and present) over the defaults and then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Server.JWTSecret == "" {
		cfg.Server.JWTSecret = devJWTSecret
	}
	return cfg, cfg.Validate()
}

// UsingDevSecret reports whether the insecure development secret is in use.
func (c Config) UsingDevSecret() bool {
	return c.Server.JWTSecret == devJWTSecret
}

func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Video.MaxSizeMB <= 0 {
		return fmt.Errorf("video max size must be positive, got %d", c.Video.MaxSizeMB)
	}
	if len(c.Video.SupportedFormats) == 0 {
		return errors.New("at least one supported video format is required")
	}
	if c.Host.RequestTimeout < 0 {
		return errors.New("host request timeout must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.JWTSecret, "JWT_SECRET")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Video.ResponseLanguage, "RESPONSE_LANGUAGE")
	setList(&cfg.Video.SupportedFormats, "SUPPORTED_FORMATS")
	setString(&cfg.Host.MediaRoot, "MEDIA_ROOT")
	setString(&cfg.Host.BaseURL, "HOST_BASE_URL")
	setList(&cfg.Host.NativeFormats, "NATIVE_FORMATS")
	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OpenAI.Model, "OPENAI_MODEL")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASS")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.RabbitMQ.Host, "RABBITMQ_HOST")
	setString(&cfg.RabbitMQ.Port, "RABBITMQ_PORT")
	setString(&cfg.RabbitMQ.User, "RABBITMQ_USER")
	setString(&cfg.RabbitMQ.Password, "RABBITMQ_PASS")

	if v := os.Getenv("MAX_VIDEO_SIZE_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_VIDEO_SIZE_MB %q: %w", v, err)
		}
		cfg.Video.MaxSizeMB = n
	}
	if v := os.Getenv("HOST_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HOST_REQUEST_TIMEOUT %q: %w", v, err)
		}
		cfg.Host.RequestTimeout = d
	}
	for key, dst := range map[string]*bool{"DB_ENABLED": &cfg.Database.Enabled, "RABBITMQ_ENABLED": &cfg.RabbitMQ.Enabled} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = b
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
