package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Database  DatabaseConfig `yaml:"database"`
	Redis     RedisConfig    `yaml:"redis"`
	Kafka     KafkaConfig    `yaml:"kafka"`
	Leave     LeaveConfig    `yaml:"leave"`
	JWTSecret string         `yaml:"-"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	TraceStdout    bool          `yaml:"trace_stdout"`
}

type DatabaseConfig struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLMode    string `yaml:"ssl_mode"`
	MaxRetries int    `yaml:"max_retries"`
}

// DSN is the keyword/value form understood by gorm's postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// URL is the form golang-migrate expects.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type KafkaConfig struct {
	Broker          string `yaml:"broker"`
	TransitionTopic string `yaml:"transition_topic"`
	ConsumerGroup   string `yaml:"consumer_group"`
}

type LeaveConfig struct {
	WeekendDays     []string      `yaml:"weekend_days"`
	Notifier        string        `yaml:"notifier"`
	DecisionLockTTL time.Duration `yaml:"decision_lock_ttl"`
}

const (
	NotifierOutbox = "outbox"
	NotifierKafka  = "kafka"
	NotifierNoop   = "noop"
)

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           "3000",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Database: DatabaseConfig{
			Port:       "5432",
			SSLMode:    "disable",
			MaxRetries: 5,
		},
		Kafka: KafkaConfig{
			TransitionTopic: "hr.leave.transition.v1",
			ConsumerGroup:   "go-leave-audit",
		},
		Leave: LeaveConfig{
			WeekendDays:     []string{"saturday", "sunday"},
			Notifier:        NotifierOutbox,
			DecisionLockTTL: 10 * time.Second,
		},
	}
}

// Load reads .env (if present), an optional YAML file named by CONFIG_PATH,
// and finally environment variables, later sources winning.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.overlayEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) overlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	return nil
}

func (c *Config) overlayEnv() error {
	setString("PORT", &c.Server.Port)
	setString("DB_HOST", &c.Database.Host)
	setString("DB_PORT", &c.Database.Port)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.Name)
	setString("DB_SSLMODE", &c.Database.SSLMode)
	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("KAFKA_BROKER", &c.Kafka.Broker)
	setString("KAFKA_LEAVE_TOPIC", &c.Kafka.TransitionTopic)
	setString("KAFKA_CONSUMER_GROUP", &c.Kafka.ConsumerGroup)
	setString("LEAVE_NOTIFIER", &c.Leave.Notifier)
	setString("JWT_SECRET", &c.JWTSecret)

	if v := os.Getenv("LEAVE_WEEKEND_DAYS"); v != "" {
		c.Leave.WeekendDays = splitList(v)
	}
	if v := os.Getenv("DB_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: DB_MAX_RETRIES: %w", err)
		}
		c.Database.MaxRetries = n
	}
	if v := os.Getenv("LEAVE_DECISION_LOCK_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: LEAVE_DECISION_LOCK_TTL: %w", err)
		}
		c.Leave.DecisionLockTTL = d
	}
	if v := os.Getenv("TRACE_STDOUT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: TRACE_STDOUT: %w", err)
		}
		c.Server.TraceStdout = b
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("config: server.port must be set")
	}
	if c.Database.MaxRetries < 1 {
		return fmt.Errorf("config: database.max_retries must be positive")
	}
	switch c.Leave.Notifier {
	case NotifierOutbox, NotifierKafka, NotifierNoop:
	default:
		return fmt.Errorf("config: unsupported leave.notifier %q", c.Leave.Notifier)
	}
	return nil
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
