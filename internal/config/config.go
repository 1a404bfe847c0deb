package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig возвращается при некорректных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Admin     AdminConfig     `toml:"admin"`
	Booking   BookingConfig   `toml:"booking"`
	Mail      MailConfig      `toml:"mail"`
	Broadcast BroadcastConfig `toml:"broadcast"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int    `toml:"http_port"`
	PublicURL       string `toml:"public_url"`
	ReadTimeout     int    `toml:"read_timeout"`
	WriteTimeout    int    `toml:"write_timeout"`
	IdleTimeout     int    `toml:"idle_timeout"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// AdminConfig токен для административных маршрутов (approve, reject, списки)
type AdminConfig struct {
	Token string `toml:"token"`
}

// BookingConfig бизнес-настройки жизненного цикла заявок
type BookingConfig struct {
	// Смещение часового пояса площадок относительно UTC
	TimezoneOffsetHours int `toml:"timezone_offset_hours"`
	// Сколько минут до начала даты бронирования еще разрешена отмена.
	// 0 - отмена разрешена до полуночи даты бронирования включительно.
	CancellationCutoffMinutes int `toml:"cancellation_cutoff_minutes"`
}

// MailConfig настройки отправки писем через MailerSend
type MailConfig struct {
	Enabled   bool   `toml:"enabled"`
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
	FromName  string `toml:"from_name"`
	Timeout   int    `toml:"timeout"`
}

// BroadcastConfig настройки публикации сообщений в канал через NATS
type BroadcastConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
	Timeout int    `toml:"timeout"`
}

// Load читает конфигурацию из TOML-файла и применяет переопределения из окружения
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные значения
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	}
	if c.Booking.TimezoneOffsetHours < -12 || c.Booking.TimezoneOffsetHours > 14 {
		return fmt.Errorf("%w: booking.timezone_offset_hours out of range", ErrInvalidConfig)
	}
	if c.Booking.CancellationCutoffMinutes < 0 {
		return fmt.Errorf("%w: booking.cancellation_cutoff_minutes must not be negative", ErrInvalidConfig)
	}
	if c.Mail.Enabled && (c.Mail.APIKey == "" || c.Mail.FromEmail == "") {
		return fmt.Errorf("%w: mail.api_key and mail.from_email are required when mail is enabled", ErrInvalidConfig)
	}
	if c.Broadcast.Enabled && (c.Broadcast.URL == "" || c.Broadcast.Subject == "") {
		return fmt.Errorf("%w: broadcast.url and broadcast.subject are required when broadcast is enabled", ErrInvalidConfig)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "venue-booking-service",
		},
		Booking: BookingConfig{
			TimezoneOffsetHours: 8,
		},
		Mail: MailConfig{
			Timeout: 10,
		},
		Broadcast: BroadcastConfig{
			Subject: "venue.bookings.broadcast",
			Timeout: 5,
		},
	}
}

// Секреты не храним в файле
func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("MAILERSEND_API_KEY"); v != "" {
		cfg.Mail.APIKey = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.Admin.Token = v
	}
}
