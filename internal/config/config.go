package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SalonScheduling/internal/calendar"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Tracing  TracingConfig  `toml:"tracing"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Booking  BookingConfig  `toml:"booking"`
	Calendar CalendarConfig `toml:"calendar"`
	Catalog  CatalogConfig  `toml:"catalog"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type StorageConfig struct {
	Driver string `toml:"driver"` // memory | postgres
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

type TracingConfig struct {
	Enabled     bool    `toml:"enabled"`
	Endpoint    string  `toml:"endpoint"` // host:port OTLP gRPC коллектора
	Insecure    bool    `toml:"insecure"`
	SampleRatio float64 `toml:"sample_ratio"`
}

type KafkaConfig struct {
	Enabled        bool   `toml:"enabled"`
	Brokers        string `toml:"brokers"` // через запятую
	Topic          string `toml:"topic"`
	WriteTimeoutMs int    `toml:"write_timeout_ms"`
}

// WriteTimeout таймаут записи события
func (k KafkaConfig) WriteTimeout() time.Duration {
	return time.Duration(k.WriteTimeoutMs) * time.Millisecond
}

type BookingConfig struct {
	LockTimeoutMs           int `toml:"lock_timeout_ms"`
	MinChangeNoticeMinutes  int `toml:"min_change_notice_minutes"` // 0 = изменения разрешены всегда
	MaxSerializationRetries int `toml:"max_serialization_retries"`
}

// LockTimeout сколько ждать блокировку области (сотрудник, дата)
func (b BookingConfig) LockTimeout() time.Duration {
	return time.Duration(b.LockTimeoutMs) * time.Millisecond
}

// ChangePolicy политика отмены и переноса записей
func (b BookingConfig) ChangePolicy() domain.ChangePolicy {
	return domain.MinNoticePolicy{Minutes: b.MinChangeNoticeMinutes}
}

// Load загружает конфигурацию из TOML файла.
// Переменные окружения (и .env, если есть) переопределяют секреты и адреса.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Storage: StorageConfig{Driver: StorageMemory},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "salon-scheduling"},
		Tracing: TracingConfig{Endpoint: "localhost:4317", Insecure: true, SampleRatio: 1},
		Kafka: KafkaConfig{
			Topic:          "appointments",
			WriteTimeoutMs: 2000,
		},
		Booking: BookingConfig{
			LockTimeoutMs:           3000,
			MaxSerializationRetries: 3,
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = v
	}
}

// Validate проверяет конфигурацию целиком, включая политики календаря и каталог
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database.host and database.dbname are required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("%w: metrics.path must start with /", ErrInvalidConfig)
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("%w: tracing.endpoint is required", ErrInvalidConfig)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: tracing.sample_ratio must be within [0, 1]", ErrInvalidConfig)
	}

	if c.Kafka.Enabled && (strings.TrimSpace(c.Kafka.Brokers) == "" || c.Kafka.Topic == "") {
		return fmt.Errorf("%w: kafka.brokers and kafka.topic are required", ErrInvalidConfig)
	}

	if c.Booking.LockTimeoutMs <= 0 {
		return fmt.Errorf("%w: booking.lock_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.Booking.MinChangeNoticeMinutes < 0 {
		return fmt.Errorf("%w: booking.min_change_notice_minutes must not be negative", ErrInvalidConfig)
	}
	if c.Booking.MaxSerializationRetries < 0 {
		return fmt.Errorf("%w: booking.max_serialization_retries must not be negative", ErrInvalidConfig)
	}

	if _, _, err := c.Calendar.Policies(); err != nil {
		return err
	}

	return c.Catalog.Validate()
}

// CalendarConfig политика по умолчанию и переопределения по салонам
type CalendarConfig struct {
	Default CalendarPolicyConfig            `toml:"default"`
	Tenants map[string]CalendarPolicyConfig `toml:"tenants"`
}

// CalendarPolicyConfig рабочие часы и окно записи салона.
// Если week не задан, салон работает каждый день 08:00-20:00.
type CalendarPolicyConfig struct {
	Timezone                string                          `toml:"timezone"`
	GranularityMinutes      int                             `toml:"granularity_minutes"`
	MinBookingNoticeMinutes int                             `toml:"min_booking_notice_minutes"`
	AdvanceBookingDays      int                             `toml:"advance_booking_days"`
	Week                    map[string][]WorkingHoursConfig `toml:"week"` // monday: [{start, end}]
}

type WorkingHoursConfig struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ToSettings конвертирует секцию конфига в настройки календаря
func (p CalendarPolicyConfig) ToSettings() (calendar.Settings, error) {
	settings := calendar.Settings{
		Timezone:                p.Timezone,
		GranularityMinutes:      p.GranularityMinutes,
		MinBookingNoticeMinutes: p.MinBookingNoticeMinutes,
		AdvanceBookingDays:      p.AdvanceBookingDays,
	}
	if p.Week == nil {
		return settings, nil
	}

	settings.Week = make(map[time.Weekday][]calendar.WorkingHours, len(p.Week))
	for name, hours := range p.Week {
		day, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return settings, fmt.Errorf("%w: unknown weekday %q", ErrInvalidConfig, name)
		}
		for _, h := range hours {
			start, err := types.NewTimeStringFromString(h.Start)
			if err != nil {
				return settings, fmt.Errorf("%w: %s start: %v", ErrInvalidConfig, name, err)
			}
			end, err := types.NewTimeStringFromString(h.End)
			if err != nil {
				return settings, fmt.Errorf("%w: %s end: %v", ErrInvalidConfig, name, err)
			}
			settings.Week[day] = append(settings.Week[day], calendar.WorkingHours{Start: start, End: end})
		}
	}
	return settings, nil
}

// Policies строит политику по умолчанию и политики салонов
func (c CalendarConfig) Policies() (*calendar.Policy, map[string]*calendar.Policy, error) {
	settings, err := c.Default.ToSettings()
	if err != nil {
		return nil, nil, err
	}
	fallback, err := calendar.NewPolicy(settings)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: calendar.default: %v", ErrInvalidConfig, err)
	}

	tenants := make(map[string]*calendar.Policy, len(c.Tenants))
	for tenantID, section := range c.Tenants {
		settings, err := section.ToSettings()
		if err != nil {
			return nil, nil, err
		}
		policy, err := calendar.NewPolicy(settings)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: calendar.tenants.%s: %v", ErrInvalidConfig, tenantID, err)
		}
		tenants[tenantID] = policy
	}

	return fallback, tenants, nil
}
