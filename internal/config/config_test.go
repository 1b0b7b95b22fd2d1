package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 8090

[storage]
driver = "memory"

[booking]
lock_timeout_ms = 500
min_change_notice_minutes = 120

[kafka]
enabled = true
brokers = "kafka-1:9092"
topic = "salon.appointments"

[calendar.default]
timezone = "Europe/Moscow"
granularity_minutes = 15

[calendar.default.week]
monday = [{ start = "09:00", end = "13:00" }, { start = "14:00", end = "18:00" }]
saturday = [{ start = "10:00", end = "16:00" }]

[calendar.tenants.salon-2]
advance_booking_days = 14

[[catalog.services]]
tenant_id = "salon-1"
id = "svc-haircut"
name = "Haircut"
duration_minutes = 60
price = 1500

[[catalog.employees]]
tenant_id = "salon-1"
id = "emp-anna"
name = "Anna"
service_ids = ["svc-haircut"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, 10, cfg.Server.ReadTimeout, "defaults survive partial sections")
	assert.Equal(t, 500*time.Millisecond, cfg.Booking.LockTimeout())
	assert.Equal(t, 3, cfg.Booking.MaxSerializationRetries)

	fallback, tenants, err := cfg.Calendar.Policies()
	require.NoError(t, err)
	assert.Equal(t, 15, fallback.Granularity())
	assert.Equal(t, "Europe/Moscow", fallback.Location().String())
	assert.Len(t, fallback.WorkingIntervals(time.Monday), 2)
	assert.Nil(t, fallback.WorkingIntervals(time.Sunday), "days absent from week are closed")
	require.Contains(t, tenants, "salon-2")
	assert.Equal(t, 14, tenants["salon-2"].AdvanceBookingDays())
	assert.Len(t, tenants["salon-2"].WorkingIntervals(time.Sunday), 1, "tenant without week uses default hours")

	require.Len(t, cfg.Catalog.Employees, 1)
	emp := cfg.Catalog.Employees[0].ToDomain()
	assert.True(t, emp.IsActive)
	assert.True(t, emp.OffersService("svc-haircut"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "k1:9092,k2:9092", cfg.Kafka.Brokers)
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "[storage]\ndriver = \"mongo\""},
		{"bad port", "[server]\nhttp_port = 70000"},
		{"overlapping hours", "[calendar.default.week]\nmonday = [{ start = \"09:00\", end = \"12:00\" }, { start = \"11:00\", end = \"13:00\" }]"},
		{"unknown weekday", "[calendar.default.week]\nfunday = [{ start = \"09:00\", end = \"12:00\" }]"},
		{"bad granularity", "[calendar.default]\ngranularity_minutes = 1"},
		{"unknown timezone", "[calendar.default]\ntimezone = \"Mars/Olympus\""},
		{"kafka without brokers", "[kafka]\nenabled = true\nbrokers = \"\""},
		{"zero lock timeout", "[booking]\nlock_timeout_ms = 0"},
		{"employee with unknown service", "[[catalog.employees]]\ntenant_id = \"salon-1\"\nid = \"emp\"\nservice_ids = [\"ghost\"]"},
		{"service without duration", "[[catalog.services]]\ntenant_id = \"salon-1\"\nid = \"svc\"\nname = \"X\""},
		{"malformed toml", "[server\nhttp_port = 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
