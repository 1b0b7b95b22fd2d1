// Package testutil общие заготовки для тестов usecase- и service-слоя:
// фиксированные часы, наполненный каталог и календарь 09:00-12:00.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SalonScheduling/internal/calendar"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SalonScheduling/internal/integrations/events"
)

const (
	Tenant       = "salon-1"
	Anna         = "anna"
	Boris        = "boris"
	Retired      = "retired"
	Haircut      = "haircut"
	Coloring     = "coloring"
	Discontinued = "discontinued"
)

// Monday дата, для которой в тестах строится расписание
var Monday = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

// Clock фиксированные часы, которые можно передвигать
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы, показывающие now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now возвращает текущее время часов
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set переводит часы
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// MorningPolicy каждый день 09:00-12:00, сетка 30 минут
func MorningPolicy() *calendar.Policy {
	week := make(map[time.Weekday][]calendar.WorkingHours, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		week[d] = []calendar.WorkingHours{{Start: "09:00", End: "12:00"}}
	}
	return calendar.MustPolicy(calendar.Settings{GranularityMinutes: 30, Week: week})
}

// MorningPolicies провайдер, отдающий MorningPolicy всем салонам
func MorningPolicies() calendar.Provider {
	return calendar.NewStaticProvider(MorningPolicy(), nil)
}

// Catalog каталог салона: Anna делает стрижку (60 мин) и окрашивание (90 мин),
// Boris только стрижку, Retired неактивна, Discontinued снята с продажи.
func Catalog() *memory.Catalog {
	ctx := context.Background()
	c := memory.NewCatalog()

	services := []*domain.Service{
		{ID: Haircut, TenantID: Tenant, Name: "Haircut", DurationMinutes: 60, Price: 1500, IsActive: true},
		{ID: Coloring, TenantID: Tenant, Name: "Coloring", DurationMinutes: 90, Price: 4000, IsActive: true},
		{ID: Discontinued, TenantID: Tenant, Name: "Perm", DurationMinutes: 120, Price: 3000, IsActive: false},
	}
	for _, s := range services {
		_ = c.UpsertService(ctx, s)
	}

	employees := []*domain.Employee{
		{ID: Anna, TenantID: Tenant, Name: "Anna", IsActive: true, ServiceIDs: []string{Haircut, Coloring, Discontinued}},
		{ID: Boris, TenantID: Tenant, Name: "Boris", IsActive: true, ServiceIDs: []string{Haircut}},
		{ID: Retired, TenantID: Tenant, Name: "Retired", IsActive: false, ServiceIDs: []string{Haircut}},
	}
	for _, e := range employees {
		_ = c.UpsertEmployee(ctx, e)
	}

	return c
}

// Publisher запоминает опубликованные события
type Publisher struct {
	mu     sync.Mutex
	events []events.AppointmentEvent
	Err    error
}

// Publish сохраняет событие и возвращает Err
func (p *Publisher) Publish(_ context.Context, event events.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events возвращает копию опубликованных событий
func (p *Publisher) Events() []events.AppointmentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.AppointmentEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types типы опубликованных событий по порядку
func (p *Publisher) Types() []events.Type {
	list := p.Events()
	out := make([]events.Type, len(list))
	for i, e := range list {
		out[i] = e.Type
	}
	return out
}
