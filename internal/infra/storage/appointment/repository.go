package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonScheduling/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

const table = "appointments"

var columns = []string{
	"id",
	"tenant_id",
	"service_id",
	"employee_id",
	"appointment_date",
	"start_time",
	"duration_minutes",
	"status",
	"client_name",
	"client_email",
	"client_phone",
	"notes",
	"service_name",
	"service_price",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями клиентов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись.
// Если в контексте передана активная транзакция, использует её.
// Пересечение с активной записью того же сотрудника отсекается EXCLUDE-ограничением
// таблицы и возвращается как storage.ErrOverlap.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"id",
			"tenant_id",
			"service_id",
			"employee_id",
			"appointment_date",
			"start_time",
			"duration_minutes",
			"status",
			"client_name",
			"client_email",
			"client_phone",
			"notes",
			"service_name",
			"service_price",
		).
		Values(
			appt.ID,
			appt.TenantID,
			appt.ServiceID,
			appt.EmployeeID,
			domain.DateOnly(appt.Date),
			appt.StartTime,
			appt.DurationMinutes,
			appt.Status,
			appt.ClientName,
			appt.ClientEmail,
			appt.ClientPhone,
			appt.Notes,
			appt.ServiceName,
			appt.ServicePrice,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, fmt.Errorf("%w: Create - employee=%s date=%s time=%s",
				storage.ErrOverlap, appt.EmployeeID, appt.Date.Format(domain.DateFormat), appt.StartTime)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	appt.Date = domain.DateOnly(appt.Date)
	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись арендатора по ID
func (r *Repository) GetByID(ctx context.Context, tenantID, id string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// ListByEmployeeDate получает активные записи сотрудника на дату.
// Внутри транзакции строки блокируются (FOR UPDATE), чтобы проверка пересечений
// и вставка выполнялись атомарно.
func (r *Repository) ListByEmployeeDate(ctx context.Context, tenantID, employeeID string, date time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"tenant_id":        tenantID,
			"employee_id":      employeeID,
			"appointment_date": domain.DateOnly(date),
		}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEmployeeDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEmployeeDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// List получает записи арендатора с фильтрацией по статусу, периоду и сотруднику
func (r *Repository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"tenant_id": filter.TenantID})

	if filter.EmployeeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"employee_id": *filter.EmployeeID})
	}
	if filter.DateFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": domain.DateOnly(*filter.DateFrom)})
	}
	if filter.DateTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": domain.DateOnly(*filter.DateTo)})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	query, args, err := selectBuilder.
		OrderBy("appointment_date ASC", "start_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// UpdateStatus меняет статус только если текущий статус равен from.
// При переходе в cancelled проставляет cancelled_at.
func (r *Repository) UpdateStatus(
	ctx context.Context,
	tenantID, id string,
	from, to domain.AppointmentStatus,
) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(table).
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "status": string(from)})

	if to == domain.StatusCancelled {
		updateBuilder = updateBuilder.Set("cancelled_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.Suffix(returning()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.explainMiss(ctx, tenantID, id, "UpdateStatus")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return appt, nil
}

// Reschedule переносит запись, если ее статус все еще pending или confirmed
func (r *Repository) Reschedule(
	ctx context.Context,
	tenantID, id string,
	date time.Time,
	start types.TimeString,
) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	reschedulable := make([]string, len(domain.ReschedulableStatuses))
	for i, s := range domain.ReschedulableStatuses {
		reschedulable[i] = string(s)
	}

	query, args, err := psqlbuilder.Update(table).
		Set("appointment_date", domain.DateOnly(date)).
		Set("start_time", start).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "status": reschedulable}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.explainMiss(ctx, tenantID, id, "Reschedule")
	}
	if err != nil {
		if isExclusionViolation(err) {
			return nil, fmt.Errorf("%w: Reschedule - id=%s date=%s time=%s",
				storage.ErrOverlap, id, date.Format(domain.DateFormat), start)
		}
		return nil, fmt.Errorf("%w: Reschedule - execute update: %w", ErrExecQuery, err)
	}

	return appt, nil
}

// LockScope берет транзакционную advisory-блокировку на область (сотрудник, дата).
// Вне транзакции ничего не делает: блокировка снялась бы сразу после запроса.
func (r *Repository) LockScope(ctx context.Context, key string) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("%w: LockScope - key=%s: %w", ErrExecQuery, key, err)
	}
	return nil
}

// explainMiss различает отсутствующую запись и запись с неподходящим статусом
func (r *Repository) explainMiss(ctx context.Context, tenantID, id, op string) error {
	current, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s - current status %s", storage.ErrStatusConflict, op, current.Status)
}

func returning() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime
	var cancelledAt sql.NullTime
	var status string

	err := row.Scan(
		&appt.ID,
		&appt.TenantID,
		&appt.ServiceID,
		&appt.EmployeeID,
		&appt.Date,
		&appt.StartTime,
		&appt.DurationMinutes,
		&status,
		&appt.ClientName,
		&appt.ClientEmail,
		&appt.ClientPhone,
		&appt.Notes,
		&appt.ServiceName,
		&appt.ServicePrice,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.Status = domain.AppointmentStatus(status)
	appt.Date = domain.DateOnly(appt.Date)
	if cancelledAt.Valid {
		t := cancelledAt.Time
		appt.CancelledAt = &t
	}
	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation
}
