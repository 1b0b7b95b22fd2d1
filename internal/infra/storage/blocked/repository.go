package blocked

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonScheduling/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

const table = "blocked_times"

var columns = []string{
	"id",
	"tenant_id",
	"employee_id",
	"blocked_date",
	"is_whole_day",
	"start_time",
	"end_time",
	"reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий блокировок времени сотрудников
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет блокировку
func (r *Repository) Create(ctx context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("id", "tenant_id", "employee_id", "blocked_date", "is_whole_day", "start_time", "end_time", "reason").
		Values(
			block.ID,
			block.TenantID,
			block.EmployeeID,
			domain.DateOnly(block.Date),
			block.WholeDay,
			block.StartTime,
			block.EndTime,
			block.Reason,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	block.Date = domain.DateOnly(block.Date)
	block.CreatedAt = createdAt.Time
	block.UpdatedAt = updatedAt.Time

	return block, nil
}

// GetByID получает блокировку арендатора по ID
func (r *Repository) GetByID(ctx context.Context, tenantID, id string) (*domain.BlockedInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	block, err := scanBlock(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrBlockedTimeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan blocked time: %w", ErrScanRow, err)
	}
	return block, nil
}

// Update заменяет дату, интервал и причину блокировки
func (r *Repository) Update(ctx context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("employee_id", block.EmployeeID).
		Set("blocked_date", domain.DateOnly(block.Date)).
		Set("is_whole_day", block.WholeDay).
		Set("start_time", block.StartTime).
		Set("end_time", block.EndTime).
		Set("reason", block.Reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": block.ID, "tenant_id": block.TenantID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrBlockedTimeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	block.Date = domain.DateOnly(block.Date)
	block.CreatedAt = createdAt.Time
	block.UpdatedAt = updatedAt.Time
	return block, nil
}

// Delete удаляет блокировку
func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return storage.ErrBlockedTimeNotFound
	}
	return nil
}

// ListByEmployeeDate блокировки сотрудника на дату
func (r *Repository) ListByEmployeeDate(ctx context.Context, tenantID, employeeID string, date time.Time) ([]*domain.BlockedInterval, error) {
	return r.list(ctx, "ListByEmployeeDate", psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"tenant_id":    tenantID,
			"employee_id":  employeeID,
			"blocked_date": domain.DateOnly(date),
		}))
}

// List блокировки арендатора по фильтру
func (r *Repository) List(ctx context.Context, filter domain.BlockedFilter) ([]*domain.BlockedInterval, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"tenant_id": filter.TenantID})

	if filter.EmployeeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"employee_id": *filter.EmployeeID})
	}
	if filter.DateFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"blocked_date": domain.DateOnly(*filter.DateFrom)})
	}
	if filter.DateTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"blocked_date": domain.DateOnly(*filter.DateTo)})
	}

	return r.list(ctx, "List", selectBuilder)
}

func (r *Repository) list(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.BlockedInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.
		OrderBy("blocked_date ASC", "is_whole_day DESC", "start_time ASC NULLS FIRST", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	blocks := make([]*domain.BlockedInterval, 0)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return blocks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlock(row rowScanner) (*domain.BlockedInterval, error) {
	var block domain.BlockedInterval
	var start, end sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&block.ID,
		&block.TenantID,
		&block.EmployeeID,
		&block.Date,
		&block.WholeDay,
		&start,
		&end,
		&block.Reason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if start.Valid {
		var ts types.TimeString
		if err := ts.Scan(start.String); err != nil {
			return nil, err
		}
		block.StartTime = &ts
	}
	if end.Valid {
		var ts types.TimeString
		if err := ts.Scan(end.String); err != nil {
			return nil, err
		}
		block.EndTime = &ts
	}

	block.Date = domain.DateOnly(block.Date)
	block.CreatedAt = createdAt.Time
	block.UpdatedAt = updatedAt.Time

	return &block, nil
}

// LockScope берет ту же advisory-блокировку области (сотрудник, дата), что и
// репозиторий записей, чтобы блокировка времени не разминулась с записью
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
