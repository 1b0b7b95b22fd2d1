package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonScheduling/pkg/psqlbuilder"
)

// Repository репозиторий услуг и сотрудников арендаторов.
// Сами справочники ведет внешний сервис; здесь только чтение и загрузка начальных данных.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу арендатора
func (r *Repository) GetService(ctx context.Context, tenantID, id string) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "tenant_id", "name", "duration_minutes", "price", "is_active").
		From("services").
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var svc domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&svc.ID,
		&svc.TenantID,
		&svc.Name,
		&svc.DurationMinutes,
		&svc.Price,
		&svc.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	return &svc, nil
}

// GetEmployee получает сотрудника арендатора вместе со списком его услуг
func (r *Repository) GetEmployee(ctx context.Context, tenantID, id string) (*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"e.id",
		"e.tenant_id",
		"e.name",
		"e.email",
		"e.is_active",
		"COALESCE(array_agg(es.service_id) FILTER (WHERE es.service_id IS NOT NULL), '{}')",
	).
		From("employees e").
		LeftJoin("employee_services es ON es.tenant_id = e.tenant_id AND es.employee_id = e.id").
		Where(squirrel.Eq{"e.tenant_id": tenantID, "e.id": id}).
		GroupBy("e.id", "e.tenant_id", "e.name", "e.email", "e.is_active").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetEmployee - build select query: %v", ErrBuildQuery, err)
	}

	var emp domain.Employee
	var serviceIDs pq.StringArray
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&emp.ID,
		&emp.TenantID,
		&emp.Name,
		&emp.Email,
		&emp.IsActive,
		&serviceIDs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetEmployee - scan employee: %w", ErrScanRow, err)
	}

	emp.ServiceIDs = []string(serviceIDs)
	return &emp, nil
}

// UpsertService добавляет или обновляет услугу
func (r *Repository) UpsertService(ctx context.Context, svc *domain.Service) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("services").
		Columns("id", "tenant_id", "name", "duration_minutes", "price", "is_active").
		Values(svc.ID, svc.TenantID, svc.Name, svc.DurationMinutes, svc.Price, svc.IsActive).
		Suffix(`ON CONFLICT (tenant_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			duration_minutes = EXCLUDED.duration_minutes,
			price = EXCLUDED.price,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertService - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertService - execute insert: %w", ErrExecQuery, err)
	}
	return nil
}

// UpsertEmployee добавляет или обновляет сотрудника и заменяет список его услуг.
// Должен вызываться внутри транзакции, чтобы список услуг не был виден наполовину.
func (r *Repository) UpsertEmployee(ctx context.Context, emp *domain.Employee) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: UpsertEmployee requires a transaction", ErrTransaction)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("employees").
		Columns("id", "tenant_id", "name", "email", "is_active").
		Values(emp.ID, emp.TenantID, emp.Name, emp.Email, emp.IsActive).
		Suffix(`ON CONFLICT (tenant_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertEmployee - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertEmployee - execute insert: %w", ErrExecQuery, err)
	}

	query, args, err = psqlbuilder.Delete("employee_services").
		Where(squirrel.Eq{"tenant_id": emp.TenantID, "employee_id": emp.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertEmployee - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertEmployee - delete services: %w", ErrExecQuery, err)
	}

	if len(emp.ServiceIDs) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert("employee_services").Columns("tenant_id", "employee_id", "service_id")
	for _, serviceID := range emp.ServiceIDs {
		insert = insert.Values(emp.TenantID, emp.ID, serviceID)
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertEmployee - build services insert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertEmployee - insert services: %w", ErrExecQuery, err)
	}

	return nil
}
