package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-SalonScheduling/internal/api/handlers"
)

type contextKey string

const (
	// TenantIDHeader заголовок с идентификатором салона
	TenantIDHeader = "X-Tenant-ID"

	tenantIDKey contextKey = "tenant_id"

	msgMissingTenantID = "отсутствует заголовок X-Tenant-ID"
)

// Tenant извлекает tenant из заголовка X-Tenant-ID и кладет его в контекст
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(r.Header.Get(TenantIDHeader))
		if tenantID == "" {
			handlers.RespondBadRequest(w, msgMissingTenantID)
			return
		}

		ctx := WithTenantID(r.Context(), tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithTenantID кладет tenant в контекст
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// GetTenantID извлекает tenant из контекста
func GetTenantID(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantIDKey).(string)
	return tenantID, ok && tenantID != ""
}
