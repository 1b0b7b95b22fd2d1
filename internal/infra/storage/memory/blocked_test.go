package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage"
	"github.com/m04kA/SMC-SalonScheduling/pkg/ptr"
	"github.com/m04kA/SMC-SalonScheduling/pkg/types"
)

func TestBlockedStore_CRUD(t *testing.T) {
	store := NewBlockedStore()
	ctx := context.Background()

	lunch, err := store.Create(ctx, &domain.BlockedInterval{
		TenantID:   "salon-1",
		EmployeeID: "anna",
		Date:       testDate,
		StartTime:  ptr.Ptr(types.MustTimeString("13:00")),
		EndTime:    ptr.Ptr(types.MustTimeString("14:00")),
		Reason:     ptr.Ptr("lunch"),
	})
	require.NoError(t, err)

	vacation, err := store.Create(ctx, &domain.BlockedInterval{
		TenantID:   "salon-1",
		EmployeeID: "anna",
		Date:       testDate,
		WholeDay:   true,
	})
	require.NoError(t, err)

	list, err := store.ListByEmployeeDate(ctx, "salon-1", "anna", testDate)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, vacation.ID, list[0].ID)

	lunch.Date = testDate.AddDate(0, 0, 1)
	_, err = store.Update(ctx, lunch)
	require.NoError(t, err)

	list, err = store.ListByEmployeeDate(ctx, "salon-1", "anna", testDate)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.GetByID(ctx, "salon-2", lunch.ID)
	assert.ErrorIs(t, err, storage.ErrBlockedTimeNotFound)

	require.NoError(t, store.Delete(ctx, "salon-1", lunch.ID))
	assert.ErrorIs(t, store.Delete(ctx, "salon-1", lunch.ID), storage.ErrBlockedTimeNotFound)

	all, err := store.List(ctx, domain.BlockedFilter{TenantID: "salon-1", EmployeeID: ptr.Ptr("anna")})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].WholeDay)
}
