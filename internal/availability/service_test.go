package availability

import (
	"context"
	"testing"
	"time"

	"ascend/internal/model"
	"ascend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewService(storage.NewSlots(store, nil), "09:00", "17:00", time.UTC, nil), store
}

func TestService_GetDefaults(t *testing.T) {
	svc, store := newTestService(t)

	a, err := svc.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "2", a.UserID)
	assert.Equal(t, "09:00", a.DefaultStartTime)
	assert.NotNil(t, a.Dates)

	_, ok, _ := store.Load(context.Background(), Key("2"))
	assert.False(t, ok, "reading must not create the record")
}

func TestService_SetDateAndForDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.SetDate(ctx, "2", DateInput{Date: "2025-05-05", Available: false})
	require.NoError(t, err)

	got, err := svc.ForDate(ctx, "2", "2025-05-05")
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, "09:00", got.StartTime)

	got, err = svc.ForDate(ctx, "2", "2025-05-06")
	require.NoError(t, err)
	assert.True(t, got.Available)
}

func TestService_ApplyBulk(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.ApplyBulk(ctx, "2", BulkRequest{
		StartDate: "2025-05-01",
		EndDate:   "2025-05-07",
		Weekdays:  map[string]bool{"monday": true, "wednesday": true},
		Available: true,
		StartTime: "10:00",
		EndTime:   "14:00",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-05-05", "2025-05-07"}, datesOf(a.Dates))

	reloaded, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, a.Dates, reloaded.Dates)
}

func TestService_ApplyBulkSpanLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.ApplyBulk(ctx, "2", BulkRequest{StartDate: "2024-01-01", EndDate: "2024-12-31"})
	require.NoError(t, err, "a full leap year fits")
	assert.Len(t, a.Dates, 262)

	_, err = svc.ApplyBulk(ctx, "2", BulkRequest{StartDate: "2024-01-01", EndDate: "2025-01-01"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_date", verr.Field)
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"bad date", func() error {
			_, err := svc.SetDate(ctx, "2", DateInput{Date: "05/05/2025"})
			return err
		}},
		{"bad clock", func() error {
			_, err := svc.SetDate(ctx, "2", DateInput{Date: "2025-05-05", StartTime: "9am"})
			return err
		}},
		{"reversed range", func() error {
			_, err := svc.ApplyBulk(ctx, "2", BulkRequest{StartDate: "2025-05-07", EndDate: "2025-05-01"})
			return err
		}},
		{"range too long", func() error {
			_, err := svc.ApplyBulk(ctx, "2", BulkRequest{StartDate: "0001-01-02", EndDate: "9999-12-31"})
			return err
		}},
		{"unknown weekday", func() error {
			_, err := svc.ApplyBulk(ctx, "2", BulkRequest{StartDate: "2025-05-01", EndDate: "2025-05-07", Weekdays: map[string]bool{"funday": true}})
			return err
		}},
		{"bad defaults", func() error {
			_, err := svc.SetDefaults(ctx, "2", "25:00", "17:00")
			return err
		}},
		{"missing user", func() error {
			_, err := svc.SetDate(ctx, "", DateInput{Date: "2025-05-05"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, model.IsValidation(err))
		})
	}

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys, "rejected input must not write")
}

func TestService_SetDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.SetDefaults(ctx, "2", "08:30", "16:30")
	require.NoError(t, err)

	got, err := svc.ForDate(ctx, "2", "2025-05-06")
	require.NoError(t, err)
	assert.Equal(t, "08:30", got.StartTime)
	assert.Equal(t, "16:30", got.EndTime)
}

func TestService_ShapeMismatchFallsBack(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	require.NoError(t, store.Save(ctx, Key("2"), []byte(`[1,2,3]`)))

	a, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, a.Dates)
}
