package storage

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportWorkbook(t *testing.T) {
	ctx := context.Background()
	s := NewSlots(NewMemoryStore(), nil)

	require.NoError(t, s.Save(ctx, "tasks", []map[string]any{
		{"id": "t1", "title": "Edit reel", "tags": []string{"video"}},
		{"id": "t2", "title": "Shoot", "priority": "high"},
	}))
	require.NoError(t, s.Save(ctx, "availability:2", map[string]any{"user_id": "2"}))
	require.NoError(t, s.Save(ctx, "availability:3", map[string]any{"user_id": "3"}))

	var buf bytes.Buffer
	require.NoError(t, ExportWorkbook(ctx, s, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"availability", "tasks"}, f.GetSheetList())

	rows, err := f.GetRows("tasks")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "priority", "tags", "title"}, rows[0])
	assert.Equal(t, []string{"t1", "", `["video"]`, "Edit reel"}, rows[1])

	rows, err = f.GetRows("availability")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"_key", "user_id"}, rows[0])
	assert.Equal(t, []string{"availability:2", "2"}, rows[1])
}

func TestExportWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportWorkbook(context.Background(), NewSlots(NewMemoryStore(), nil), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"empty"}, f.GetSheetList())
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 5, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "ascend_2025-05-05_1430.xlsx", ExportFilename(ts))
}
