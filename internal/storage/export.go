package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// ExportFilename names a workbook exported at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("ascend_%s.xlsx", t.Format("2006-01-02_1504"))
}

// ExportWorkbook writes every slot to an xlsx workbook, one sheet per slot
// family. List slots contribute one row per element; record slots contribute
// one row each. Nested values are written as JSON text.
func ExportWorkbook(ctx context.Context, slots *Slots, w io.Writer) error {
	keys, err := slots.Store().Keys(ctx)
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}

	families := make(map[string][]map[string]any)
	var order []string
	for _, key := range keys {
		rows, err := exportRows(ctx, slots, key)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		name := SlotName(key)
		if _, seen := families[name]; !seen {
			order = append(order, name)
		}
		families[name] = append(families[name], rows...)
	}

	sw := newSheetWriter()
	defer sw.close()

	if len(order) == 0 {
		if err := sw.addSheet("empty"); err != nil {
			return err
		}
	}

	for _, name := range order {
		rows := families[name]
		columns := columnsOf(rows)
		if err := sw.addSheet(name); err != nil {
			return err
		}
		if err := sw.writeHeader(columns); err != nil {
			return fmt.Errorf("write header %s: %w", name, err)
		}
		for _, row := range rows {
			values := make([]any, len(columns))
			for i, col := range columns {
				values[i] = cellValue(row[col])
			}
			if err := sw.writeRow(values); err != nil {
				return fmt.Errorf("write row %s: %w", name, err)
			}
		}
	}

	return sw.save(w)
}

func exportRows(ctx context.Context, slots *Slots, key string) ([]map[string]any, error) {
	data, ok, err := slots.Raw(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			slots.mismatch(key, "list", err)
			return nil, nil
		}
		rows := make([]map[string]any, 0, len(items))
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				rows = append(rows, m)
			} else {
				rows = append(rows, map[string]any{"value": it})
			}
		}
		return rows, nil
	case '{':
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			slots.mismatch(key, "record", err)
			return nil, nil
		}
		m["_key"] = key
		return []map[string]any{m}, nil
	}
	return []map[string]any{{"_key": key, "value": string(data)}}, nil
}

func columnsOf(rows []map[string]any) []string {
	set := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			set[k] = true
		}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return t
	}
}
