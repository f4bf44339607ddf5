package season

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Load reads every row of the given category tables.
// Tables that do not exist are skipped; optional columns may be absent.
func Load(ctx context.Context, db *sql.DB, categories ...Category) ([]Item, error) {
	if len(categories) == 0 {
		categories = Categories
	}

	var items []Item
	for _, c := range categories {
		ok, err := tableExists(ctx, db, string(c))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rows, err := loadCategory(ctx, db, c)
		if err != nil {
			return nil, err
		}
		items = append(items, rows...)
	}
	return items, nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return n > 0, nil
}

func loadCategory(ctx context.Context, db *sql.DB, c Category) ([]Item, error) {
	// c is one of the Category constants, never user text
	rows, err := db.QueryContext(ctx, `SELECT * FROM `+string(c))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", c, err)
	}

	var items []Item
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", c, err)
		}

		it := Item{Category: c}
		for i, col := range cols {
			v := vals[i]
			switch strings.ToLower(col) {
			case "name":
				it.Name = asString(v)
			case "start":
				it.Start = asInt(v)
			case "end":
				it.End = asInt(v)
			case "reasons":
				it.Reasons = asString(v)
			case "location":
				it.Location = asString(v)
			case "lookalikes":
				it.Lookalikes = parseLookalikes(asString(v))
			case "seasonal_info":
				it.SeasonalInfo = asString(v)
			case "image1", "image2":
				if s := asString(v); s != "" {
					it.Images = append(it.Images, s)
				}
			}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c, err)
	}
	return items, nil
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// asInt accepts integers as well as numeric text; anything else is 0.
func asInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string, []byte:
		n, err := strconv.Atoi(strings.TrimSpace(asString(x)))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// parseLookalikes reads a JSON array of warnings. Plain text becomes a single warning.
func parseLookalikes(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return []string{s}
	}
	return list
}
