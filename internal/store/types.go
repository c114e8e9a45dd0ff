package store

import (
	"errors"
	"time"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
)

type SessionFilter struct {
	Activity string
	Since    time.Time
	Limit    int
}

// Tables lists the tables owned by the game core, in dependency order.
var Tables = []string{"player", "tiles", "sessions", "timer_sessions"}

// Columns whitelists the columns an import may write for each table.
var Columns = map[string][]string{
	"player":         {"id", "xp", "craft", "lore", "vigor", "clarity", "gold", "target_tile_id"},
	"tiles":          {"id", "grid_row", "grid_col", "region", "level", "progress", "feature", "locked"},
	"sessions":       {"id", "created_at", "activity", "minutes", "note", "subtype", "amount", "tile_id"},
	"timer_sessions": {"id", "activity", "mode", "started_at", "ends_at", "stopped_at", "status", "note", "subtype"},
}

// AddedColumns are columns introduced after the first schema. Migrations add
// them to older databases; the create statements already include them.
var AddedColumns = []struct {
	Table      string
	Column     string
	Definition string
}{
	{"tiles", "progress", "INTEGER NOT NULL DEFAULT 0"},
	{"tiles", "feature", "TEXT"},
	{"tiles", "locked", "INTEGER NOT NULL DEFAULT 0"},
	{"player", "gold", "INTEGER NOT NULL DEFAULT 0"},
	{"player", "target_tile_id", "TEXT"},
	{"sessions", "subtype", "TEXT"},
	{"sessions", "amount", "INTEGER"},
	{"sessions", "tile_id", "TEXT"},
	{"timer_sessions", "note", "TEXT"},
	{"timer_sessions", "subtype", "TEXT"},
}

// ValidateImport checks table and column names of a snapshot before any of
// them reach a SQL statement.
func ValidateImport(tables map[string][]map[string]any) error {
	for name, rows := range tables {
		cols, ok := Columns[name]
		if !ok {
			return errors.Join(ErrUnknownTable, errors.New(name))
		}
		allowed := make(map[string]struct{}, len(cols))
		for _, c := range cols {
			allowed[c] = struct{}{}
		}
		for _, row := range rows {
			for col := range row {
				if _, ok := allowed[col]; !ok {
					return errors.Join(ErrUnknownColumn, errors.New(name+"."+col))
				}
			}
		}
	}
	return nil
}

// RowColumns returns the whitelisted columns present in row, in table order.
func RowColumns(table string, row map[string]any) []string {
	var out []string
	for _, c := range Columns[table] {
		if _, ok := row[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
