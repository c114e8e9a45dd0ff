package store

import (
	"context"

	"realmlog/internal/realm"
)

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	// WithTx runs fn inside one transaction. It commits when fn returns nil
	// and rolls back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetPlayer(ctx context.Context) (realm.Player, error)
	ListTiles(ctx context.Context) ([]realm.Tile, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]realm.Session, error)
	SearchSessions(ctx context.Context, query string, limit int) ([]realm.Session, error)

	GetOpenTimer(ctx context.Context) (*realm.TimerSession, error)
	InsertTimer(ctx context.Context, t realm.TimerSession) error
	UpdateTimer(ctx context.Context, t realm.TimerSession) error
	DeleteTimer(ctx context.Context, id string) error

	ExportTables(ctx context.Context) (map[string][]map[string]any, error)
	ImportTables(ctx context.Context, tables map[string][]map[string]any) error
	ResetSessions(ctx context.Context) error
	ResetTiles(ctx context.Context) error
	ResetPlayer(ctx context.Context) error

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// Tx is the write surface the game core uses inside a transaction.
type Tx interface {
	GetPlayer(ctx context.Context) (realm.Player, error)
	ListTiles(ctx context.Context) ([]realm.Tile, error)

	SavePlayer(ctx context.Context, p realm.Player) error
	InsertSession(ctx context.Context, s realm.Session) error
	InsertTile(ctx context.Context, t realm.Tile) error
	UpdateTile(ctx context.Context, t realm.Tile) error
	DeleteTiles(ctx context.Context, ids []string) error
	RenameSessionActivity(ctx context.Context, from, to string) (int64, error)
	UpdateTimer(ctx context.Context, t realm.TimerSession) error
}
