package store

import (
	"context"
	"log/slog"
)

// Compile-time interface checks.
var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Postgres)(nil)
)

// Open picks the backend: Postgres when databaseURL is set, SQLite otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		slog.Info("store: using postgres")
		return OpenPostgres(ctx, databaseURL)
	}
	slog.Info("store: using sqlite", slog.String("path", sqlitePath))
	return OpenSQLite(sqlitePath)
}
