package store

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplyMigrations runs every "*.up.sql" file found in dir of fsys in lexical order.
// Migrations are written to be idempotent so repeated runs are safe.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, dir string) ([]string, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*_*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(files)

	for _, name := range files {
		payload, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(payload)); err != nil {
			return nil, fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return files, nil
}

// Migrate applies the given migrations against the store's pool.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS, dir string) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("store not initialized")
	}
	applied, err := ApplyMigrations(ctx, s.pool, fsys, dir)
	if err != nil {
		return err
	}
	s.logger.Printf("store: applied %d migration(s)", len(applied))
	return nil
}
