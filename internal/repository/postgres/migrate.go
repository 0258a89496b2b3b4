package postgresrepo

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations in file name order, once each.
func (s *Store) Migrate(ctx context.Context) error {
	const op = "postgresrepo.Store.Migrate"

	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, f := range files {
		var applied bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
			f,
		).Scan(&applied); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if applied {
			continue
		}

		b, err := migrations.ReadFile(path.Join("migrations", f))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		err = s.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
			if _, err := tx.Exec(ctx, string(b)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, f)
			return err
		})
		if err != nil {
			return fmt.Errorf("%s: apply %s: %w", op, f, err)
		}
	}

	return nil
}
