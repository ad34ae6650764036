package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/0xtarunkm/star-fee-distribution/internal/storage/postgres"
)

// RunPostgresMigrations brings the ledger schema up to date by applying
// every embedded .sql file in lexical filename order. Each file is written
// to be rerunnable (CREATE TABLE IF NOT EXISTS and friends), so calling
// this on every startup is safe.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("list postgres migrations: %w", err)
	}

	for _, name := range files {
		stmt, err := fs.ReadFile(PostgresFS, "postgres/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(stmt)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(stmt)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	return nil
}

// sqlFiles returns the .sql entries under dir, sorted so the NNN_ filename
// prefixes dictate apply order.
func sqlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}
