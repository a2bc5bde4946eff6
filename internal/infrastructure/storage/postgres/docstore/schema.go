package docstore

import (
	"context"
	"fmt"

	"millerp/internal/infrastructure/storage/postgres"
)

// SchemaStatements returns the DDL of a collection table.
func SchemaStatements(name string) ([]string, error) {
	if !validKey(name) {
		return nil, fmt.Errorf("invalid collection name %q", name)
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id            UUID PRIMARY KEY,
    deletion_mark BOOLEAN NOT NULL DEFAULT false,
    version       INT NOT NULL DEFAULT 1,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    created_by    TEXT NOT NULL DEFAULT '',
    updated_by    TEXT NOT NULL DEFAULT '',
    body          JSONB NOT NULL
)`, name),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS ix_%[1]s__deleted ON %[1]s (deletion_mark)", name),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS ix_%[1]s__body ON %[1]s USING GIN (body jsonb_path_ops)", name),
	}, nil
}

// EnsureSchema creates the tables of the named collections if they do not exist.
func EnsureSchema(ctx context.Context, txm *postgres.TxManager, names ...string) error {
	for _, name := range names {
		stmts, err := SchemaStatements(name)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			err := txm.Do(ctx, func(q postgres.Querier) error {
				_, err := q.Exec(ctx, stmt)
				return err
			})
			if err != nil {
				return fmt.Errorf("ensure schema %s: %w", name, err)
			}
		}
	}
	return nil
}
