// Package docstore stores documents as JSONB rows in PostgreSQL and
// implements domain.Collection on top of them.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"millerp/internal/core/apperror"
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/domain"
	"millerp/internal/domain/filter"
	"millerp/internal/infrastructure/storage/postgres"
)

// Collection is a JSONB-backed document collection.
// Statements run inside the ambient transaction of ctx if there is one.
type Collection[T entity.Document] struct {
	name  string
	txm   *postgres.TxManager
	newFn func() T
}

var _ domain.Collection[entity.Document] = (*Collection[entity.Document])(nil)

// New creates a collection bound to table name. The table is created by EnsureSchema.
func New[T entity.Document](txm *postgres.TxManager, name string, newFn func() T) (*Collection[T], error) {
	if !validKey(name) {
		return nil, fmt.Errorf("invalid collection name %q", name)
	}
	return &Collection[T]{name: name, txm: txm, newFn: newFn}, nil
}

// Name implements domain.Collection.
func (c *Collection[T]) Name() string { return c.name }

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (c *Collection[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

type bodyRow struct {
	Body []byte `db:"body"`
}

// Insert implements domain.Collection.
func (c *Collection[T]) Insert(ctx context.Context, doc T) (id.ID, error) {
	base := doc.Base()
	if base.IsNew() {
		base.ID = id.New()
	}
	base.SetVersion(1)

	body, err := json.Marshal(doc)
	if err != nil {
		return id.Nil(), fmt.Errorf("marshal %s: %w", c.name, err)
	}

	q := c.Builder().
		Insert(c.name).
		SetMap(map[string]any{
			"id":            base.ID,
			"deletion_mark": base.DeletionMark,
			"version":       base.Version,
			"created_at":    stampTime(base.CreatedDate),
			"updated_at":    stampTime(base.UpdatedDate),
			"created_by":    base.CreatedBy,
			"updated_by":    base.UpdatedBy,
			"body":          body,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return id.Nil(), fmt.Errorf("build insert: %w", err)
	}

	err = c.txm.Do(ctx, func(querier postgres.Querier) error {
		_, err := querier.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return id.Nil(), apperror.NewDuplicate(c.name, pgErr.ConstraintName, base.ID.String()).WithCause(err)
		}
		return id.Nil(), fmt.Errorf("insert %s: %w", c.name, err)
	}
	return base.ID, nil
}

// Update implements domain.Collection with optimistic locking on version.
func (c *Collection[T]) Update(ctx context.Context, doc T) (id.ID, error) {
	base := doc.Base()
	expected := base.Version
	base.Touch()

	body, err := json.Marshal(doc)
	if err != nil {
		base.SetVersion(expected)
		return id.Nil(), fmt.Errorf("marshal %s: %w", c.name, err)
	}

	q := c.Builder().
		Update(c.name).
		Set("deletion_mark", base.DeletionMark).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", stampTime(base.UpdatedDate)).
		Set("updated_by", base.UpdatedBy).
		Set("body", body).
		Where(squirrel.Eq{"id": base.ID}).
		Where(squirrel.Eq{"version": expected}) // optimistic lock: expect current version

	sql, args, err := q.ToSql()
	if err != nil {
		base.SetVersion(expected)
		return id.Nil(), fmt.Errorf("build update: %w", err)
	}

	var affected int64
	err = c.txm.Do(ctx, func(querier postgres.Querier) error {
		tag, err := querier.Exec(ctx, sql, args...)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		base.SetVersion(expected)
		return id.Nil(), fmt.Errorf("update %s: %w", c.name, err)
	}
	if affected == 0 {
		base.SetVersion(expected)
		return id.Nil(), apperror.NewConcurrentModification(c.name, base.ID.String())
	}
	return base.ID, nil
}

// GetByID implements domain.Collection.
func (c *Collection[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	var zero T
	docs, err := c.find(ctx, squirrel.Eq{"id": docID}, domain.FindOptions{Limit: 1})
	if err != nil {
		return zero, fmt.Errorf("get by id: %w", err)
	}
	if len(docs) == 0 {
		return zero, apperror.NewNotFound(c.name, docID.String())
	}
	return docs[0], nil
}

// SingleOrDefault implements domain.Collection.
func (c *Collection[T]) SingleOrDefault(ctx context.Context, where filter.Expr) (T, bool, error) {
	var zero T
	docs, err := c.Find(ctx, where, domain.FindOptions{Limit: 1})
	if err != nil || len(docs) == 0 {
		return zero, false, err
	}
	return docs[0], true, nil
}

// Find implements domain.Collection.
func (c *Collection[T]) Find(ctx context.Context, where filter.Expr, opts domain.FindOptions) ([]T, error) {
	pred, err := Compile(where)
	if err != nil {
		return nil, err
	}
	return c.find(ctx, pred, opts)
}

func (c *Collection[T]) find(ctx context.Context, pred squirrel.Sqlizer, opts domain.FindOptions) ([]T, error) {
	q, err := c.selectQuery(pred, opts)
	if err != nil {
		return nil, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []bodyRow
	err = c.txm.Do(ctx, func(querier postgres.Querier) error {
		return pgxscan.Select(ctx, querier, &rows, sql, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		doc := c.newFn()
		if err := json.Unmarshal(row.Body, doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *Collection[T]) selectQuery(pred squirrel.Sqlizer, opts domain.FindOptions) (squirrel.SelectBuilder, error) {
	q := c.Builder().Select("body").From(c.name)
	if pred != nil {
		q = q.Where(pred)
	}

	terms, err := orderBy(opts.Sort)
	if err != nil {
		return q, err
	}
	if len(terms) > 0 {
		q = q.OrderBy(terms...)
	}

	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}
	return q, nil
}

// Count implements domain.Collection.
func (c *Collection[T]) Count(ctx context.Context, where filter.Expr) (int64, error) {
	pred, err := Compile(where)
	if err != nil {
		return 0, err
	}

	q := c.Builder().Select("COUNT(*)").From(c.name)
	if pred != nil {
		q = q.Where(pred)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	err = c.txm.Do(ctx, func(querier postgres.Querier) error {
		return querier.QueryRow(ctx, sql, args...).Scan(&total)
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.name, err)
	}
	return total, nil
}

// CreateIndexes implements domain.Collection.
func (c *Collection[T]) CreateIndexes(ctx context.Context, specs ...domain.IndexSpec) error {
	for _, spec := range specs {
		sql, err := createIndexSQL(c.name, spec)
		if err != nil {
			return err
		}
		err = c.txm.Do(ctx, func(querier postgres.Querier) error {
			_, err := querier.Exec(ctx, sql)
			return err
		})
		if err != nil {
			return fmt.Errorf("create index %s: %w", spec.Name, err)
		}
	}
	return nil
}

func createIndexSQL(table string, spec domain.IndexSpec) (string, error) {
	if !validKey(spec.Name) {
		return "", fmt.Errorf("invalid index name %q", spec.Name)
	}
	if len(spec.Keys) == 0 {
		return "", fmt.Errorf("index %s has no keys", spec.Name)
	}

	keys := make([]string, 0, len(spec.Keys))
	for _, k := range spec.Keys {
		expr, ok := columns[k.Field]
		if !ok {
			path, err := jsonPath(rootScope, k.Field, "#>>")
			if err != nil {
				return "", err
			}
			expr = "(" + path + ")"
		}
		if k.Desc {
			expr += " DESC"
		}
		keys = append(keys, expr)
	}

	unique := ""
	if spec.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)", unique, spec.Name, table, strings.Join(keys, ", ")), nil
}

func stampTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
