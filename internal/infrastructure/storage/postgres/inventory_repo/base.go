// Package inventory_repo provides PostgreSQL implementations of the
// inventory repositories and the lot snapshot reader.
package inventory_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/core/entity"
	"stockpulse/internal/infrastructure/storage/postgres"
)

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// baseRepo holds the CRUD plumbing shared by the inventory tables.
type baseRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	now        func() time.Time
}

func newBaseRepo[T any](txm *postgres.TxManager, tableName, entityName string) baseRepo[T] {
	return baseRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *baseRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *baseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return Builder().Select(r.selectCols...).From(r.tableName)
}

// insertQuery builds the INSERT of row, returning the generated id.
func (r *baseRepo[T]) insertQuery(row *T) squirrel.InsertBuilder {
	data := postgres.PickColumns(postgres.StructToMap(row), r.selectCols, "id")
	return Builder().
		Insert(r.tableName).
		SetMap(data).
		Suffix("RETURNING id")
}

// insert stamps the timestamps, inserts the row and returns its id.
// key names the business value reported on unique violations.
func (r *baseRepo[T]) insert(ctx context.Context, row *T, ts *entity.Timestamps, key any) (int64, error) {
	ts.Touch(r.now())

	sql, args, err := r.insertQuery(row).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, r.entityName, key, "insert")
	}
	return id, nil
}

// updateQuery builds the UPDATE of every mutable column of row.
func (r *baseRepo[T]) updateQuery(row *T, id int64) squirrel.UpdateBuilder {
	data := postgres.PickColumns(postgres.StructToMap(row), r.selectCols, "id", "created_at")
	return Builder().
		Update(r.tableName).
		SetMap(data).
		Where(squirrel.Eq{"id": id})
}

func (r *baseRepo[T]) update(ctx context.Context, row *T, ts *entity.Timestamps, id int64, key any) error {
	ts.UpdatedAt = r.now()

	sql, args, err := r.updateQuery(row, id).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, r.entityName, key, "update")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, id)
	}
	return nil
}

func (r *baseRepo[T]) delete(ctx context.Context, id int64) error {
	sql, args, err := Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, r.entityName, id, "delete")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, id)
	}
	return nil
}

// get runs q and scans a single row. key is reported when nothing matches.
func (r *baseRepo[T]) get(ctx context.Context, q squirrel.SelectBuilder, key any) (*T, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := new(T)
	if err := pgxscan.Get(ctx, r.querier(ctx), row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, key)
		}
		return nil, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return row, nil
}

func (r *baseRepo[T]) list(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []T{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return items, nil
}

// count runs a COUNT(*) query.
func (r *baseRepo[T]) count(ctx context.Context, q squirrel.SelectBuilder) (int, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.tableName, err)
	}
	return n, nil
}

// exists reports whether q returns a row. q must select a constant.
func (r *baseRepo[T]) exists(ctx context.Context, q squirrel.SelectBuilder) (bool, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var found int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return true, nil
}
