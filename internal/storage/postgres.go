package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"GrestAPI/internal/resource"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCollection interprets the engine-neutral Query tree against one
// table via squirrel-built SQL. Mutations run in a transaction and return
// the resulting row, so partial writes are never observable.
type PostgresCollection struct {
	pool *pgxpool.Pool
	res  *resource.Resource
}

var _ resource.Collection = (*PostgresCollection)(nil)

func NewPostgresCollection(pool *pgxpool.Pool, res *resource.Resource) *PostgresCollection {
	return &PostgresCollection{pool: pool, res: res}
}

func (c *PostgresCollection) List(ctx context.Context, q resource.Query) ([]resource.Record, int, error) {
	where := whereClause(q)

	sb := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(c.res.FieldNames()...).
		From(c.res.Table)
	if where != nil {
		sb = sb.Where(where)
	}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		sb = sb.OrderBy(q.OrderBy + " " + dir)
	}
	if q.Offset > 0 {
		sb = sb.Offset(uint64(q.Offset))
	}
	if q.Limit >= 0 {
		sb = sb.Limit(uint64(q.Limit))
	}

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build select: %w", err)
	}
	rows, err := c.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", c.res.Table, err)
	}
	defer rows.Close()

	var items []resource.Record
	for rows.Next() {
		rec, err := recordFromRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := c.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (c *PostgresCollection) count(ctx context.Context, where sq.Sqlizer) (int, error) {
	cb := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("COUNT(*)").
		From(c.res.Table)
	if where != nil {
		cb = cb.Where(where)
	}
	sqlStr, args, err := cb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := c.pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.res.Table, err)
	}
	return total, nil
}

func (c *PostgresCollection) GetByKey(ctx context.Context, pk any) (resource.Record, error) {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(c.res.FieldNames()...).
		From(c.res.Table).
		Where(sq.Eq{c.res.PrimaryKey: pk}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	rows, err := c.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.res.Table, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, resource.ErrNotFound
	}
	return recordFromRow(rows)
}

func (c *PostgresCollection) Insert(ctx context.Context, rec resource.Record) (resource.Record, error) {
	rec = c.withGeneratedPK(rec)

	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	vals := make([]any, len(cols))
	for i, col := range cols {
		vals[i] = rec[col]
	}

	var sqlStr string
	var args []any
	var err error
	if len(cols) == 0 {
		sqlStr = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s",
			c.res.Table, strings.Join(c.res.FieldNames(), ", "))
	} else {
		sqlStr, args, err = sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
			Insert(c.res.Table).
			Columns(cols...).
			Values(vals...).
			Suffix("RETURNING " + strings.Join(c.res.FieldNames(), ", ")).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert: %w", err)
		}
	}

	var created resource.Record
	err = pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return errors.New("insert returned no row")
		}
		created, err = recordFromRow(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", c.res.Table, err)
	}
	return created, nil
}

func (c *PostgresCollection) Update(ctx context.Context, pk any, changes resource.Record) (resource.Record, error) {
	if len(changes) == 0 {
		return c.GetByKey(ctx, pk)
	}

	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(c.res.Table).
		SetMap(map[string]any(changes)).
		Where(sq.Eq{c.res.PrimaryKey: pk}).
		Suffix("RETURNING " + strings.Join(c.res.FieldNames(), ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var updated resource.Record
	err = pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return resource.ErrNotFound
		}
		updated, err = recordFromRow(rows)
		return err
	})
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, resource.ErrNotFound
		}
		return nil, fmt.Errorf("update %s: %w", c.res.Table, err)
	}
	return updated, nil
}

func (c *PostgresCollection) Delete(ctx context.Context, pk any) error {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Delete(c.res.Table).
		Where(sq.Eq{c.res.PrimaryKey: pk}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	return pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("delete %s: %w", c.res.Table, err)
		}
		if tag.RowsAffected() == 0 {
			return resource.ErrNotFound
		}
		return nil
	})
}

// withGeneratedPK assigns a uuid when the declared primary key is a string
// column and the payload does not carry one. Integer keys are left to the
// database sequence.
func (c *PostgresCollection) withGeneratedPK(rec resource.Record) resource.Record {
	f := c.res.FieldByName(c.res.PrimaryKey)
	if f == nil || f.Type != "string" {
		return rec
	}
	if _, ok := rec[c.res.PrimaryKey]; ok {
		return rec
	}
	out := resource.Record{}
	for k, v := range rec {
		out[k] = v
	}
	out[c.res.PrimaryKey] = uuid.NewString()
	return out
}

// whereClause renders the predicate tree: filters and search form a
// conjunction, excludes are negated as a whole (NOT (a AND b)), matching
// the subtract-matches contract.
func whereClause(q resource.Query) sq.Sqlizer {
	var conj sq.And
	for _, cond := range q.Conditions {
		conj = append(conj, conditionSqlizer(cond))
	}
	if q.Search != nil {
		var or sq.Or
		for _, field := range q.Search.Fields {
			or = append(or, sq.ILike{field: "%" + q.Search.Term + "%"})
		}
		conj = append(conj, or)
	}
	if len(q.Excludes) > 0 {
		var ex sq.And
		for _, cond := range q.Excludes {
			ex = append(ex, conditionSqlizer(cond))
		}
		sqlStr, args, err := ex.ToSql()
		if err == nil {
			conj = append(conj, sq.Expr("NOT ("+sqlStr+")", args...))
		}
	}
	if len(conj) == 0 {
		return nil
	}
	return conj
}

func conditionSqlizer(cond resource.Condition) sq.Sqlizer {
	if len(cond.Values) == 1 {
		return sq.Eq{cond.Field: cond.Values[0]}
	}
	return sq.Eq{cond.Field: cond.Values}
}

// recordFromRow materializes the current row as a Record using the result
// field descriptions, so the collection needs no per-resource scan targets.
func recordFromRow(rows pgx.Rows) (resource.Record, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}
	descs := rows.FieldDescriptions()
	rec := make(resource.Record, len(descs))
	for i, d := range descs {
		rec[string(d.Name)] = values[i]
	}
	return rec, nil
}
