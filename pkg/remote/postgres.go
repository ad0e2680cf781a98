package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Postgres error codes the backend reacts to
const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

// Querier is the subset of pgxpool.Pool the backend issues statements through
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Backend implements domain.Backend and domain.Prober over Postgres.
// Each collection is a table holding records in a jsonb column.
type Backend struct {
	db   Querier
	pool *pgxpool.Pool

	tablePrefix  string
	ensureTables bool
	ensured      sync.Map
	now          func() time.Time
	newID        func() string
}

// New creates a backend issuing statements through db
func New(db Querier, options ...Option) *Backend {
	backend := &Backend{
		db:    db,
		now:   time.Now,
		newID: domain.NewRecordID,
	}
	for _, option := range options {
		option(backend)
	}
	return backend
}

// Connect opens a connection pool for dsn. The pool connects lazily, so an
// unreachable server surfaces on the first probe rather than here.
func Connect(ctx context.Context, dsn string, options ...Option) (*Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection to postgres database: %w", err)
	}
	backend := New(pool, options...)
	backend.pool = pool
	return backend, nil
}

// Close releases the connection pool opened by Connect
func (b *Backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

// Ping checks that the server is reachable
func (b *Backend) Ping(ctx context.Context) error {
	if b.pool == nil {
		return nil
	}
	return b.pool.Ping(ctx)
}

func (b *Backend) table(ctx context.Context, collection string) (string, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return "", err
	}
	table := pgx.Identifier{b.tablePrefix + collection}.Sanitize()
	if b.ensureTables {
		if _, done := b.ensured.Load(table); !done {
			if err := b.createTable(ctx, table); err != nil {
				return "", err
			}
			b.ensured.Store(table, struct{}{})
		}
	}
	return table, nil
}

// EnsureTable creates the table backing collection if it does not exist
func (b *Backend) EnsureTable(ctx context.Context, collection string) error {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return err
	}
	table := pgx.Identifier{b.tablePrefix + collection}.Sanitize()
	if err := b.createTable(ctx, table); err != nil {
		return err
	}
	b.ensured.Store(table, struct{}{})
	return nil
}

func (b *Backend) createTable(ctx context.Context, table string) error {
	_, err := b.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
		seq bigserial,
		id text PRIMARY KEY,
		data jsonb NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz
	)`)
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	zap.S().Infof("Ensured table %s", table)
	return nil
}

// Probe performs a trial read of one row. An empty table is reachable; a missing
// table or any other failure wraps domain.ErrBackendUnavailable.
func (b *Backend) Probe(ctx context.Context, collection string) error {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return err
	}
	table := pgx.Identifier{b.tablePrefix + collection}.Sanitize()

	var id string
	err := b.db.QueryRow(ctx, `SELECT id FROM `+table+` LIMIT 1`).Scan(&id)
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable {
		return fmt.Errorf("%w: table %s not found", domain.ErrBackendUnavailable, table)
	}
	return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
}

// Read returns the records matching filter in insertion order
func (b *Backend) Read(ctx context.Context, collection string, filter domain.Filter) ([]domain.Record, error) {
	table, err := b.table(ctx, collection)
	if err != nil {
		return nil, err
	}
	where := newWhere().filter(filter)
	return b.queryRecords(ctx, `SELECT data FROM `+table+where.String()+` ORDER BY seq`, where.args...)
}

// Insert stores a record, assigning id and created_at when absent
func (b *Backend) Insert(ctx context.Context, collection string, record domain.Record) (domain.Record, error) {
	table, err := b.table(ctx, collection)
	if err != nil {
		return nil, err
	}
	rec, err := domain.Canonicalize(record)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateID(rec); err != nil {
		return nil, err
	}
	b.stampNew(rec)
	if err := b.insert(ctx, table, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (b *Backend) insert(ctx context.Context, table string, rec domain.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSerialization, err)
	}
	_, err = b.db.Exec(ctx, `INSERT INTO `+table+` (id, data) VALUES ($1, $2::jsonb)`, rec.ID(), string(data))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return domain.Invalid(domain.FieldID, fmt.Sprintf("%s already exists in %s", rec.ID(), table))
		}
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// Upsert merges record into the first row whose conflictKey holds exactly the
// same JSON value, or inserts it
func (b *Backend) Upsert(ctx context.Context, collection string, record domain.Record, conflictKey string) (domain.Record, error) {
	table, err := b.table(ctx, collection)
	if err != nil {
		return nil, err
	}
	if conflictKey == "" {
		conflictKey = domain.FieldID
	}
	rec, err := domain.Canonicalize(record)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateID(rec); err != nil {
		return nil, err
	}

	if value, ok := rec.Lookup(conflictKey); ok {
		where, err := newWhere().same(conflictKey, value)
		if err != nil {
			return nil, err
		}
		existing, err := b.queryRecords(ctx, `SELECT data FROM `+table+where.String()+` ORDER BY seq LIMIT 1`, where.args...)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			merged := existing[0].Merge(rec)
			merged[domain.FieldUpdatedAt] = domain.Timestamp(b.now())
			data, err := json.Marshal(merged)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
			}
			_, err = b.db.Exec(ctx, `UPDATE `+table+` SET data = $2::jsonb, updated_at = now() WHERE id = $1`, merged.ID(), string(data))
			if err != nil {
				return nil, fmt.Errorf("failed to update %s: %w", table, err)
			}
			return merged, nil
		}
	}

	b.stampNew(rec)
	if err := b.insert(ctx, table, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update merges patch into every row whose matchColumn equals matchValue
func (b *Backend) Update(ctx context.Context, collection, matchColumn string, matchValue interface{}, patch domain.Record) ([]domain.Record, error) {
	table, err := b.table(ctx, collection)
	if err != nil {
		return nil, err
	}
	canonicalPatch, err := domain.Canonicalize(patch)
	if err != nil {
		return nil, err
	}
	delete(canonicalPatch, domain.FieldID)
	canonicalPatch[domain.FieldUpdatedAt] = domain.Timestamp(b.now())

	data, err := json.Marshal(canonicalPatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
	}
	where := newWhere(string(data)).eq(matchColumn, matchValue)
	return b.queryRecords(ctx, `UPDATE `+table+` SET data = data || $1::jsonb, updated_at = now()`+where.String()+` RETURNING data`, where.args...)
}

// Delete removes every row whose matchColumn equals matchValue
func (b *Backend) Delete(ctx context.Context, collection, matchColumn string, matchValue interface{}) (int, error) {
	table, err := b.table(ctx, collection)
	if err != nil {
		return 0, err
	}
	where := newWhere().eq(matchColumn, matchValue)
	tag, err := b.db.Exec(ctx, `DELETE FROM `+table+where.String(), where.args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return int(tag.RowsAffected()), nil
}

// Reset removes every row of a collection
func (b *Backend) Reset(ctx context.Context, collection string) error {
	table, err := b.table(ctx, collection)
	if err != nil {
		return err
	}
	if _, err := b.db.Exec(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("failed to reset %s: %w", table, err)
	}
	return nil
}

func (b *Backend) queryRecords(ctx context.Context, sql string, args ...interface{}) ([]domain.Record, error) {
	rows, err := b.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := domain.Record{}
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return records, nil
}

func (b *Backend) stampNew(rec domain.Record) {
	if strings.TrimSpace(rec.ID()) == "" {
		rec[domain.FieldID] = b.newID()
	}
	if _, ok := rec[domain.FieldCreatedAt]; !ok {
		rec[domain.FieldCreatedAt] = domain.Timestamp(b.now())
	}
}
