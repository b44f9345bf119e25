// Package pgvector provides a vector.Index backed by PostgreSQL with the
// pgvector extension, for deployments that already run Postgres.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvectorgo "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/smallnest/memorygo/vector"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PgvectorIndex implements vector.Index on a pgvector table.
//
// Cosine distance (the <=> operator) backs the similarity score, reported as
// 1 - distance so scores land in [-1, 1] like the other backends.
type PgvectorIndex struct {
	pool       DBPool
	tableName  string
	dimensions int
}

var _ vector.Index = (*PgvectorIndex)(nil)

// PgvectorOptions configuration for Postgres connection
type PgvectorOptions struct {
	ConnString string
	TableName  string // Default "message_vectors"
	Dimensions int    // Embedding dimension, default 384
}

// NewPgvectorIndex creates a new pgvector-backed index.
func NewPgvectorIndex(ctx context.Context, opts PgvectorOptions) (*PgvectorIndex, error) {
	config, err := pgxpool.ParseConfig(opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	return newWithPool(pool, opts.TableName, opts.Dimensions), nil
}

// NewPgvectorIndexWithPool creates an index with an existing pool.
// Useful for testing with mocks.
func NewPgvectorIndexWithPool(pool DBPool, tableName string, dimensions int) *PgvectorIndex {
	return newWithPool(pool, tableName, dimensions)
}

func newWithPool(pool DBPool, tableName string, dimensions int) *PgvectorIndex {
	if tableName == "" {
		tableName = "message_vectors"
	}
	if dimensions <= 0 {
		dimensions = 384
	}
	return &PgvectorIndex{pool: pool, tableName: tableName, dimensions: dimensions}
}

// InitSchema enables the pgvector extension and creates the table if needed.
func (idx *PgvectorIndex) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL
		);
	`, idx.tableName, idx.dimensions)

	if _, err := idx.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (idx *PgvectorIndex) Close() {
	idx.pool.Close()
}

// Upsert inserts or overwrites records by ID.
func (idx *PgvectorIndex) Upsert(ctx context.Context, records []vector.Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, metadata, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT(id) DO UPDATE SET
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`, idx.tableName)

	for _, r := range records {
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", r.ID, err)
		}
		if _, err := idx.pool.Exec(ctx, query, r.ID, metadataJSON, pgvectorgo.NewVector(r.Vector)); err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", r.ID, err)
		}
	}
	return nil
}

// Query returns up to topK hits ordered by descending cosine similarity.
func (idx *PgvectorIndex) Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filter: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE metadata @> $2::jsonb
		ORDER BY embedding <=> $1
		LIMIT $3
	`, idx.tableName)

	rows, err := idx.pool.Query(ctx, query, pgvectorgo.NewVector(vec), filterJSON, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var (
			r            vector.QueryResult
			metadataJSON []byte
		)
		if err := rows.Scan(&r.ID, &metadataJSON, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &r.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

// Delete removes records by ID.
func (idx *PgvectorIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", idx.tableName)
	if _, err := idx.pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}
