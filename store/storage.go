package store

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pdfbot/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type Record struct {
	Chunk     types.Chunk
	Embedding []float32
}

// VectorStore holds the vectors of a single Index. Search may return more
// than k results; the Index orders and trims them.
type VectorStore interface {
	Add(ctx context.Context, records []Record) error
	Search(ctx context.Context, query []float32, k int) (types.RetrievalResult, error)
	Count() int
	Close() error
}

// Postgres владеет пулом соединений, общим для всех индексов процесса.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Postgres{
		pool: pool,
	}, nil
}

// NewStore returns an empty store backed by its own table.
func (p *Postgres) NewStore() *PostgresStore {
	return &PostgresStore{
		pool:  p.pool,
		table: "pdfbot_chunks_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
}

// Close закрывает пул подключений
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}

// PostgresStore is a session-scoped pgvector table. It is created on the
// first Add and dropped on Close.
type PostgresStore struct {
	pool    *pgxpool.Pool
	table   string
	created bool
	count   int
}

func (s *PostgresStore) Table() string {
	return s.table
}

func (s *PostgresStore) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *PostgresStore) createTable(ctx context.Context, dim int) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE %s (
		position INT PRIMARY KEY,
		content TEXT NOT NULL,
		start_offset INT NOT NULL,
		end_offset INT NOT NULL,
		overlap INT NOT NULL,
		embedding vector(%d) NOT NULL
	);
	`, s.ident(), dim)

	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresStore) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if !s.created {
		if err := s.createTable(ctx, len(records[0].Embedding)); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.table, err)
		}
		s.created = true
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (position, content, start_offset, end_offset, overlap, embedding)
	VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ident())

	batch := &pgx.Batch{}
	for _, r := range records {
		c := r.Chunk
		batch.Queue(query, c.Position, c.Content, c.Start, c.End, c.Overlap, pgvector.NewVector(r.Embedding))
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	s.count += len(records)
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, queryVec []float32, limit int) (types.RetrievalResult, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("пустой вектор запроса")
	}
	if !s.created {
		return types.RetrievalResult{}, nil
	}

	query := fmt.Sprintf(`
		SELECT position, content, start_offset, end_offset, overlap,
		       1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, position
		LIMIT $2
	`, s.ident())

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res types.RetrievalResult
	for rows.Next() {
		var sc types.ScoredChunk
		if err := rows.Scan(
			&sc.Chunk.Position,
			&sc.Chunk.Content,
			&sc.Chunk.Start,
			&sc.Chunk.End,
			&sc.Chunk.Overlap,
			&sc.Score); err != nil {
			return nil, err
		}
		log.Printf("[SEARCH] Найден чанк: %d (score: %.4f)\n", sc.Chunk.Position, sc.Score)
		res = append(res, sc)
	}
	return res, rows.Err()
}

func (s *PostgresStore) Count() int {
	return s.count
}

// Close drops the table; the pool stays open for other stores.
func (s *PostgresStore) Close() error {
	if !s.created {
		return nil
	}
	_, err := s.pool.Exec(context.Background(), fmt.Sprintf("DROP TABLE IF EXISTS %s", s.ident()))
	if err != nil {
		return fmt.Errorf("failed to drop %s: %w", s.table, err)
	}
	s.created = false
	s.count = 0
	return nil
}
