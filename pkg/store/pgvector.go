package store

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/shelternet/shelterbot/internal/models"
	"github.com/shelternet/shelterbot/internal/types"
)

type VectorStoreConfig struct {
	ConnString  string
	TableName   string
	VectorDim   int
	SearchLimit int
}

// VectorStore is a pgvector-backed document store holding both the
// shelter and the disaster-guideline collections, partitioned by the
// metadata type field. Documents are written once at ingestion and
// read-only afterwards.
type VectorStore struct {
	config   VectorStoreConfig
	pool     *pgxpool.Pool
	embedder types.Embedder
}

var _ types.DocStore = (*VectorStore)(nil)

func NewWithConfig(ctx context.Context, config VectorStoreConfig, embedder types.Embedder) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 5
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &VectorStore{config: config, pool: pool, embedder: embedder}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	if _, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d),
			metadata JSONB
		)`, vs.config.TableName, vs.config.VectorDim)
	if _, err := vs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)
	if _, err := vs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	createMetaIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_metadata_idx
		ON %s USING gin (metadata)`,
		vs.config.TableName, vs.config.TableName)
	if _, err := vs.pool.Exec(ctx, createMetaIndex); err != nil {
		return fmt.Errorf("failed to create metadata index: %w", err)
	}

	return nil
}

// Store embeds and upserts documents. Used by the ingestion command only;
// the serving path never writes.
func (vs *VectorStore) Store(ctx context.Context, docs []models.Document) error {
	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, content, embedding, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		vs.config.TableName)

	for _, doc := range docs {
		content := sanitizeUTF8(doc.Content)

		embedding, err := vs.embedder.CreateEmbedding(ctx, []string{content})
		if err != nil {
			return fmt.Errorf("failed to create embedding for %s: %w", doc.ID, err)
		}
		if len(embedding) == 0 {
			return fmt.Errorf("embedder returned nothing for %s", doc.ID)
		}

		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", doc.ID, err)
		}

		_, err = tx.Exec(ctx, stmt, doc.ID, content, pgvector.NewVector(embedding[0]), metadata)
		if err != nil {
			return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get returns every document whose metadata matches all filter entries
// (JSONB containment, so two conditions AND together).
func (vs *VectorStore) Get(ctx context.Context, filter map[string]string) ([]models.Document, error) {
	where, arg, err := filterClause(filter)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, content, metadata FROM %s %s`, vs.config.TableName, where)

	var rows pgxRows
	if arg != nil {
		rows, err = vs.pool.Query(ctx, query, arg)
	} else {
		rows, err = vs.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// SimilaritySearch embeds the query and returns the top-k documents by
// cosine distance, restricted to the filter.
func (vs *VectorStore) SimilaritySearch(ctx context.Context, query string, k int, filter map[string]string) ([]models.Document, error) {
	if k <= 0 {
		k = vs.config.SearchLimit
	}

	embedding, err := vs.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedder returned nothing for query")
	}

	where, arg, err := filterClause(filter)
	if err != nil {
		return nil, err
	}

	var rows pgxRows
	vec := pgvector.NewVector(embedding[0])
	if arg != nil {
		stmt := fmt.Sprintf(`
			SELECT id, content, metadata FROM %s %s
			ORDER BY embedding <=> $2 LIMIT $3`, vs.config.TableName, where)
		rows, err = vs.pool.Query(ctx, stmt, arg, vec, k)
	} else {
		stmt := fmt.Sprintf(`
			SELECT id, content, metadata FROM %s
			ORDER BY embedding <=> $1 LIMIT $2`, vs.config.TableName)
		rows, err = vs.pool.Query(ctx, stmt, vec, k)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Count reports how many documents match the filter.
func (vs *VectorStore) Count(ctx context.Context, filter map[string]string) (int, error) {
	where, arg, err := filterClause(filter)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`SELECT count(*) FROM %s %s`, vs.config.TableName, where)

	var n int
	if arg != nil {
		err = vs.pool.QueryRow(ctx, query, arg).Scan(&n)
	} else {
		err = vs.pool.QueryRow(ctx, query).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

type pgxRows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDocuments(rows pgxRows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		var metadata []byte
		if err := rows.Scan(&doc.ID, &doc.Content, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", doc.ID, err)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading rows: %w", err)
	}
	return docs, nil
}

func filterClause(filter map[string]string) (where string, arg any, err error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	encoded, err := json.Marshal(filter)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode filter: %w", err)
	}
	return "WHERE metadata @> $1::jsonb", string(encoded), nil
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
