package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cartalabs/carta/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.carta/data/carta.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".carta", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "carta.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// FileStore returns a FileStore interface backed by this store.
func (s *Store) FileStore() driven.FileStore {
	return &fileStore{store: s}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// BlobStore returns a BlobStore interface backed by this store.
func (s *Store) BlobStore() driven.BlobStore {
	return &blobStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== File Store ====================

// fileStore implements driven.FileStore.
type fileStore struct {
	store *Store
}

var _ driven.FileStore = (*fileStore)(nil)

// Save stores or updates a file record. Claim columns are owned by
// Claim and Release and are never touched here.
func (s *fileStore) Save(ctx context.Context, file *domain.SourceFile) error {
	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO files (id, room_id, name, size, mime_type, status,
			chunk_count, processed_chunks, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			room_id = excluded.room_id,
			name = excluded.name,
			size = excluded.size,
			mime_type = excluded.mime_type,
			status = excluded.status,
			chunk_count = excluded.chunk_count,
			processed_chunks = excluded.processed_chunks,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at
	`, file.ID, file.RoomID, file.Name, file.Size, file.MimeType, file.Status,
		file.ChunkCount, file.ProcessedChunks, file.ErrorMessage,
		file.CreatedAt, file.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	return nil
}

// Get retrieves a file by ID.
func (s *fileStore) Get(ctx context.Context, id string) (*domain.SourceFile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, room_id, name, size, mime_type, status, chunk_count,
			processed_chunks, error_message, locked_by, lease_expiry,
			created_at, updated_at
		FROM files WHERE id = ?
	`, id)

	return scanFileRow(row)
}

// List returns all files in a room, newest first.
func (s *fileStore) List(ctx context.Context, roomID string) ([]domain.SourceFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, room_id, name, size, mime_type, status, chunk_count,
			processed_chunks, error_message, locked_by, lease_expiry,
			created_at, updated_at
		FROM files WHERE room_id = ?
		ORDER BY created_at DESC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	return collectFiles(rows)
}

// ListUnfinished returns non-terminal files, oldest first.
func (s *fileStore) ListUnfinished(ctx context.Context) ([]domain.SourceFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, room_id, name, size, mime_type, status, chunk_count,
			processed_chunks, error_message, locked_by, lease_expiry,
			created_at, updated_at
		FROM files WHERE status NOT IN (?, ?)
		ORDER BY created_at ASC
	`, domain.StatusCompleted, domain.StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	return collectFiles(rows)
}

// Delete removes a file record. Chunks and payloads cascade.
func (s *fileStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// Claim atomically acquires the processing claim for a file. The
// acquisition is one conditional UPDATE, so two workers racing for
// the same file resolve inside SQLite.
func (s *fileStore) Claim(ctx context.Context, id, worker string, ttl time.Duration) error {
	now := time.Now().UTC()
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE files SET locked_by = ?, lease_expiry = ?
		WHERE id = ?
		  AND (locked_by = '' OR locked_by = ? OR lease_expiry IS NULL OR lease_expiry <= ?)
	`, worker, now.Add(ttl), id, worker, now)
	if err != nil {
		return fmt.Errorf("claiming file: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("claiming file: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a live foreign claim from a missing row.
	var exists int
	row := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM files WHERE id = ?", id)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("claiming file: %w", err)
	}
	return domain.ErrFileClaimed
}

// Release drops the claim held by worker. A claim held by someone
// else is left alone.
func (s *fileStore) Release(ctx context.Context, id, worker string) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE files SET locked_by = '', lease_expiry = NULL
		WHERE id = ? AND locked_by = ?
	`, id, worker)
	if err != nil {
		return fmt.Errorf("releasing file: %w", err)
	}
	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveAll bulk-inserts chunks in one transaction.
func (s *chunkStore) SaveAll(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, room_id, file_id, file_name, content, position, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			room_id = excluded.room_id,
			file_id = excluded.file_id,
			file_name = excluded.file_name,
			content = excluded.content,
			position = excluded.position,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.RoomID, chunk.FileID,
			chunk.FileName, chunk.Content, chunk.Position, embeddingBlob,
			chunk.CreatedAt); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a chunk by ID.
func (s *chunkStore) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, room_id, file_id, file_name, content, position, embedding, created_at
		FROM chunks WHERE id = ?
	`, id)

	var chunk domain.Chunk
	var embeddingBlob []byte
	if err := row.Scan(&chunk.ID, &chunk.RoomID, &chunk.FileID, &chunk.FileName,
		&chunk.Content, &chunk.Position, &embeddingBlob, &chunk.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	return &chunk, nil
}

// ListByFile returns all chunks for a file ordered by position.
func (s *chunkStore) ListByFile(ctx context.Context, fileID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, room_id, file_id, file_name, content, position, embedding, created_at
		FROM chunks WHERE file_id = ?
		ORDER BY position
	`, fileID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

// ListUnembedded returns up to limit chunks of a file that still lack
// an embedding, ordered by position.
func (s *chunkStore) ListUnembedded(ctx context.Context, fileID string, limit int) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, room_id, file_id, file_name, content, position, embedding, created_at
		FROM chunks
		WHERE file_id = ? AND (embedding IS NULL OR length(embedding) = 0)
		ORDER BY position
		LIMIT ?
	`, fileID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

// ListEmbedded returns all chunks in a room that carry an embedding.
func (s *chunkStore) ListEmbedded(ctx context.Context, roomID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, room_id, file_id, file_name, content, position, embedding, created_at
		FROM chunks
		WHERE room_id = ? AND embedding IS NOT NULL AND length(embedding) > 0
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

// SetEmbedding records the embedding vector for one chunk.
func (s *chunkStore) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE chunks SET embedding = ? WHERE id = ?
	`, float32SliceToBytes(embedding), id)
	if err != nil {
		return fmt.Errorf("setting embedding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting embedding: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByFile removes all chunks for a file.
func (s *chunkStore) DeleteByFile(ctx context.Context, fileID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE file_id = ?", fileID)
	if err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// ==================== Blob Store ====================

// blobStore implements driven.BlobStore.
type blobStore struct {
	store *Store
}

var _ driven.BlobStore = (*blobStore)(nil)

// Put stores the raw payload for a file.
func (s *blobStore) Put(ctx context.Context, fileID string, data []byte) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO payloads (file_id, data) VALUES (?, ?)
		ON CONFLICT(file_id) DO UPDATE SET data = excluded.data
	`, fileID, data)
	if err != nil {
		return fmt.Errorf("saving payload: %w", err)
	}
	return nil
}

// Get retrieves the raw payload for a file.
func (s *blobStore) Get(ctx context.Context, fileID string) ([]byte, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT data FROM payloads WHERE file_id = ?", fileID)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning payload: %w", err)
	}
	return data, nil
}

// Delete removes the payload.
func (s *blobStore) Delete(ctx context.Context, fileID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM payloads WHERE file_id = ?", fileID)
	if err != nil {
		return fmt.Errorf("deleting payload: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanFileRow scans a single file row.
func scanFileRow(row *sql.Row) (*domain.SourceFile, error) {
	var file domain.SourceFile
	var leaseExpiry sql.NullTime
	if err := row.Scan(&file.ID, &file.RoomID, &file.Name, &file.Size,
		&file.MimeType, &file.Status, &file.ChunkCount, &file.ProcessedChunks,
		&file.ErrorMessage, &file.LockedBy, &leaseExpiry,
		&file.CreatedAt, &file.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	if leaseExpiry.Valid {
		file.LeaseExpiry = leaseExpiry.Time
	}
	return &file, nil
}

// collectFiles drains a file result set.
func collectFiles(rows *sql.Rows) ([]domain.SourceFile, error) {
	var files []domain.SourceFile //nolint:prealloc // size unknown from query
	for rows.Next() {
		var file domain.SourceFile
		var leaseExpiry sql.NullTime
		if err := rows.Scan(&file.ID, &file.RoomID, &file.Name, &file.Size,
			&file.MimeType, &file.Status, &file.ChunkCount, &file.ProcessedChunks,
			&file.ErrorMessage, &file.LockedBy, &leaseExpiry,
			&file.CreatedAt, &file.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		if leaseExpiry.Valid {
			file.LeaseExpiry = leaseExpiry.Time
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}
	return files, nil
}

// collectChunks drains a chunk result set.
func collectChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.RoomID, &chunk.FileID, &chunk.FileName,
			&chunk.Content, &chunk.Position, &embeddingBlob, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}
