// Package sqlite persists narrative structures in a SQLite document store.
//
// Each structure is stored whole as JSON keyed by its document ID, with a few
// summary columns for listing.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Yates-Labs/anar/internal/engine"
)

//go:embed migrations/*.sql
var migrations embed.FS

const documentsTable = "documents"

// Summary is the listing view of a stored document.
type Summary struct {
	DocumentID   string      `json:"document_id"`
	Title        string      `json:"title"`
	Source       string      `json:"source"`
	FrameLevel   int         `json:"frame_level"`
	FrameCount   int         `json:"frame_count"`
	ElementCount int         `json:"element_count"`
	FrameError   engine.Code `json:"frame_error,omitempty"`
	SavedAt      time.Time   `json:"saved_at"`
}

// ListOptions filters List. Zero values do not filter.
type ListOptions struct {
	Source string
	Limit  int
}

// Store provides SQLite-backed persistence for narrative structures.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a document store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := runMigrations(context.Background(), sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// SQLite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save upserts a structure by document ID.
func (s *Store) Save(ctx context.Context, structure *engine.NarrativeStructure) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.save(ctx, s.sqlDB, structure)
}

// SaveAll saves structures in one transaction.
func (s *Store) SaveAll(ctx context.Context, structures []*engine.NarrativeStructure) (err error) {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, structure := range structures {
		if err = s.save(ctx, tx, structure); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, exec execer, structure *engine.NarrativeStructure) error {
	if structure == nil || strings.TrimSpace(structure.ID) == "" {
		return fmt.Errorf("document id is required")
	}

	payload, err := json.Marshal(structure)
	if err != nil {
		return fmt.Errorf("marshal structure: %w", err)
	}

	query, args, err := sq.Insert(documentsTable).
		Columns("document_id", "title", "source", "frame_level", "frame_count", "element_count", "frame_error", "payload_json", "saved_at").
		Values(
			structure.ID,
			structure.Title,
			structure.Metadata.Source,
			structure.FrameLevel,
			len(structure.Frames),
			len(structure.CulturalElements),
			string(structure.Metadata.FrameError),
			payload,
			s.now().UTC().UnixMilli(),
		).
		Suffix(`ON CONFLICT(document_id) DO UPDATE SET
		    title = excluded.title,
		    source = excluded.source,
		    frame_level = excluded.frame_level,
		    frame_count = excluded.frame_count,
		    element_count = excluded.element_count,
		    frame_error = excluded.frame_error,
		    payload_json = excluded.payload_json,
		    saved_at = excluded.saved_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save document %s: %w", structure.ID, err)
	}
	return nil
}

// Get loads a structure by document ID. The boolean reports whether it exists.
func (s *Store) Get(ctx context.Context, documentID string) (*engine.NarrativeStructure, bool, error) {
	if s == nil || s.sqlDB == nil {
		return nil, false, fmt.Errorf("storage is not configured")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, false, fmt.Errorf("document id is required")
	}

	query, args, err := sq.Select("payload_json").
		From(documentsTable).
		Where(sq.Eq{"document_id": documentID}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build select: %w", err)
	}

	var payload []byte
	if err := s.sqlDB.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get document %s: %w", documentID, err)
	}

	var structure engine.NarrativeStructure
	if err := json.Unmarshal(payload, &structure); err != nil {
		return nil, false, fmt.Errorf("decode document %s: %w", documentID, err)
	}
	return &structure, true, nil
}

// List returns summaries of stored documents ordered by title.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Summary, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	builder := sq.Select("document_id", "title", "source", "frame_level", "frame_count", "element_count", "frame_error", "saved_at").
		From(documentsTable).
		OrderBy("title", "document_id")
	if opts.Source != "" {
		builder = builder.Where(sq.Eq{"source": opts.Source})
	}
	if opts.Limit > 0 {
		builder = builder.Limit(uint64(opts.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var sum Summary
		var frameError string
		var savedAt int64
		if err := rows.Scan(
			&sum.DocumentID,
			&sum.Title,
			&sum.Source,
			&sum.FrameLevel,
			&sum.FrameCount,
			&sum.ElementCount,
			&frameError,
			&savedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document summary: %w", err)
		}
		sum.FrameError = engine.Code(frameError)
		sum.SavedAt = time.UnixMilli(savedAt).UTC()
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return summaries, nil
}

// Delete removes a document by ID.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	query, args, err := sq.Delete(documentsTable).Where(sq.Eq{"document_id": documentID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.sqlDB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}
