package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/callsight/callsight/internal/model"
	"github.com/callsight/callsight/internal/pkg/dbutil"
)

// CallStore is the facade over the vector database. Schema creation is
// idempotent and happens once at startup, not per request.
type CallStore interface {
	EnsureSchema(ctx context.Context) error
	Exists(ctx context.Context, filter CallFilter) (bool, error)
	UpsertCallMetadata(ctx context.Context, rec *model.CallMetadataRecord) error
	InsertSegments(ctx context.Context, segments []model.TranscriptSegmentRecord) error
	ListOrphanCallIDs(ctx context.Context, limit int) ([]int64, error)
}

// CallFilter is a typed predicate compiled to parameterized SQL inside
// the facade. Values never get formatted into the query text.
type CallFilter struct {
	CallID int64
}

func (f CallFilter) where() map[string]interface{} {
	return map[string]interface{}{
		"call_id": f.CallID,
	}
}

type PGCallStore struct {
	conn *ConnManager
	dim  int
}

func NewPGCallStore(conn *ConnManager, dim int) *PGCallStore {
	return &PGCallStore{conn: conn, dim: dim}
}

func (s *PGCallStore) EnsureSchema(ctx context.Context) error {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	for _, stmt := range schemaStatements(s.dim) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	logutil.GetLogger(ctx).Info("store schema ensured", zap.Int("dim", s.dim))
	return nil
}

func (s *PGCallStore) Exists(ctx context.Context, filter CallFilter) (bool, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return false, err
	}
	where := filter.where()
	where["_limit"] = []uint{1}
	query, args, err := builder.BuildSelect("calls_metadata", where, []string{"call_id"})
	if err != nil {
		return false, err
	}
	query, args = dbutil.Finalize(query, args)
	var got int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&got); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *PGCallStore) UpsertCallMetadata(ctx context.Context, rec *model.CallMetadataRecord) error {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	if len(rec.FileNameVector) != s.dim {
		return fmt.Errorf("file name vector has dimension %d, store expects %d", len(rec.FileNameVector), s.dim)
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO calls_metadata (call_id, metadata, file_name_vector)
		VALUES ($1, $2, $3)
		ON CONFLICT (call_id) DO UPDATE SET
			metadata = EXCLUDED.metadata,
			file_name_vector = EXCLUDED.file_name_vector
	`
	_, err = db.ExecContext(ctx, query, rec.CallID, blob, pgvector.NewVector(rec.FileNameVector))
	return err
}

func (s *PGCallStore) InsertSegments(ctx context.Context, segments []model.TranscriptSegmentRecord) error {
	if len(segments) == 0 {
		return nil
	}
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	rows := make([]map[string]interface{}, 0, len(segments))
	for _, seg := range segments {
		if len(seg.Embedding) != s.dim {
			return fmt.Errorf("segment vector has dimension %d, store expects %d", len(seg.Embedding), s.dim)
		}
		rows = append(rows, map[string]interface{}{
			"call_id":    seg.CallID,
			"text":       seg.Text,
			"speaker":    seg.Speaker,
			"start_time": seg.StartTime,
			"end_time":   seg.EndTime,
			"embedding":  pgvector.NewVector(seg.Embedding),
		})
	}
	query, args, err := builder.BuildInsert("call_transcripts", rows)
	if err != nil {
		return err
	}
	query, args = dbutil.Finalize(query, args)
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// ListOrphanCallIDs returns calls that have a metadata row but no
// transcript rows. A call whose transcripts were all empty looks the
// same, so the result is an audit candidate list, not proof of a failed
// segment insert.
func (s *PGCallStore) ListOrphanCallIDs(ctx context.Context, limit int) ([]int64, error) {
	db, err := s.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	const query = `
		SELECT m.call_id
		FROM calls_metadata m
		LEFT JOIN call_transcripts t ON m.call_id = t.call_id
		WHERE t.call_id IS NULL
		ORDER BY m.call_id
		LIMIT $1
	`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
