package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	apperr "github.com/callsight/callsight/internal/pkg/errors"

	"github.com/callsight/callsight/internal/ai"
	"github.com/callsight/callsight/internal/extract"
	"github.com/callsight/callsight/internal/filestore"
	"github.com/callsight/callsight/internal/model"
	"github.com/callsight/callsight/internal/store"
)

// IngestService runs one call through the ingestion state machine:
// validate, duplicate-check, extract, embed, persist. All embeddings
// complete before the first write so an embedding failure never leaves
// partial state. The metadata upsert strictly precedes the segment batch
// insert; when the second write fails the call is surfaced as a partial
// persistence so operators can reconcile, not reported as success.
type IngestService struct {
	guard    *DuplicateGuard
	store    store.CallStore
	embedder ai.IEmbedder
	archive  filestore.Store
	pool     *ants.Pool
	dim      int
}

type IngestOptions struct {
	Dim      int
	PoolSize int
	Archive  filestore.Store
}

func NewIngestService(s store.CallStore, embedder ai.IEmbedder, opts IngestOptions) (*IngestService, error) {
	if s == nil {
		return nil, fmt.Errorf("call store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if opts.Dim <= 0 {
		return nil, fmt.Errorf("embedding dimension is required")
	}
	poolSize := opts.PoolSize
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &IngestService{
		guard:    NewDuplicateGuard(s),
		store:    s,
		embedder: embedder,
		archive:  opts.Archive,
		pool:     pool,
		dim:      opts.Dim,
	}, nil
}

func (s *IngestService) Close() {
	s.pool.Release()
}

// Ingest processes one call. rawBody is the original request body, kept
// only for the optional archive; it plays no part in extraction.
//
// Known race: two concurrent ingestions of the same call_id can both pass
// the duplicate check before either writes. The call_id primary key makes
// the metadata writes converge on a single row, so the worst outcome is
// doubled transcript rows for that call, never duplicate metadata.
func (s *IngestService) Ingest(ctx context.Context, raw *model.RawCall, rawBody []byte) error {
	if err := ValidateStructure(raw); err != nil {
		return err
	}
	callID, fileName, err := ValidateIdentifiers(raw)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx).With(zap.Int64("call_id", callID), zap.String("file_name", fileName))

	// Duplicate check runs before any embedding or write.
	if err := s.guard.Check(ctx, callID); err != nil {
		return err
	}

	meta, err := extract.CallMetadata(raw)
	if err != nil {
		return err
	}
	segments := extract.TranscriptSegments(callID, raw)

	if err := s.embedAll(ctx, meta, segments); err != nil {
		logger.Error("embedding failed", zap.Error(err))
		return fmt.Errorf("%w: %v", apperr.ErrEmbedding, err)
	}

	if err := s.store.UpsertCallMetadata(ctx, meta); err != nil {
		logger.Error("metadata upsert failed", zap.Error(err))
		return fmt.Errorf("%w: metadata upsert: %v", apperr.ErrPersistence, err)
	}
	if err := s.store.InsertSegments(ctx, segments); err != nil {
		// Metadata is already persisted; the call now exists without its
		// segments and re-ingestion will be rejected by the guard.
		logger.Error("segment insert failed after metadata upsert, call left orphaned",
			zap.Int("segments", len(segments)), zap.Error(err))
		return fmt.Errorf("%w: call %d persisted without %d segments: %v",
			apperr.ErrPartialPersistence, callID, len(segments), err)
	}

	logger.Info("call ingested", zap.Int("segments", len(segments)))
	s.archivePayload(ctx, callID, rawBody)
	return nil
}

// embedAll computes the file-name vector and one vector per segment,
// fanned out over the worker pool. Results land in place.
func (s *IngestService) embedAll(ctx context.Context, meta *model.CallMetadataRecord, segments []model.TranscriptSegmentRecord) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	embed := func(text string, dst *[]float32) {
		defer wg.Done()
		vec, err := s.embedText(ctx, text)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		*dst = vec
	}
	submit := func(text string, dst *[]float32) {
		wg.Add(1)
		if err := s.pool.Submit(func() { embed(text, dst) }); err != nil {
			// Pool rejected the task; run inline rather than dropping it.
			embed(text, dst)
		}
	}

	// File names are embedded lower-cased, same as segment text, which
	// the extractor already normalized.
	submit(strings.ToLower(meta.FileName), &meta.FileNameVector)
	for i := range segments {
		submit(segments[i].Text, &segments[i].Embedding)
	}
	wg.Wait()
	return firstErr
}

func (s *IngestService) embedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) != s.dim {
		return nil, fmt.Errorf("embedder returned dimension %d, want %d", len(vec), s.dim)
	}
	return vec, nil
}

// archivePayload stores the raw request for replay and audit. Best
// effort: archive failure does not fail an already-persisted ingestion.
func (s *IngestService) archivePayload(ctx context.Context, callID int64, rawBody []byte) {
	if s.archive == nil || len(rawBody) == 0 {
		return
	}
	key := fmt.Sprintf("call_%d.json", callID)
	if err := s.archive.Save(ctx, key, filestore.BytesReader(rawBody), int64(len(rawBody))); err != nil {
		logutil.GetLogger(ctx).Warn("payload archive failed",
			zap.Int64("call_id", callID), zap.Error(err))
	}
}
