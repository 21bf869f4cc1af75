package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	apperr "github.com/callsight/callsight/internal/pkg/errors"

	"github.com/callsight/callsight/internal/model"
	"github.com/callsight/callsight/internal/store"
)

const testDim = 8

type fakeStore struct {
	mu        sync.Mutex
	existing  map[int64]bool
	existsErr error
	upsertErr error
	insertErr error
	metadata  []*model.CallMetadataRecord
	segments  []model.TranscriptSegmentRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: map[int64]bool{}}
}

func (f *fakeStore) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeStore) Exists(ctx context.Context, filter store.CallFilter) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[filter.CallID], nil
}

func (f *fakeStore) UpsertCallMetadata(ctx context.Context, rec *model.CallMetadataRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.existing[rec.CallID] = true
	f.metadata = append(f.metadata, rec)
	return nil
}

func (f *fakeStore) InsertSegments(ctx context.Context, segments []model.TranscriptSegmentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.segments = append(f.segments, segments...)
	return nil
}

func (f *fakeStore) ListOrphanCallIDs(ctx context.Context, limit int) ([]int64, error) {
	return nil, nil
}

type fakeEmbedder struct {
	mu    sync.Mutex
	dim   int
	err   error
	calls []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	vec := make([]float32, f.dim)
	for i := range vec {
		vec[i] = float32(len(text)+i) / 10
	}
	return vec, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake" }

func newIngest(t *testing.T, s store.CallStore, e *fakeEmbedder) *IngestService {
	t.Helper()
	svc, err := NewIngestService(s, e, IngestOptions{Dim: testDim, PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestIngestFreshCall(t *testing.T) {
	fs := newFakeStore()
	emb := &fakeEmbedder{dim: testDim}
	svc := newIngest(t, fs, emb)

	raw := validPayload(42, "call42.wav")
	require.NoError(t, svc.Ingest(context.Background(), raw, nil))

	require.Len(t, fs.metadata, 1)
	meta := fs.metadata[0]
	require.Equal(t, int64(42), meta.CallID)
	require.Equal(t, "Unknown", meta.AgentName)
	require.Len(t, meta.FileNameVector, testDim)

	require.Len(t, fs.segments, 1)
	seg := fs.segments[0]
	require.Equal(t, int64(42), seg.CallID)
	require.Equal(t, "hello", seg.Text)
	require.Equal(t, model.SpeakerAgent, seg.Speaker)
	require.Equal(t, 0.0, seg.StartTime)
	require.Equal(t, 1.3, seg.EndTime)
	require.Len(t, seg.Embedding, testDim)

	// File names embed lower-cased.
	require.Contains(t, emb.calls, "call42.wav")
	require.Contains(t, emb.calls, "hello")
}

func TestIngestDuplicateRejected(t *testing.T) {
	fs := newFakeStore()
	fs.existing[42] = true
	emb := &fakeEmbedder{dim: testDim}
	svc := newIngest(t, fs, emb)

	err := svc.Ingest(context.Background(), validPayload(42, "call42.wav"), nil)
	require.ErrorIs(t, err, apperr.ErrConflict)
	// No embedding cost is paid for a duplicate.
	require.Empty(t, emb.calls)
	require.Empty(t, fs.metadata)
}

func TestIngestReingestAfterSuccessConflicts(t *testing.T) {
	fs := newFakeStore()
	svc := newIngest(t, fs, &fakeEmbedder{dim: testDim})

	require.NoError(t, svc.Ingest(context.Background(), validPayload(42, "call42.wav"), nil))
	err := svc.Ingest(context.Background(), validPayload(42, "call42.wav"), nil)
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Len(t, fs.metadata, 1)
}

func TestIngestFailsClosedWhenStoreUnavailable(t *testing.T) {
	fs := newFakeStore()
	fs.existsErr = fmt.Errorf("connection refused")
	emb := &fakeEmbedder{dim: testDim}
	svc := newIngest(t, fs, emb)

	err := svc.Ingest(context.Background(), validPayload(42, "call42.wav"), nil)
	require.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	require.NotErrorIs(t, err, apperr.ErrConflict)
	require.Empty(t, emb.calls)
	require.Empty(t, fs.metadata)
}

func TestIngestEmbeddingFailureWritesNothing(t *testing.T) {
	fs := newFakeStore()
	svc := newIngest(t, fs, &fakeEmbedder{dim: testDim, err: fmt.Errorf("model down")})

	err := svc.Ingest(context.Background(), validPayload(42, "call42.wav"), nil)
	require.ErrorIs(t, err, apperr.ErrEmbedding)
	require.Empty(t, fs.metadata)
	require.Empty(t, fs.segments)
}

func TestIngestWrongDimensionRejected(t *testing.T) {
	fs := newFakeStore()
	svc := newIngest(t, fs, &fakeEmbedder{dim: testDim + 1})

	err := svc.Ingest(context.Background(), validPayload(42, "call42.wav"), nil)
	require.ErrorIs(t, err, apperr.ErrEmbedding)
	require.Empty(t, fs.metadata)
}

func TestIngestMetadataUpsertFailure(t *testing.T) {
	fs := newFakeStore()
	fs.upsertErr = fmt.Errorf("disk full")
	svc := newIngest(t, fs, &fakeEmbedder{dim: testDim})

	err := svc.Ingest(context.Background(), validPayload(42, "call42.wav"), nil)
	require.ErrorIs(t, err, apperr.ErrPersistence)
	require.NotErrorIs(t, err, apperr.ErrPartialPersistence)
	require.Empty(t, fs.segments)
}

func TestIngestPartialPersistenceSurfaced(t *testing.T) {
	fs := newFakeStore()
	fs.insertErr = fmt.Errorf("write timeout")
	svc := newIngest(t, fs, &fakeEmbedder{dim: testDim})

	err := svc.Ingest(context.Background(), validPayload(42, "call42.wav"), nil)
	require.ErrorIs(t, err, apperr.ErrPartialPersistence)
	// Metadata landed before the segment write failed.
	require.Len(t, fs.metadata, 1)
	require.Empty(t, fs.segments)
}

func TestIngestEmptyTranscriptEntriesSkipped(t *testing.T) {
	fs := newFakeStore()
	svc := newIngest(t, fs, &fakeEmbedder{dim: testDim})

	raw := validPayload(7, "a.wav")
	raw.Paragraphs.Transcripts = append(raw.Paragraphs.Transcripts,
		model.TranscriptEntry{Trans: strPtr(""), Speaker: 2},
		model.TranscriptEntry{Trans: strPtr("Bye"), Speaker: 2, StartTime: 3, TillTime: 4},
	)
	require.NoError(t, svc.Ingest(context.Background(), raw, nil))
	require.Len(t, fs.segments, 2)
	require.Equal(t, "hello", fs.segments[0].Text)
	require.Equal(t, "bye", fs.segments[1].Text)
}

func TestIngestManySegmentsConcurrently(t *testing.T) {
	fs := newFakeStore()
	svc := newIngest(t, fs, &fakeEmbedder{dim: testDim})

	raw := validPayload(9, "big.wav")
	raw.Paragraphs.Transcripts = nil
	for i := 0; i < 50; i++ {
		text := fmt.Sprintf("utterance %d", i)
		raw.Paragraphs.Transcripts = append(raw.Paragraphs.Transcripts, model.TranscriptEntry{
			Trans: &text, Speaker: i % 2, StartTime: float64(i), TillTime: float64(i + 1),
		})
	}
	require.NoError(t, svc.Ingest(context.Background(), raw, nil))
	require.Len(t, fs.segments, 50)
	for i, seg := range fs.segments {
		require.Equal(t, fmt.Sprintf("utterance %d", i), seg.Text)
		require.Len(t, seg.Embedding, testDim)
	}
}

func TestIngestMissingIdentifiers(t *testing.T) {
	fs := newFakeStore()
	svc := newIngest(t, fs, &fakeEmbedder{dim: testDim})

	raw := validPayload(0, "")
	err := svc.Ingest(context.Background(), raw, nil)
	require.ErrorIs(t, err, ErrMissingCallIDAndFileName)

	raw = validPayload(0, "a.wav")
	require.ErrorIs(t, svc.Ingest(context.Background(), raw, nil), ErrMissingCallID)

	raw = validPayload(5, "")
	require.ErrorIs(t, svc.Ingest(context.Background(), raw, nil), ErrMissingFileName)
}
