package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	apperr "github.com/callsight/callsight/internal/pkg/errors"

	"github.com/callsight/callsight/internal/store"
)

// DuplicateGuard answers "has this call been ingested already" before any
// embedding cost is paid. The policy on store failure is fail closed: an
// unreachable store rejects the ingestion instead of risking a duplicate.
// The two outcomes stay distinguishable for callers: ErrConflict means a
// real duplicate, ErrStoreUnavailable means the check itself failed.
type DuplicateGuard struct {
	store store.CallStore
}

func NewDuplicateGuard(s store.CallStore) *DuplicateGuard {
	return &DuplicateGuard{store: s}
}

func (g *DuplicateGuard) Check(ctx context.Context, callID int64) error {
	exists, err := g.store.Exists(ctx, store.CallFilter{CallID: callID})
	if err != nil {
		logutil.GetLogger(ctx).Error("duplicate check failed, rejecting ingestion",
			zap.Int64("call_id", callID), zap.Error(err))
		return fmt.Errorf("%w: duplicate check failed: %v", apperr.ErrStoreUnavailable, err)
	}
	if exists {
		logutil.GetLogger(ctx).Warn("attempted to ingest duplicate call", zap.Int64("call_id", callID))
		return fmt.Errorf("%w: call %d already exists", apperr.ErrConflict, callID)
	}
	return nil
}
