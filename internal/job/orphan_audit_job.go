package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/callsight/callsight/internal/store"
)

// OrphanAuditJob surfaces calls whose metadata persisted but whose
// segment insert never did. The pipeline deliberately runs no
// compensating rollback for that case, so the gap has to stay visible
// to operators. Calls whose transcripts were all empty also show up
// here; the log is a reconciliation worklist, not an alarm.
type OrphanAuditJob struct {
	store store.CallStore
	limit int
}

func NewOrphanAuditJob(s store.CallStore, limit int) *OrphanAuditJob {
	if limit <= 0 {
		limit = 100
	}
	return &OrphanAuditJob{store: s, limit: limit}
}

func (j *OrphanAuditJob) Name() string {
	return "orphan_audit"
}

func (j *OrphanAuditJob) Run(ctx context.Context) error {
	ids, err := j.store.ListOrphanCallIDs(ctx, j.limit)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	logutil.GetLogger(ctx).Warn("calls with metadata but no transcript segments",
		zap.Int("count", len(ids)),
		zap.Int64s("call_ids", ids),
	)
	return nil
}
