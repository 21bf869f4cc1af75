package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	apperr "github.com/callsight/callsight/internal/pkg/errors"

	"github.com/callsight/callsight/internal/model"
	"github.com/callsight/callsight/internal/pkg/errcode"
	"github.com/callsight/callsight/internal/pkg/response"
	"github.com/callsight/callsight/internal/service"
)

// handleIngestError maps pipeline error kinds to the HTTP surface.
// Rejections due to an unreachable store answer 409 like real duplicates
// (fail closed) so producers retry later instead of treating the call as
// ingested.
func handleIngestError(c *gin.Context, raw *model.RawCall, err error) {
	logutil.GetLogger(c.Request.Context()).Warn("ingestion not completed",
		zap.Int("errcode", classify(err)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, service.ErrMissingCallIDAndFileName):
		response.Error(c, http.StatusBadRequest, "callId and filename is missing from data")
	case errors.Is(err, service.ErrMissingCallID):
		response.Error(c, http.StatusBadRequest, "callId is missing from data")
	case errors.Is(err, service.ErrMissingFileName):
		response.Error(c, http.StatusBadRequest, "filename is missing from data")
	case errors.Is(err, apperr.ErrInvalidRequest):
		response.Error(c, http.StatusBadRequest, "Invalid request body structure")
	case errors.Is(err, apperr.ErrConflict):
		response.Error(c, http.StatusConflict, conflictMessage(raw))
	case errors.Is(err, apperr.ErrStoreUnavailable):
		response.Error(c, http.StatusConflict, "Conflict: duplicate check unavailable, call rejected")
	default:
		response.Error(c, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %s", err))
	}
}

func conflictMessage(raw *model.RawCall) string {
	var callID int64
	if raw.CallID != nil {
		callID = *raw.CallID
	}
	var fileName string
	if raw.Parameters != nil {
		fileName = raw.Parameters.FileName
	}
	return fmt.Sprintf("Conflict: Call with ID '%d' with File Name '%s' already exists.", callID, fileName)
}

func classify(err error) int {
	switch {
	case errors.Is(err, apperr.ErrMissingIdentifier):
		return errcode.ErrMissingIdentifier
	case errors.Is(err, apperr.ErrInvalidRequest):
		return errcode.ErrInvalid
	case errors.Is(err, apperr.ErrConflict):
		return errcode.ErrConflict
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return errcode.ErrStoreUnavailable
	case errors.Is(err, apperr.ErrExtraction):
		return errcode.ErrExtraction
	case errors.Is(err, apperr.ErrEmbedding):
		return errcode.ErrEmbedding
	case errors.Is(err, apperr.ErrPartialPersistence):
		return errcode.ErrPartialPersistence
	case errors.Is(err, apperr.ErrPersistence):
		return errcode.ErrPersistence
	default:
		return errcode.ErrInternal
	}
}
