package extract

import (
	"fmt"
	"strings"

	apperr "github.com/callsight/callsight/internal/pkg/errors"

	"github.com/callsight/callsight/internal/model"
)

const unknownName = "Unknown"

// CallMetadata derives the call-level record from the raw payload. Pure:
// no I/O and no embedding calls happen here. Missing file_name is a hard
// error; every other field falls back to its documented default.
func CallMetadata(raw *model.RawCall) (*model.CallMetadataRecord, error) {
	if raw == nil || raw.Parameters == nil {
		return nil, fmt.Errorf("%w: parameters object is required", apperr.ErrExtraction)
	}
	params := raw.Parameters
	if strings.TrimSpace(params.FileName) == "" {
		return nil, fmt.Errorf("%w: file_name is required", apperr.ErrExtraction)
	}

	rec := &model.CallMetadataRecord{
		CallID:       -1,
		AgentName:    unknownName,
		CustomerName: unknownName,
		FileName:     params.FileName,
		CallDuration: -1,
		DateTime:     -1,
	}
	if raw.CallID != nil {
		rec.CallID = *raw.CallID
	}
	if params.AgentName != "" {
		rec.AgentName = params.AgentName
	}
	if params.CustomerName != "" {
		rec.CustomerName = params.CustomerName
	}
	if params.DurationSec != nil {
		rec.CallDuration = *params.DurationSec
	}
	if params.TimeDatestamp != nil {
		rec.DateTime = params.TimeDatestamp
	}
	return rec, nil
}
