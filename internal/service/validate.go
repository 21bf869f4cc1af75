package service

import (
	"fmt"
	"strings"

	apperr "github.com/callsight/callsight/internal/pkg/errors"

	"github.com/callsight/callsight/internal/model"
)

var (
	ErrMissingCallID            = fmt.Errorf("%w: callId", apperr.ErrMissingIdentifier)
	ErrMissingFileName          = fmt.Errorf("%w: filename", apperr.ErrMissingIdentifier)
	ErrMissingCallIDAndFileName = fmt.Errorf("%w: callId and filename", apperr.ErrMissingIdentifier)
)

// ValidateStructure checks the container shape of the payload: call_id,
// parameters and paragraphs at top level, and a transcripts list whose
// first entry carries trans.
func ValidateStructure(raw *model.RawCall) error {
	if raw == nil {
		return apperr.ErrInvalidRequest
	}
	if raw.CallID == nil || raw.Parameters == nil || raw.Paragraphs == nil {
		return apperr.ErrInvalidRequest
	}
	if len(raw.Paragraphs.Transcripts) == 0 || raw.Paragraphs.Transcripts[0].Trans == nil {
		return apperr.ErrInvalidRequest
	}
	return nil
}

// ValidateIdentifiers checks call_id and file_name independently so the
// caller can tell the user which one is missing. A zero call_id counts
// as missing.
func ValidateIdentifiers(raw *model.RawCall) (int64, string, error) {
	var callID int64
	if raw.CallID != nil {
		callID = *raw.CallID
	}
	var fileName string
	if raw.Parameters != nil {
		fileName = strings.TrimSpace(raw.Parameters.FileName)
	}
	switch {
	case callID == 0 && fileName == "":
		return 0, "", ErrMissingCallIDAndFileName
	case callID == 0:
		return 0, "", ErrMissingCallID
	case fileName == "":
		return 0, "", ErrMissingFileName
	}
	return callID, fileName, nil
}
