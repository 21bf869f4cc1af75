package errors

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request body structure")
	ErrMissingIdentifier  = errors.New("missing identifier")
	ErrConflict           = errors.New("conflict")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrExtraction         = errors.New("extraction failed")
	ErrEmbedding          = errors.New("embedding failed")
	ErrPersistence        = errors.New("persistence failed")
	ErrPartialPersistence = errors.New("partial persistence")
)

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsRejection reports whether err is a pre-write rejection rather than a
// mid-pipeline failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrMissingIdentifier) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrStoreUnavailable)
}
