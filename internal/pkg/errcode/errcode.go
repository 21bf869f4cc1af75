package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrInvalid
	ErrMissingIdentifier
	ErrConflict
	ErrStoreUnavailable
	ErrExtraction
	ErrEmbedding
	ErrPersistence
	ErrPartialPersistence
	ErrInternal
)
