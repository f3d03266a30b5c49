package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrInternal
	ErrInvalidFile
	ErrUploadFailed
	ErrIngestFailed
	ErrAIUnavailable
)
