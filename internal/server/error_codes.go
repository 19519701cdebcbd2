package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument   = 1000
	ErrCodeInvalidJSON       = 1001
	ErrCodeRequestTooLarge   = 1002
	ErrCodeInvalidQuery      = 1003
	ErrCodeInvalidID         = 1004
	ErrCodeMissingRequired   = 1005
	ErrCodeInvalidEmail      = 1006
	ErrCodeInvalidPassword   = 1007
	ErrCodeInvalidVisibility = 1008
	ErrCodeUnknownOwner      = 1009

	// Domain state (2xxx)
	ErrCodeFileNotFound     = 2001
	ErrCodeVersionNotFound  = 2002
	ErrCodeBlobMissing      = 2003
	ErrCodeUserNotFound     = 2004
	ErrCodeResourceNotFound = 2005
	ErrCodeEmailExists      = 2101
	ErrCodeConflict         = 2102
	ErrCodeUserHasFiles     = 2103

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeNotImplemented = 4005
	ErrCodeIOFailure      = 4006
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 404:
		return ErrCodeFileNotFound
	case 409:
		return ErrCodeConflict
	case 413:
		return ErrCodeRequestTooLarge
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	case 501:
		return ErrCodeNotImplemented
	default:
		return 0
	}
}
