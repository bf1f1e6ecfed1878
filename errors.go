package lodestone

import "github.com/lodestone-ai/lodestone-go/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation           = domain.ErrValidation
	ErrDimensionMismatch    = domain.ErrDimensionMismatch
	ErrUnsupportedOperation = domain.ErrUnsupportedOperation
	ErrNotFound             = domain.ErrNotFound
	ErrRateLimited          = domain.ErrRateLimited
	ErrTransientServer      = domain.ErrTransientServer
	ErrPermanentServer      = domain.ErrPermanentServer
	ErrTransport            = domain.ErrTransport
	ErrInvalidConfig        = domain.ErrInvalidConfig
	ErrInvalidArgument      = domain.ErrInvalidArgument
)

// APIError carries the remote status and message alongside the local
// error kind. Extract with errors.As.
type APIError = domain.APIError
