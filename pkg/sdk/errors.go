package runway

import "github.com/kailas-cloud/runway/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnknownFeature = domain.ErrUnknownFeature
	ErrUnknownStep    = domain.ErrUnknownStep
)
