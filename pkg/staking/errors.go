package staking

import "github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"

// Local aliases keep call sites in this package reading naturally while
// still surfacing the shared, stable sentinel errors from coreerr.
var (
	errInvalidReferral = coreerr.ErrInvalidAmount
	errCircular        = coreerr.ErrCircularReferenceDetected
	errComputeLimit    = coreerr.ErrComputeUnitLimitExceeded
)
