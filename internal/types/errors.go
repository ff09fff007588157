package types

import "errors"

// Sentinel errors shared by the repos, services and handlers. Handlers map
// these to status codes and user-facing phrasing; everything else stays a
// generic server error at the boundary.
var (
  ErrMissingInput         = errors.New("required input missing")
  ErrVehicleNotFound      = errors.New("vehicle not found")
  ErrOwnerContactMissing  = errors.New("owner contact missing")
  ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
  ErrCodeAlreadyConsumed  = errors.New("verification code already consumed")
  ErrRateLimited          = errors.New("too many verification requests")
)
