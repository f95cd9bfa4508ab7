// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Computation errors
	ErrCalculation  = errors.New("calculation error")
	ErrMissingData  = errors.New("required data missing")
	ErrEmptyDataset = errors.New("dataset is empty")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")

	// Cache errors
	ErrCache      = errors.New("cache error")
	ErrCacheMiss  = errors.New("cache miss")
	ErrCacheStale = errors.New("cached data is stale")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "play", "stats", "toer"
	Op      string // Operation that failed, e.g., "Calculate", "Fetch"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Team domain errors
var (
	ErrTeamNotFound      = NewDomainError("team", "Find", ErrNotFound, "team not found")
	ErrInvalidTeamAbbr   = NewDomainError("team", "Validate", ErrInvalidID, "invalid team abbreviation")
	ErrInvalidSeason     = NewDomainError("team", "Validate", ErrValueOutOfRange, "invalid season year")
	ErrInvalidSeasonType = NewDomainError("team", "Validate", ErrInvalidInput, "invalid season type")
	ErrPlayoffsNotMade   = NewDomainError("team", "FilterSeasonType", ErrNotFound, "team did not reach the playoffs")
)

// Play domain errors
var (
	ErrNoPlayData        = NewDomainError("play", "Load", ErrEmptyDataset, "no play-by-play data")
	ErrMissingColumns    = NewDomainError("play", "Validate", ErrMissingData, "required columns missing")
	ErrInvalidPlayRecord = NewDomainError("play", "Parse", ErrInvalidFormat, "invalid play record")
)

// Stats domain errors
var (
	ErrNoGamesFound     = NewDomainError("stats", "Aggregate", ErrNotFound, "no games found for team")
	ErrStatsCalculation = NewDomainError("stats", "Calculate", ErrCalculation, "statistics calculation failed")
	ErrNoSeasonData     = NewDomainError("stats", "AggregateSeason", ErrEmptyDataset, "no data for the requested season")
)

// TOER domain errors
var (
	ErrMetricOutOfRange = NewDomainError("toer", "Validate", ErrValueOutOfRange, "metric value out of valid range")
	ErrUnknownMetric    = NewDomainError("toer", "Score", ErrInvalidInput, "unknown rating metric")
	ErrBadRuleCondition = NewDomainError("toer", "ParseRules", ErrInvalidFormat, "malformed rule condition")
)

// Ranking domain errors
var (
	ErrRankingUnavailable = NewDomainError("ranking", "Calculate", ErrMissingData, "league data unavailable for ranking")
	ErrUnknownRankMetric  = NewDomainError("ranking", "Rank", ErrInvalidInput, "metric is not ranked")
)

// Cache domain errors
var (
	ErrCacheComputeFailed = NewDomainError("cache", "GetOrCompute", ErrCache, "compute function failed")
	ErrCacheEntryExpired  = NewDomainError("cache", "Get", ErrExpired, "cache entry expired")
)

// External data source errors
var (
	ErrNFLVerseUnavailable     = NewDomainError("nflverse", "Request", ErrServiceUnavailable, "nflverse data source is unavailable")
	ErrNFLVerseRateLimited     = NewDomainError("nflverse", "Request", ErrRateLimited, "nflverse rate limit exceeded")
	ErrNFLVerseTimeout         = NewDomainError("nflverse", "Request", ErrTimeout, "nflverse request timeout")
	ErrNFLVerseInvalidResponse = NewDomainError("nflverse", "Parse", ErrInvalidFormat, "invalid response from nflverse")
	ErrSeasonNotPublished      = NewDomainError("nflverse", "Request", ErrNotFound, "season data not published yet")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsCalculation checks if the error came from a statistics computation.
func IsCalculation(err error) bool {
	return errors.Is(err, ErrCalculation) ||
		errors.Is(err, ErrMissingData) ||
		errors.Is(err, ErrEmptyDataset)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
