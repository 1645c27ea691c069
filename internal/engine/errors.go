package engine

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors.
var (
	ErrAuthRequired     = errors.New("go_tube: authentication required")
	ErrQuotaExceeded    = errors.New("go_tube: daily quota exceeded")
	ErrJobNotFound      = errors.New("go_tube: reporting job not found")
	ErrJobDeleted       = errors.New("go_tube: reporting job deleted")
	ErrArtifactNotReady = errors.New("go_tube: report not ready")
	ErrNoCaptions       = errors.New("go_tube: no caption track available")
)

// QuotaError is returned when a reservation would push consumption past the
// daily limit. It carries the remaining budget and reset time so callers can
// decide whether to wait or give up.
type QuotaError struct {
	Requested int
	Remaining int
	Limit     int
	ResetAt   time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("go_tube: quota exceeded: need %d units, %d/%d remaining, resets %s",
		e.Requested, e.Remaining, e.Limit, e.ResetAt.Format(time.RFC3339))
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// AuthError wraps a credential failure with context on what is missing.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("go_tube: auth: %s: %v", e.Reason, e.Err)
	}
	return "go_tube: auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return ErrAuthRequired }

// APIError is a non-2xx response from one of the YouTube services.
type APIError struct {
	Service string // "data", "analytics", "reporting"
	Status  int
	Reason  string // API error reason, e.g. "forbidden", "quotaExceeded"
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("go_tube: %s api: http %d %s: %s", e.Service, e.Status, e.Reason, e.Message)
}

// IsNotFound reports whether err is a 404 from any of the services.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == 404
}

// NoTranscriptError means both transcript tiers failed. The per-tier reasons
// stay distinct so a caller can tell "not your video" from "no captions
// exist anywhere".
type NoTranscriptError struct {
	VideoID  string
	Official error
	Fallback error
}

func (e *NoTranscriptError) Error() string {
	return fmt.Sprintf("go_tube: no transcript for %s: official tier: %v; fallback tier: %v",
		e.VideoID, e.Official, e.Fallback)
}
