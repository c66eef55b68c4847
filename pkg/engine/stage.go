package engine

import (
	"time"

	"github.com/germanamz/smartbuddy/pkg/prompts"
)

// Stage is a step of one user action through the pipeline.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageRequesting       Stage = "requesting"
	StageRetrying         Stage = "retrying"
	StageCheckingLanguage Stage = "checking_language"
	StageCorrecting       Stage = "correcting"
	StageAccepted         Stage = "accepted"
	StageFailed           Stage = "failed"
)

// Terminal reports whether no further stage follows s in the same action.
func (s Stage) Terminal() bool {
	return s == StageAccepted || s == StageFailed
}

// Event is an immutable notification of a stage transition.
type Event struct {
	Stage     Stage
	SessionID string
	Feature   prompts.Feature
	Timestamp time.Time

	// Attempt is the failed attempt number for StageRetrying.
	Attempt int
	// Delay is the backoff before the next attempt for StageRetrying.
	Delay time.Duration
	// Ratio is the measured script ratio for StageCorrecting.
	Ratio float64
	// Err is the failure for StageRetrying and StageFailed.
	Err error
}
