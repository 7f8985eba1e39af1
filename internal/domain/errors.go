package domain

import "errors"

var (
	// ErrNotClosed is returned when freezing a round or period that is not closed yet.
	ErrNotClosed = errors.New("results are not closed")
	// ErrAlreadyFrozen is returned when a snapshot already exists for the target.
	ErrAlreadyFrozen = errors.New("results already frozen")
	// ErrInconsistentMergeInput indicates merge inputs not sorted by participant id.
	ErrInconsistentMergeInput = errors.New("merge input not sorted by participant")
	// ErrRoundNotFound indicates the round could not be loaded.
	ErrRoundNotFound = errors.New("round not found")
	// ErrPeriodNotFound indicates the period could not be loaded.
	ErrPeriodNotFound = errors.New("period not found")
	// ErrParticipantNotFound indicates the participant is not registered in the period.
	ErrParticipantNotFound = errors.New("participant not found in period")
)
