package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Fatal to a pass
	ErrDataShape     = errors.New("malformed processed data")
	ErrConfiguration = errors.New("invalid engine configuration")

	// Recoverable within a pass (skip the failing contributor)
	ErrAnalysis = errors.New("analysis component failed")

	// Collaborator failures (surfaced, never corrupt the in-memory result set)
	ErrRepository  = errors.New("insight repository failed")
	ErrMetaLearner = errors.New("meta-learner failed")

	// Data sufficiency
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewDataShapeError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDataShape, reason)
}

func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, field, reason)
}

func NewAnalysisError(component string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrAnalysis, component, err)
}

func NewRepositoryError(err error) error {
	return fmt.Errorf("%w: %v", ErrRepository, err)
}

func NewMetaLearnerError(err error) error {
	return fmt.Errorf("%w: %v", ErrMetaLearner, err)
}

// Error checking helpers
func IsDataShapeError(err error) bool {
	return errors.Is(err, ErrDataShape)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsAnalysisError(err error) bool {
	return errors.Is(err, ErrAnalysis)
}

func IsCollaboratorError(err error) bool {
	return errors.Is(err, ErrRepository) || errors.Is(err, ErrMetaLearner)
}

// IsFatal reports whether an error must abort the whole extraction pass.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDataShape) || errors.Is(err, ErrConfiguration)
}
