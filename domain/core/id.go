package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	PatternID    ID
	InsightID    ID
	ExtractionID ID
	VariableKey  ID
	SegmentID    ID
	ConceptID    ID
)

// String conversions for domain IDs
func (id PatternID) String() string    { return ID(id).String() }
func (id InsightID) String() string    { return ID(id).String() }
func (id ExtractionID) String() string { return ID(id).String() }
func (id VariableKey) String() string  { return ID(id).String() }
func (id SegmentID) String() string    { return ID(id).String() }
func (id ConceptID) String() string    { return ID(id).String() }

// ParseInsightID parses a string into InsightID
func ParseInsightID(s string) (InsightID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("insight ID cannot be empty")
	}
	return InsightID(s), nil
}

// ParseVariableKey parses a string into VariableKey
func ParseVariableKey(s string) (VariableKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("variable key cannot be empty")
	}
	return VariableKey(s), nil
}
