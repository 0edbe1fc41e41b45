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
	FunnelName ID
	QueryID    ID
	RenderID   ID
)

func (n FunnelName) String() string { return ID(n).String() }
func (q QueryID) String() string    { return ID(q).String() }
func (r RenderID) String() string   { return ID(r).String() }

// NewRenderID tags a single render pass, surfaced to clients for log correlation
func NewRenderID() RenderID {
	return RenderID(NewID())
}

// ParseFunnelName parses a string into FunnelName
func ParseFunnelName(s string) (FunnelName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("funnel name cannot be empty")
	}
	return FunnelName(strings.ToLower(s)), nil
}

// ParseQueryID parses a string into QueryID
func ParseQueryID(s string) (QueryID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("query ID cannot be empty")
	}
	return QueryID(s), nil
}
