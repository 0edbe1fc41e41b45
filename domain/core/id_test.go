package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	emptyID := ID("")
	if !emptyID.IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}

	nonEmptyID := ID("not-empty")
	if nonEmptyID.IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseFunnelName tests funnel name parsing
func TestParseFunnelName(t *testing.T) {
	tests := []struct {
		input    string
		expected FunnelName
		hasError bool
	}{
		{"account-creation", FunnelName("account-creation"), false},
		{"  Account-Creation ", FunnelName("account-creation"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseFunnelName(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestComputeKeyHashSeparatesParts tests that part boundaries change the hash
func TestComputeKeyHashSeparatesParts(t *testing.T) {
	if ComputeKeyHash("ab", "c").Equals(ComputeKeyHash("a", "bc")) {
		t.Error("Expected different hashes for different part boundaries")
	}
	if !ComputeKeyHash("a", "b").Equals(ComputeKeyHash("a", "b")) {
		t.Error("Expected identical parts to hash identically")
	}
}

// TestErrorClassification tests the sentinel helpers
func TestErrorClassification(t *testing.T) {
	if !IsNotFoundError(NewFunnelNotFoundError("x")) {
		t.Error("Expected funnel-not-found to be a not-found error")
	}
	if !errors.Is(NewFunnelNotFoundError("x"), ErrFunnelNotFound) {
		t.Error("Expected wrapped ErrFunnelNotFound")
	}
	if !IsDataError(NewNegativeStageError("a", -1)) {
		t.Error("Expected negative stage to be a data error")
	}
	if !IsRenderError(ErrNoSurface) {
		t.Error("Expected ErrNoSurface to be a render error")
	}
}
