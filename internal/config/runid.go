package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// runIDRegex matches the 8 hex characters NewRunID produces.
var runIDRegex = regexp.MustCompile(`^[0-9a-f]{8}$`)

// NewRunID generates a short run identifier. It is created once by the
// provisioner, embedded in every resource name, and carried through the
// hand-off record so all stages agree on resource identity without relying
// on wall-clock timestamps.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ValidateRunID rejects identifiers that did not come from NewRunID.
func ValidateRunID(id string) error {
	if !runIDRegex.MatchString(id) {
		return fmt.Errorf("invalid run id %q: expected 8 hex characters", id)
	}
	return nil
}
