package diff

import (
	"errors"
	"fmt"
)

// ErrStructuralMismatch is the only domain error of classification: the
// candidate cannot be paired with the template position by position.
var ErrStructuralMismatch = errors.New("structural mismatch")

// MismatchError describes where and why a candidate was rejected.
type MismatchError struct {
	// Candidate is the address of the rejected candidate root.
	Candidate string
	// At is the address of the template node whose children disagree,
	// relative to the template root.
	At     string
	Reason string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("candidate %q: %s at %q", e.Candidate, e.Reason, e.At)
}

// Unwrap allows errors.Is(err, ErrStructuralMismatch).
func (e *MismatchError) Unwrap() error {
	return ErrStructuralMismatch
}
