package trackselection

import "errors"

// Error definitions for selection passes
var (
	ErrCapabilityQuery = errors.New("capability query failed")
	ErrInputMismatch   = errors.New("renderer, track group and support inputs differ in length")
)
