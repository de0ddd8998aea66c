package location

import "errors"

// Sensor failure modes. All of them resolve to the fallback coordinate;
// none is surfaced as a hard error.
var (
	ErrPermissionDenied = errors.New("position access denied")
	ErrUnavailable      = errors.New("positioning unavailable")
	ErrStaleFix         = errors.New("position fix too old")
)
