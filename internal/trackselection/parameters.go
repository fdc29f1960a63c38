package trackselection

import (
	"fmt"
	"math"
)

// Unbounded is used for max video sizes and viewport dimensions that are not set.
const Unbounded = math.MaxInt32

// Size of the common SD cap used by SetMaxVideoSizeSD.
const (
	MaxVideoWidthSD  = 1279
	MaxVideoHeightSD = 719
)

// NoOverride disables an override index.
const NoOverride = -1

// Override forces the group and/or track a strategy returns.
// Either index may be NoOverride.
type Override struct {
	Group int
	Track int
}

// NoOverrides is the zero configuration for an Override.
var NoOverrides = Override{Group: NoOverride, Track: NoOverride}

// IsSet reports whether any index is overridden.
func (o Override) IsSet() bool {
	return o.Group != NoOverride || o.Track != NoOverride
}

func (o Override) String() string {
	if !o.IsSet() {
		return "none"
	}
	return fmt.Sprintf("group=%d track=%d", o.Group, o.Track)
}

// Parameters is an immutable snapshot of the selection preferences.
type Parameters struct {
	// Audio; the audio language is also the fallback for forced text tracks.
	PreferredAudioLanguage string
	// Text.
	PreferredTextLanguage string

	// Video.
	AllowMixedMimeAdaptiveness        bool
	AllowNonSeamlessAdaptiveness      bool
	MaxVideoWidth                     int
	MaxVideoHeight                    int
	ExceedVideoConstraintsIfNecessary bool
	ViewportWidth                     int
	ViewportHeight                    int
	ViewportOrientationMayChange      bool

	VideoOverride Override
	AudioOverride Override
}

// DefaultParameters returns the default preferences: no language preference, no size or
// viewport constraints, non-seamless adaptation allowed, constraints may be exceeded and
// no overrides.
func DefaultParameters() Parameters {
	return Parameters{
		AllowNonSeamlessAdaptiveness:      true,
		MaxVideoWidth:                     Unbounded,
		MaxVideoHeight:                    Unbounded,
		ExceedVideoConstraintsIfNecessary: true,
		ViewportWidth:                     Unbounded,
		ViewportHeight:                    Unbounded,
		ViewportOrientationMayChange:      true,
		VideoOverride:                     NoOverrides,
		AudioOverride:                     NoOverrides,
	}
}

// requiredAdaptiveSupport returns the adaptive bits a renderer must report for a track to
// join an adaptive selection.
func (p Parameters) requiredAdaptiveSupport() Support {
	if p.AllowNonSeamlessAdaptiveness {
		return AdaptiveNotSeamless | AdaptiveSeamless
	}
	return AdaptiveSeamless
}
