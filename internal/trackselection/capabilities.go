package trackselection

import "fmt"

// Support packs a renderer's verdict for one format: the format support level in the low
// three bits and the adaptive support bits above them.
type Support uint8

// Format support levels.
const (
	FormatUnsupportedType     Support = 0
	FormatUnsupportedSubtype  Support = 1
	FormatUnsupportedDRM      Support = 2
	FormatExceedsCapabilities Support = 3
	FormatHandled             Support = 4

	FormatSupportMask Support = 0b111
)

// Adaptive support bits.
const (
	AdaptiveNotSupported Support = 0
	AdaptiveNotSeamless  Support = 0b01000
	AdaptiveSeamless     Support = 0b10000

	AdaptiveSupportMask Support = 0b11000
)

// Level returns the format support level.
func (s Support) Level() Support {
	return s & FormatSupportMask
}

// Adaptive returns the adaptive support bits.
func (s Support) Adaptive() Support {
	return s & AdaptiveSupportMask
}

// IsHandled reports whether the format is fully handled. Only handled formats are
// ever selected by a strategy.
func (s Support) IsHandled() bool {
	return s.Level() == FormatHandled
}

func (s Support) String() string {
	var level string
	switch s.Level() {
	case FormatHandled:
		level = "handled"
	case FormatExceedsCapabilities:
		level = "exceeds_capabilities"
	case FormatUnsupportedDRM:
		level = "unsupported_drm"
	case FormatUnsupportedSubtype:
		level = "unsupported_subtype"
	case FormatUnsupportedType:
		level = "unsupported_type"
	default:
		level = fmt.Sprintf("level(%d)", s.Level())
	}
	switch s.Adaptive() {
	case AdaptiveSeamless | AdaptiveNotSeamless:
		return level + "+adaptive"
	case AdaptiveSeamless:
		return level + "+seamless"
	case AdaptiveNotSeamless:
		return level + "+not_seamless"
	}
	return level
}

// RendererCapabilities is the capability oracle for one renderer.
type RendererCapabilities interface {
	// TrackType returns the media category the renderer handles.
	TrackType() TrackType
	// SupportsFormat reports how well the renderer handles f.
	SupportsFormat(f Format) (Support, error)
	// SupportsMixedMimeTypeAdaptation returns the adaptive support bits that apply when
	// switching between formats of different mime types.
	SupportsMixedMimeTypeAdaptation() (Support, error)
}

// SupportMatrix holds the Support of every track of every group in a TrackGroupSet,
// indexed [group][track].
type SupportMatrix [][]Support

// At returns the support for track t of group g.
func (m SupportMatrix) At(g, t int) Support {
	return m[g][t]
}

// MapSupport queries caps for every format of every group. Any oracle failure aborts
// the whole mapping.
func MapSupport(caps RendererCapabilities, groups TrackGroupSet) (SupportMatrix, error) {
	m := make(SupportMatrix, len(groups))
	for gi, g := range groups {
		m[gi] = make([]Support, g.Len())
		for ti := 0; ti < g.Len(); ti++ {
			s, err := caps.SupportsFormat(g.Format(ti))
			if err != nil {
				return nil, fmt.Errorf("%w: %s renderer, format %q: %w",
					ErrCapabilityQuery, caps.TrackType(), g.Format(ti).ID, err)
			}
			m[gi][ti] = s
		}
	}
	return m, nil
}
