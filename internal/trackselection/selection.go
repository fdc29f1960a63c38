package trackselection

import (
	"fmt"
	"slices"
)

// Reason explains why a selection was made.
type Reason string

const (
	ReasonAdaptive           Reason = "adaptive"
	ReasonWithinConstraints  Reason = "within_constraints"
	ReasonExceedsConstraints Reason = "exceeds_constraints"
	ReasonLanguageDefault    Reason = "language_match_default"
	ReasonLanguage           Reason = "language_match"
	ReasonLanguageForced     Reason = "language_match_forced"
	ReasonDefault            Reason = "default_flag"
	ReasonForcedAudioMatch   Reason = "forced_audio_language_match"
	ReasonForced             Reason = "forced_flag"
	ReasonFirstSupported     Reason = "first_supported"
	ReasonOverride           Reason = "override"
)

// Selection is the outcome of a strategy for one renderer. Group references a group of the
// TrackGroupSet passed to the pass; it must not outlive that set and is never modified.
type Selection struct {
	Group      *TrackGroup
	GroupIndex int
	// Tracks holds one index for a fixed selection and at least two for an adaptive one.
	Tracks   []int
	Adaptive bool
	Reason   Reason
}

// NewFixedSelection returns a selection of a single track.
func NewFixedSelection(group *TrackGroup, groupIndex, track int, reason Reason) *Selection {
	return &Selection{
		Group:      group,
		GroupIndex: groupIndex,
		Tracks:     []int{track},
		Reason:     reason,
	}
}

// AdaptiveFactory builds an adaptive selection over tracks of group. The video strategy
// only attempts adaptive selections when a factory is configured.
type AdaptiveFactory func(group *TrackGroup, groupIndex int, tracks []int) *Selection

// DefaultAdaptiveFactory keeps the tracks in group order.
func DefaultAdaptiveFactory(group *TrackGroup, groupIndex int, tracks []int) *Selection {
	return &Selection{
		Group:      group,
		GroupIndex: groupIndex,
		Tracks:     slices.Clone(tracks),
		Adaptive:   true,
		Reason:     ReasonAdaptive,
	}
}

// Track returns the first selected track index.
func (s *Selection) Track() int {
	return s.Tracks[0]
}

// Length returns the number of selected tracks.
func (s *Selection) Length() int {
	return len(s.Tracks)
}

// Formats returns the selected formats. It panics if an index is out of range, which can
// only happen through a track override.
func (s *Selection) Formats() []Format {
	fs := make([]Format, len(s.Tracks))
	for i, t := range s.Tracks {
		fs[i] = s.Group.Format(t)
	}
	return fs
}

// Equal reports whether s and o select the same tracks of the same group.
func (s *Selection) Equal(o *Selection) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Group == o.Group && s.GroupIndex == o.GroupIndex &&
		s.Adaptive == o.Adaptive && slices.Equal(s.Tracks, o.Tracks)
}

func (s *Selection) String() string {
	if s == nil {
		return "disabled"
	}
	kind := "fixed"
	if s.Adaptive {
		kind = "adaptive"
	}
	return fmt.Sprintf("%s group=%d tracks=%v reason=%s", kind, s.GroupIndex, s.Tracks, s.Reason)
}
