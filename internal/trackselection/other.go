package trackselection

// selectOtherTrack handles track types without a dedicated strategy: the first default
// track, else the first handled track.
func (s *Selector) selectOtherTrack(caps RendererCapabilities, groups TrackGroupSet,
	support SupportMatrix, _ Parameters) (*Selection, error) {
	gi, ti, score := bestScoredTrack(groups, support, func(f Format) int {
		if f.IsDefault() {
			return 2
		}
		return 1
	})
	if gi < 0 {
		return nil, nil
	}
	reason := ReasonFirstSupported
	if score == 2 {
		reason = ReasonDefault
	}
	s.logger.Debug("selected track",
		"trackType", caps.TrackType(),
		"groupIndex", gi,
		"track", ti,
		"reason", reason)
	return NewFixedSelection(groups.Get(gi), gi, ti, reason), nil
}
