package trackselection

var textReasons = map[int]Reason{
	6: ReasonLanguageDefault,
	5: ReasonLanguage,
	4: ReasonLanguageForced,
	3: ReasonDefault,
	2: ReasonForcedAudioMatch,
	1: ReasonForced,
}

// textScore ranks text tracks. Tracks that match neither language nor carry a flag score 0
// and are never selected.
func textScore(f Format, preferredTextLanguage, preferredAudioLanguage string) int {
	if f.HasLanguage(preferredTextLanguage) {
		switch {
		case f.IsDefault():
			return 6
		case !f.IsForced():
			// Non-forced tracks usually contain the forced subtitles as a subset.
			return 5
		default:
			return 4
		}
	}
	switch {
	case f.IsDefault():
		return 3
	case f.IsForced() && f.HasLanguage(preferredAudioLanguage):
		return 2
	case f.IsForced():
		return 1
	default:
		return 0
	}
}

func (s *Selector) selectTextTrack(_ RendererCapabilities, groups TrackGroupSet,
	support SupportMatrix, p Parameters) (*Selection, error) {
	gi, ti, score := bestScoredTrack(groups, support, func(f Format) int {
		return textScore(f, p.PreferredTextLanguage, p.PreferredAudioLanguage)
	})
	if gi < 0 {
		return nil, nil
	}
	s.logger.Debug("selected text track",
		"groupIndex", gi,
		"track", ti,
		"score", score,
		"preferredLanguage", p.PreferredTextLanguage)
	return NewFixedSelection(groups.Get(gi), gi, ti, textReasons[score]), nil
}
