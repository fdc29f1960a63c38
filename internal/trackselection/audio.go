package trackselection

var audioReasons = map[int]Reason{
	4: ReasonLanguageDefault,
	3: ReasonLanguage,
	2: ReasonDefault,
	1: ReasonFirstSupported,
}

// audioScore prefers the preferred language over the default flag.
func audioScore(f Format, preferredLanguage string) int {
	match := f.HasLanguage(preferredLanguage)
	switch {
	case match && f.IsDefault():
		return 4
	case match:
		return 3
	case f.IsDefault():
		return 2
	default:
		return 1
	}
}

func (s *Selector) selectAudioTrack(_ RendererCapabilities, groups TrackGroupSet,
	support SupportMatrix, p Parameters) (*Selection, error) {
	gi, ti, score := bestScoredTrack(groups, support, func(f Format) int {
		return audioScore(f, p.PreferredAudioLanguage)
	})
	var sel *Selection
	if gi >= 0 {
		sel = NewFixedSelection(groups.Get(gi), gi, ti, audioReasons[score])
		s.logger.Debug("selected audio track",
			"groupIndex", gi,
			"track", ti,
			"score", score,
			"preferredLanguage", p.PreferredAudioLanguage)
	}
	return applyOverride(sel, groups, p.AudioOverride, TrackTypeAudio, s.logger), nil
}
