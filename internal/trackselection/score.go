package trackselection

// bestScoredTrack scores every handled track in iteration order and returns the position of
// the first track with the highest score. Only scores above zero are selected.
func bestScoredTrack(groups TrackGroupSet, support SupportMatrix, score func(Format) int) (groupIndex, track, best int) {
	groupIndex, track, best = -1, 0, 0
	for gi, g := range groups {
		for ti := 0; ti < g.Len(); ti++ {
			if !support[gi][ti].IsHandled() {
				continue
			}
			if s := score(g.Format(ti)); s > best {
				groupIndex, track, best = gi, ti, s
			}
		}
	}
	return groupIndex, track, best
}
