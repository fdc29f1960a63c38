package trackselection

import "fmt"

// selectVideoTrack tries an adaptive selection first, if a factory is configured and no
// video override is set, and otherwise picks a single track.
func (s *Selector) selectVideoTrack(caps RendererCapabilities, groups TrackGroupSet,
	support SupportMatrix, p Parameters) (*Selection, error) {
	if s.adaptive != nil && !p.VideoOverride.IsSet() {
		sel, err := s.selectAdaptiveVideoTrack(caps, groups, support, p)
		if err != nil {
			return nil, err
		}
		if sel != nil {
			s.logger.Debug("selected adaptive video tracks",
				"groupIndex", sel.GroupIndex,
				"tracks", sel.Tracks)
			return sel, nil
		}
	}
	sel := selectFixedVideoTrack(groups, support, p)
	if sel != nil {
		s.logger.Debug("selected fixed video track",
			"groupIndex", sel.GroupIndex,
			"track", sel.Track(),
			"reason", sel.Reason)
	}
	return applyOverride(sel, groups, p.VideoOverride, TrackTypeVideo, s.logger), nil
}

// selectAdaptiveVideoTrack returns an adaptive selection over the first group with at least
// two eligible tracks. Groups are not compared with each other.
func (s *Selector) selectAdaptiveVideoTrack(caps RendererCapabilities, groups TrackGroupSet,
	support SupportMatrix, p Parameters) (*Selection, error) {
	required := p.requiredAdaptiveSupport()
	allowMixedMimeTypes := false
	if p.AllowMixedMimeAdaptiveness {
		mixed, err := caps.SupportsMixedMimeTypeAdaptation()
		if err != nil {
			return nil, fmt.Errorf("%w: %s renderer, mixed mime type adaptation: %w",
				ErrCapabilityQuery, caps.TrackType(), err)
		}
		allowMixedMimeTypes = mixed&required != 0
	}
	for gi, g := range groups {
		tracks := adaptiveTracksForGroup(g, support[gi], allowMixedMimeTypes, required, p)
		if len(tracks) > 0 {
			return s.adaptive(g, gi, tracks), nil
		}
	}
	return nil, nil
}

// adaptiveTracksForGroup returns the tracks of g that can take part in an adaptive
// selection, or nil if there are fewer than two.
func adaptiveTracksForGroup(g *TrackGroup, support []Support, allowMixedMimeTypes bool,
	required Support, p Parameters) []int {
	if g.Len() < 2 {
		return nil
	}
	candidates := FilterByViewport(g, p.ViewportWidth, p.ViewportHeight, p.ViewportOrientationMayChange)
	if len(candidates) < 2 {
		return nil
	}

	mimeType, matchMime := "", false
	if !allowMixedMimeTypes {
		// Use the mime type with the most adaptive tracks.
		seen := make(map[string]bool)
		bestCount := 0
		for _, ti := range candidates {
			m := g.Format(ti).MimeType
			if seen[m] {
				continue
			}
			seen[m] = true
			count := 0
			for _, tj := range candidates {
				if isAdaptiveVideoTrack(g.Format(tj), support[tj], required, m, true, p) {
					count++
				}
			}
			if count > bestCount {
				mimeType, matchMime = m, true
				bestCount = count
			}
		}
	}

	tracks := candidates[:0]
	for _, ti := range candidates {
		if isAdaptiveVideoTrack(g.Format(ti), support[ti], required, mimeType, matchMime, p) {
			tracks = append(tracks, ti)
		}
	}
	if len(tracks) < 2 {
		return nil
	}
	return tracks
}

func isAdaptiveVideoTrack(f Format, support Support, required Support, mimeType string,
	matchMime bool, p Parameters) bool {
	return support.IsHandled() && support&required != 0 &&
		(!matchMime || f.MimeType == mimeType) &&
		(f.Width == NoValue || f.Width <= p.MaxVideoWidth) &&
		(f.Height == NoValue || f.Height <= p.MaxVideoHeight)
}

// selectFixedVideoTrack picks the highest resolution track within the size and viewport
// constraints. If none satisfies them and exceeding is allowed, the lowest resolution
// track is picked instead.
func selectFixedVideoTrack(groups TrackGroupSet, support SupportMatrix, p Parameters) *Selection {
	var (
		selectedGroup   *TrackGroup
		selectedGroupIx int
		selectedTrack   int
		selectedPixels  = NoValue
		selectedWithin  bool
	)
	for gi, g := range groups {
		viewportTracks := FilterByViewport(g, p.ViewportWidth, p.ViewportHeight, p.ViewportOrientationMayChange)
		for ti := 0; ti < g.Len(); ti++ {
			if !support[gi][ti].IsHandled() {
				continue
			}
			f := g.Format(ti)
			within := containsIndex(viewportTracks, ti) &&
				(f.Width == NoValue || f.Width <= p.MaxVideoWidth) &&
				(f.Height == NoValue || f.Height <= p.MaxVideoHeight)
			pixels := f.PixelCount()
			var take bool
			if selectedWithin {
				take = within && ComparePixelCounts(pixels, selectedPixels) > 0
			} else {
				take = within || (p.ExceedVideoConstraintsIfNecessary &&
					(selectedGroup == nil || ComparePixelCounts(pixels, selectedPixels) < 0))
			}
			if take {
				selectedGroup = g
				selectedGroupIx = gi
				selectedTrack = ti
				selectedPixels = pixels
				selectedWithin = within
			}
		}
	}
	if selectedGroup == nil {
		return nil
	}
	reason := ReasonWithinConstraints
	if !selectedWithin {
		reason = ReasonExceedsConstraints
	}
	return NewFixedSelection(selectedGroup, selectedGroupIx, selectedTrack, reason)
}
