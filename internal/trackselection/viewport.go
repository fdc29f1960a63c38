package trackselection

// If a dimension of a video is greater than or equal to this fraction of the corresponding
// maximum displayed dimension, the video is considered to fill the viewport in that dimension.
const fractionToConsiderFullscreen = 0.98

// FilterByViewport returns the indices of the tracks in group whose resolution is not
// needlessly high for the viewport. The smallest track that fills the viewport is kept
// together with everything smaller; larger tracks and tracks of unknown size are dropped.
// If no track fills the viewport, or the viewport is unbounded, all indices are returned.
func FilterByViewport(group *TrackGroup, viewportWidth, viewportHeight int, orientationMayChange bool) []int {
	indices := make([]int, group.Len())
	for i := range indices {
		indices[i] = i
	}
	if viewportWidth == Unbounded || viewportHeight == Unbounded {
		return indices
	}

	minSufficientPixels := Unbounded
	for i := 0; i < group.Len(); i++ {
		f := group.Format(i)
		if f.Width <= 0 || f.Height <= 0 {
			continue
		}
		maxWidth, maxHeight := maxVideoSizeInViewport(orientationMayChange,
			viewportWidth, viewportHeight, f.Width, f.Height)
		pixels := f.Width * f.Height
		if f.Width >= int(float64(maxWidth)*fractionToConsiderFullscreen) &&
			f.Height >= int(float64(maxHeight)*fractionToConsiderFullscreen) &&
			pixels < minSufficientPixels {
			minSufficientPixels = pixels
		}
	}
	if minSufficientPixels == Unbounded {
		return indices
	}

	kept := indices[:0]
	for _, i := range indices {
		pc := group.Format(i).PixelCount()
		if pc == NoValue || pc > minSufficientPixels {
			continue
		}
		kept = append(kept, i)
	}
	return kept
}

// maxVideoSizeInViewport returns the size a video of videoWidth x videoHeight is rendered
// at when fitted into the viewport.
func maxVideoSizeInViewport(orientationMayChange bool, viewportWidth, viewportHeight,
	videoWidth, videoHeight int) (width, height int) {
	if orientationMayChange && (videoWidth > videoHeight) != (viewportWidth > viewportHeight) {
		// The video is larger in the rotated viewport.
		viewportWidth, viewportHeight = viewportHeight, viewportWidth
	}
	if videoWidth*viewportHeight >= videoHeight*viewportWidth {
		// Letterboxed top and bottom.
		return viewportWidth, ceilDivide(viewportWidth*videoHeight, videoWidth)
	}
	// Pillarboxed left and right.
	return ceilDivide(viewportHeight*videoWidth, videoHeight), viewportHeight
}

func ceilDivide(numerator, denominator int) int {
	return (numerator + denominator - 1) / denominator
}

// containsIndex reports whether indices contains i.
func containsIndex(indices []int, i int) bool {
	for _, v := range indices {
		if v == i {
			return true
		}
	}
	return false
}
