package trackselection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterByViewport(t *testing.T) {
	cases := []struct {
		desc                 string
		group                *TrackGroup
		width, height        int
		orientationMayChange bool
		want                 []int
	}{
		{
			desc:   "unbounded keeps everything",
			group:  ladder(),
			width:  Unbounded,
			height: Unbounded,
			want:   []int{0, 1, 2},
		},
		{
			desc:   "smallest sufficient track and smaller ones survive",
			group:  ladder(),
			width:  1280,
			height: 720,
			want:   []int{1, 2},
		},
		{
			desc: "no track fills the viewport",
			group: NewTrackGroup("v",
				videoFormat("720p", "video/avc", 1280, 720),
				videoFormat("360p", "video/avc", 640, 360)),
			width:  1920,
			height: 1080,
			want:   []int{0, 1},
		},
		{
			desc: "unknown size dropped once a track fills",
			group: NewTrackGroup("v",
				videoFormat("1080p", "video/avc", 1920, 1080),
				videoFormat("unknown", "video/avc", NoValue, NoValue),
				videoFormat("360p", "video/avc", 640, 360)),
			width:  1280,
			height: 720,
			want:   []int{0, 2},
		},
		{
			desc:   "portrait viewport, orientation fixed",
			group:  ladder(),
			width:  640,
			height: 1136,
			want:   []int{2},
		},
		{
			desc:                 "portrait viewport, orientation may change",
			group:                ladder(),
			width:                640,
			height:               1136,
			orientationMayChange: true,
			want:                 []int{1, 2},
		},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			got := FilterByViewport(c.group, c.width, c.height, c.orientationMayChange)
			require.Equal(t, c.want, got)
		})
	}
}

// Every dropped track must be larger than every kept track.
func TestFilterByViewportKeepsSmallest(t *testing.T) {
	g := NewTrackGroup("v",
		videoFormat("a", "video/avc", 3840, 2160),
		videoFormat("b", "video/avc", 640, 360),
		videoFormat("c", "video/avc", 1920, 1080),
		videoFormat("d", "video/avc", 960, 540),
		videoFormat("e", "video/avc", 1280, 720),
	)
	viewports := [][2]int{{320, 180}, {1000, 600}, {1280, 720}, {1920, 1080}, {2560, 1440}, {720, 1280}}
	for _, vp := range viewports {
		for _, mayChange := range []bool{false, true} {
			kept := FilterByViewport(g, vp[0], vp[1], mayChange)
			require.NotEmpty(t, kept)
			maxKept := 0
			for _, i := range kept {
				maxKept = max(maxKept, g.Format(i).PixelCount())
			}
			for i := 0; i < g.Len(); i++ {
				if containsIndex(kept, i) {
					continue
				}
				require.Greater(t, g.Format(i).PixelCount(), maxKept, "viewport %v", vp)
			}
		}
	}
}

func TestFilterByViewportShrinkingNeverKeepsLarger(t *testing.T) {
	g := NewTrackGroup("v",
		videoFormat("2160p", "video/avc", 3840, 2160),
		videoFormat("1080p", "video/avc", 1920, 1080),
		videoFormat("portrait", "video/avc", 1080, 1920),
		videoFormat("720p", "video/avc", 1280, 720),
		videoFormat("480p", "video/avc", 854, 480),
		videoFormat("240p", "video/avc", 426, 240),
	)
	largestKept := func(width, height int, mayChange bool) int {
		largest := 0
		for _, i := range FilterByViewport(g, width, height, mayChange) {
			largest = max(largest, g.Format(i).PixelCount())
		}
		return largest
	}
	const start, stop = 4000, 100
	for _, mayChange := range []bool{false, true} {
		for fixed := start; fixed >= stop; fixed -= 41 {
			prevW, prevH := largestKept(start, fixed, mayChange), largestKept(fixed, start, mayChange)
			for shrunk := start - 37; shrunk >= stop; shrunk -= 37 {
				w := largestKept(shrunk, fixed, mayChange)
				require.LessOrEqual(t, w, prevW, "width %d height %d mayChange %t", shrunk, fixed, mayChange)
				h := largestKept(fixed, shrunk, mayChange)
				require.LessOrEqual(t, h, prevH, "width %d height %d mayChange %t", fixed, shrunk, mayChange)
				prevW, prevH = w, h
			}
		}
	}
}

func TestMaxVideoSizeInViewport(t *testing.T) {
	w, h := maxVideoSizeInViewport(false, 1280, 720, 1920, 1080)
	require.Equal(t, 1280, w)
	require.Equal(t, 720, h)

	// 4:3 video in a 16:9 viewport is pillarboxed.
	w, h = maxVideoSizeInViewport(false, 1280, 720, 640, 480)
	require.Equal(t, 960, w)
	require.Equal(t, 720, h)

	// Rotating the viewport lets a landscape video use the long side.
	w, h = maxVideoSizeInViewport(true, 720, 1280, 1920, 1080)
	require.Equal(t, 1280, w)
	require.Equal(t, 720, h)
}
