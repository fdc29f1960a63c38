package trackselection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdaptiveVideoSelection(t *testing.T) {
	s := newTestSelector(nil, WithAdaptiveFactory(DefaultAdaptiveFactory))
	sel := selectSingle(t, s, newRenderer(TrackTypeVideo), ladder())
	require.NotNil(t, sel)
	require.True(t, sel.Adaptive)
	require.Equal(t, []int{0, 1, 2}, sel.Tracks)
	require.Equal(t, ReasonAdaptive, sel.Reason)
	require.Equal(t, 3, sel.Length())
}

func TestVideoWithoutAdaptiveFactoryPicksHighest(t *testing.T) {
	s := newTestSelector(nil)
	sel := selectSingle(t, s, newRenderer(TrackTypeVideo), ladder())
	require.False(t, sel.Adaptive)
	require.Equal(t, 0, sel.Track())
	require.Equal(t, ReasonWithinConstraints, sel.Reason)
}

func TestAdaptiveMimeTypeMajority(t *testing.T) {
	cases := []struct {
		desc  string
		group *TrackGroup
		want  []int
	}{
		{
			desc: "most tracks win",
			group: NewTrackGroup("v",
				videoFormat("a", "video/avc", 1280, 720),
				videoFormat("b", "video/vp9", 1920, 1080),
				videoFormat("c", "video/vp9", 1280, 720),
				videoFormat("d", "video/vp9", 640, 360)),
			want: []int{1, 2, 3},
		},
		{
			desc: "first seen wins ties",
			group: NewTrackGroup("v",
				videoFormat("a", "video/avc", 1920, 1080),
				videoFormat("b", "video/vp9", 1920, 1080),
				videoFormat("c", "video/avc", 1280, 720),
				videoFormat("d", "video/vp9", 1280, 720)),
			want: []int{0, 2},
		},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			r := newRenderer(TrackTypeVideo)
			s := newTestSelector(nil, WithAdaptiveFactory(DefaultAdaptiveFactory))
			sel := selectSingle(t, s, r, c.group)
			require.True(t, sel.Adaptive)
			require.Equal(t, c.want, sel.Tracks)
			require.Zero(t, r.mixedCalls, "mixed mime support queried although not allowed")
		})
	}
}

func TestAdaptiveMixedMimeTypes(t *testing.T) {
	group := NewTrackGroup("v",
		videoFormat("a", "video/avc", 1280, 720),
		videoFormat("b", "video/vp9", 1920, 1080),
		videoFormat("c", "video/vp9", 640, 360))

	cfg := NewConfig()
	cfg.SetAllowMixedMimeAdaptiveness(true)
	s := newTestSelector(cfg, WithAdaptiveFactory(DefaultAdaptiveFactory))

	r := newRenderer(TrackTypeVideo)
	r.mixed = AdaptiveSeamless
	sel := selectSingle(t, s, r, group)
	require.Equal(t, []int{0, 1, 2}, sel.Tracks)
	require.Equal(t, 1, r.mixedCalls)

	r = newRenderer(TrackTypeVideo)
	r.mixed = AdaptiveNotSupported
	sel = selectSingle(t, s, r, group)
	require.Equal(t, []int{1, 2}, sel.Tracks)
}

func TestAdaptiveRequiresSeamlessWhenConfigured(t *testing.T) {
	r := newRenderer(TrackTypeVideo)
	r.fallback = FormatHandled | AdaptiveNotSeamless

	cfg := NewConfig()
	s := newTestSelector(cfg, WithAdaptiveFactory(DefaultAdaptiveFactory))
	require.True(t, selectSingle(t, s, r, ladder()).Adaptive)

	cfg.SetAllowNonSeamlessAdaptiveness(false)
	sel := selectSingle(t, s, r, ladder())
	require.False(t, sel.Adaptive)
	require.Equal(t, 0, sel.Track())
}

func TestAdaptiveFirstEligibleGroupWins(t *testing.T) {
	single := NewTrackGroup("single", videoFormat("s", "video/avc", 3840, 2160))
	s := newTestSelector(nil, WithAdaptiveFactory(DefaultAdaptiveFactory))
	sel := selectSingle(t, s, newRenderer(TrackTypeVideo), single, ladder(), ladder())
	require.True(t, sel.Adaptive)
	require.Equal(t, 1, sel.GroupIndex)
}

func TestFixedVideoConstraints(t *testing.T) {
	cases := []struct {
		desc       string
		setup      func(c *Config)
		support    map[string]Support
		wantNil    bool
		wantTrack  int
		wantReason Reason
	}{
		{
			desc:       "sd cap",
			setup:      func(c *Config) { c.SetMaxVideoSizeSD() },
			wantTrack:  2,
			wantReason: ReasonWithinConstraints,
		},
		{
			desc:       "exceed picks smallest",
			setup:      func(c *Config) { c.SetMaxVideoSize(320, 180) },
			wantTrack:  2,
			wantReason: ReasonExceedsConstraints,
		},
		{
			desc: "no exceeding allowed",
			setup: func(c *Config) {
				c.SetMaxVideoSize(320, 180)
				c.SetExceedVideoConstraintsIfNecessary(false)
			},
			wantNil: true,
		},
		{
			desc:       "viewport",
			setup:      func(c *Config) { c.SetViewportSize(1280, 720, false) },
			wantTrack:  1,
			wantReason: ReasonWithinConstraints,
		},
		{
			desc:       "unsupported tracks skipped",
			setup:      func(c *Config) {},
			support:    map[string]Support{"1080p": FormatExceedsCapabilities},
			wantTrack:  1,
			wantReason: ReasonWithinConstraints,
		},
		{
			desc:    "nothing supported",
			setup:   func(c *Config) {},
			support: map[string]Support{"1080p": FormatUnsupportedDRM, "720p": FormatUnsupportedSubtype, "360p": 0},
			wantNil: true,
		},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			cfg := NewConfig()
			c.setup(cfg)
			r := newRenderer(TrackTypeVideo)
			r.support = c.support
			sel := selectSingle(t, newTestSelector(cfg), r, ladder())
			if c.wantNil {
				require.Nil(t, sel)
				return
			}
			require.NotNil(t, sel)
			require.Equal(t, c.wantTrack, sel.Track())
			require.Equal(t, c.wantReason, sel.Reason)
		})
	}
}

func TestExceedPicksSmallestAcrossGroups(t *testing.T) {
	cfg := NewConfig()
	cfg.SetMaxVideoSize(100, 100)
	small := NewTrackGroup("small", videoFormat("s", "video/avc", 426, 240))
	sel := selectSingle(t, newTestSelector(cfg), newRenderer(TrackTypeVideo), ladder(), small)
	require.Equal(t, 1, sel.GroupIndex)
	require.Equal(t, 0, sel.Track())
	require.Equal(t, ReasonExceedsConstraints, sel.Reason)
}

func TestViewportLimitsAdaptiveTracks(t *testing.T) {
	cfg := NewConfig()
	cfg.SetViewportSize(1280, 720, false)
	s := newTestSelector(cfg, WithAdaptiveFactory(DefaultAdaptiveFactory))
	sel := selectSingle(t, s, newRenderer(TrackTypeVideo), ladder())
	require.True(t, sel.Adaptive)
	require.Equal(t, []int{1, 2}, sel.Tracks)
}

func TestKnownSizeBeatsUnknownSize(t *testing.T) {
	g := NewTrackGroup("v",
		videoFormat("unknown", "video/avc", NoValue, NoValue),
		videoFormat("360p", "video/avc", 640, 360))
	sel := selectSingle(t, newTestSelector(nil), newRenderer(TrackTypeVideo), g)
	require.Equal(t, 1, sel.Track())
}

func TestMixedMimeQueryErrorAbortsPass(t *testing.T) {
	errOracle := errors.New("decoder list unavailable")
	cfg := NewConfig()
	cfg.SetAllowMixedMimeAdaptiveness(true)
	r := newRenderer(TrackTypeVideo)
	r.mixedErr = errOracle
	s := newTestSelector(cfg, WithAdaptiveFactory(DefaultAdaptiveFactory))

	sels, err := s.Select([]RendererCapabilities{r}, []TrackGroupSet{{ladder()}})
	require.Nil(t, sels)
	require.ErrorIs(t, err, ErrCapabilityQuery)
	require.ErrorIs(t, err, errOracle)
}
