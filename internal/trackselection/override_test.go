package trackselection

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupOverrideOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	groups := []*TrackGroup{
		NewTrackGroup("a1", audioFormat("en", "en", 0)),
		NewTrackGroup("a2", audioFormat("fr", "fr", SelectionFlagDefault)),
	}
	cfg := NewConfig(WithAudioOverride(5, NoOverride))
	s := New(cfg, WithLogger(logger))

	sel := selectSingle(t, s, newRenderer(TrackTypeAudio), groups...)
	require.NotNil(t, sel)
	require.Equal(t, 0, sel.GroupIndex)
	require.Same(t, groups[0], sel.Group)
	require.Equal(t, 0, sel.Track())
	require.Equal(t, ReasonOverride, sel.Reason)
	require.Contains(t, buf.String(), "group override out of range")
}

func TestTrackOverrideIsNotChecked(t *testing.T) {
	cfg := NewConfig(WithAudioOverride(NoOverride, 7))
	g := NewTrackGroup("a", audioFormat("en", "en", 0))
	sel := selectSingle(t, newTestSelector(cfg), newRenderer(TrackTypeAudio), g)
	require.Equal(t, []int{7}, sel.Tracks)
	require.Panics(t, func() { sel.Formats() })
}

func TestVideoOverrideTakesPrecedenceOverAdaptive(t *testing.T) {
	cfg := NewConfig()
	s := newTestSelector(cfg, WithAdaptiveFactory(DefaultAdaptiveFactory))
	r := newRenderer(TrackTypeVideo)
	require.True(t, selectSingle(t, s, r, ladder()).Adaptive)

	cfg.SetVideoOverride(NoOverride, 2)
	sel := selectSingle(t, s, r, ladder())
	require.False(t, sel.Adaptive)
	require.Equal(t, []int{2}, sel.Tracks)
	require.Equal(t, ReasonOverride, sel.Reason)
	require.Equal(t, "360p", sel.Formats()[0].ID)

	cfg.ClearOverrides()
	require.True(t, selectSingle(t, s, r, ladder()).Adaptive)
}

func TestOverrideKeepsDisabledRendererDisabled(t *testing.T) {
	cfg := NewConfig(WithVideoOverride(0, 0))
	r := newRenderer(TrackTypeVideo)
	r.fallback = FormatUnsupportedSubtype
	require.Nil(t, selectSingle(t, newTestSelector(cfg), r, ladder()))
}

func TestOverrideString(t *testing.T) {
	require.Equal(t, "none", NoOverrides.String())
	require.Equal(t, "group=1 track=-1", Override{Group: 1, Track: NoOverride}.String())
	require.False(t, NoOverrides.IsSet())
}
