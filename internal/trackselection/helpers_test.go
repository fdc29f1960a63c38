package trackselection

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const handledSeamless = FormatHandled | AdaptiveSeamless

// fakeRenderer answers capability queries from a table keyed by format ID.
type fakeRenderer struct {
	trackType  TrackType
	support    map[string]Support
	fallback   Support
	mixed      Support
	formatErr  error
	mixedErr   error
	mixedCalls int
}

func newRenderer(trackType TrackType) *fakeRenderer {
	return &fakeRenderer{trackType: trackType, fallback: handledSeamless}
}

func (r *fakeRenderer) TrackType() TrackType {
	return r.trackType
}

func (r *fakeRenderer) SupportsFormat(f Format) (Support, error) {
	if r.formatErr != nil {
		return 0, r.formatErr
	}
	if s, ok := r.support[f.ID]; ok {
		return s, nil
	}
	return r.fallback, nil
}

func (r *fakeRenderer) SupportsMixedMimeTypeAdaptation() (Support, error) {
	r.mixedCalls++
	return r.mixed, r.mixedErr
}

func videoFormat(id, mimeType string, width, height int) Format {
	return Format{ID: id, MimeType: mimeType, Width: width, Height: height, Bitrate: NoValue}
}

func audioFormat(id, lang string, flags SelectionFlags) Format {
	return Format{ID: id, MimeType: "audio/mp4a-latm", Width: NoValue, Height: NoValue,
		Bitrate: NoValue, Language: lang, SelectionFlags: flags}
}

func textFormat(id, lang string, flags SelectionFlags) Format {
	return Format{ID: id, MimeType: "text/vtt", Width: NoValue, Height: NoValue,
		Bitrate: NoValue, Language: lang, SelectionFlags: flags}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSelector(cfg *Config, opts ...Option) *Selector {
	return New(cfg, append([]Option{WithLogger(discardLogger())}, opts...)...)
}

// selectSingle runs a pass with a single renderer and returns its selection.
func selectSingle(t *testing.T, s *Selector, caps RendererCapabilities, groups ...*TrackGroup) *Selection {
	t.Helper()
	sels, err := s.Select([]RendererCapabilities{caps}, []TrackGroupSet{groups})
	require.NoError(t, err)
	require.Len(t, sels, 1)
	return sels[0]
}

// ladder is the usual 16:9 video ladder, largest first.
func ladder() *TrackGroup {
	return NewTrackGroup("video",
		videoFormat("1080p", "video/avc", 1920, 1080),
		videoFormat("720p", "video/avc", 1280, 720),
		videoFormat("360p", "video/avc", 640, 360),
	)
}
