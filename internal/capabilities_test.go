package internal

import (
	"testing"

	"github.com/stretchr/testify/require"

	ts "github.com/Eyevinn/moqtracksel/internal/trackselection"
)

func TestSupportsFormat(t *testing.T) {
	renderers := DefaultRenderers()
	video, audio, text := renderers[0], renderers[1], renderers[2]

	testCases := []struct {
		desc     string
		renderer *CodecCapabilities
		format   ts.Format
		want     ts.Support
	}{
		{"avc in video", video, ts.Format{ID: "v", Codecs: "avc1.64001f", Width: 1280, Height: 720},
			ts.FormatHandled | ts.AdaptiveSeamless},
		{"hevc upper case", video, ts.Format{ID: "v", Codecs: "HVC1.1.6.L93.B0", Width: 1280, Height: 720},
			ts.FormatHandled | ts.AdaptiveSeamless},
		{"av1 not decodable", video, ts.Format{ID: "v", Codecs: "av01.0.08M.08", Width: 1280, Height: 720},
			ts.FormatUnsupportedSubtype},
		{"8k exceeds", video, ts.Format{ID: "v", Codecs: "avc1.640033", Width: 7680, Height: 4320},
			ts.FormatExceedsCapabilities},
		{"unknown size", video, ts.Format{ID: "v", Codecs: "avc1", Width: ts.NoValue, Height: ts.NoValue},
			ts.FormatHandled | ts.AdaptiveSeamless},
		{"audio in video", video, ts.Format{ID: "a", Codecs: "mp4a.40.2"},
			ts.FormatUnsupportedType},
		{"aac", audio, ts.Format{ID: "a", Codecs: "mp4a.40.2"},
			ts.FormatHandled | ts.AdaptiveNotSeamless},
		{"mime only", audio, ts.Format{ID: "a", MimeType: "audio/opus"},
			ts.FormatHandled | ts.AdaptiveNotSeamless},
		{"mime only unknown subtype", audio, ts.Format{ID: "a", MimeType: "audio/flac"},
			ts.FormatUnsupportedSubtype},
		{"webvtt", text, ts.Format{ID: "t", Codecs: "wvtt"},
			ts.FormatHandled},
		{"ttml mime", text, ts.Format{ID: "t", MimeType: "application/ttml+xml"},
			ts.FormatHandled},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := tc.renderer.SupportsFormat(tc.format)
			require.NoError(t, err)
			require.Equal(t, tc.want, got, "got %s", got)
		})
	}
}

func TestSupportsFormatWithoutCodec(t *testing.T) {
	_, err := DefaultRenderers()[0].SupportsFormat(ts.Format{ID: "nothing"})
	require.ErrorIs(t, err, ErrUnknownCodec)
}

func TestMixedMimeTypeAdaptation(t *testing.T) {
	s, err := DefaultRenderers()[0].SupportsMixedMimeTypeAdaptation()
	require.NoError(t, err)
	require.Equal(t, ts.AdaptiveNotSeamless, s)
}

func TestCodecLookups(t *testing.T) {
	testCases := []struct {
		codec     string
		mimeType  string
		trackType ts.TrackType
	}{
		{"avc1.64001f", "video/avc", ts.TrackTypeVideo},
		{"hev1.1.6.L93.B0", "video/hevc", ts.TrackTypeVideo},
		{"mp4a.40.2", "audio/mp4a-latm", ts.TrackTypeAudio},
		{"ec-3", "audio/eac3", ts.TrackTypeAudio},
		{"stpp.ttml.im1t", "application/ttml+xml", ts.TrackTypeText},
		{"xyz1", "", ts.TrackTypeUnknown},
		{"", "", ts.TrackTypeUnknown},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.mimeType, MimeTypeForCodec(tc.codec), tc.codec)
		require.Equal(t, tc.trackType, TrackTypeForCodec(tc.codec), tc.codec)
	}

	require.Equal(t, ts.TrackTypeVideo, TrackTypeForMimeType("video/mp4"))
	require.Equal(t, ts.TrackTypeText, TrackTypeForMimeType("application/x-subrip"))
	require.Equal(t, ts.TrackTypeMetadata, TrackTypeForMimeType("application/id3"))
	require.Equal(t, ts.TrackTypeUnknown, TrackTypeForMimeType("application/mp4"))

	require.Equal(t, ts.TrackTypeText, TrackTypeForRole("forced-subtitle"))
	require.Equal(t, ts.TrackTypeUnknown, TrackTypeForRole(RoleMain))
}
