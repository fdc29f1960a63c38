package internal

import (
	"strings"

	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

type codecInfo struct {
	mimeType  string
	trackType trackselection.TrackType
}

// codecsByFourCC maps the sample entry part of a codec string to the sample mime type.
var codecsByFourCC = map[string]codecInfo{
	"avc1": {"video/avc", trackselection.TrackTypeVideo},
	"avc3": {"video/avc", trackselection.TrackTypeVideo},
	"hvc1": {"video/hevc", trackselection.TrackTypeVideo},
	"hev1": {"video/hevc", trackselection.TrackTypeVideo},
	"vp08": {"video/x-vnd.on2.vp8", trackselection.TrackTypeVideo},
	"vp09": {"video/x-vnd.on2.vp9", trackselection.TrackTypeVideo},
	"av01": {"video/av01", trackselection.TrackTypeVideo},
	"mp4a": {"audio/mp4a-latm", trackselection.TrackTypeAudio},
	"opus": {"audio/opus", trackselection.TrackTypeAudio},
	"ac-3": {"audio/ac3", trackselection.TrackTypeAudio},
	"ec-3": {"audio/eac3", trackselection.TrackTypeAudio},
	"wvtt": {"text/vtt", trackselection.TrackTypeText},
	"stpp": {"application/ttml+xml", trackselection.TrackTypeText},
}

// codecFourCC returns the sample entry part of an RFC 6381 codec string, e.g. "avc1" for
// "avc1.64001f".
func codecFourCC(codec string) string {
	fourCC, _, _ := strings.Cut(strings.TrimSpace(codec), ".")
	return strings.ToLower(fourCC)
}

// MimeTypeForCodec returns the sample mime type for a codec string, or "" if unknown.
func MimeTypeForCodec(codec string) string {
	return codecsByFourCC[codecFourCC(codec)].mimeType
}

// TrackTypeForCodec returns the track type for a codec string.
func TrackTypeForCodec(codec string) trackselection.TrackType {
	if ci, ok := codecsByFourCC[codecFourCC(codec)]; ok {
		return ci.trackType
	}
	return trackselection.TrackTypeUnknown
}

// TrackTypeForMimeType derives the track type from the top-level mime type.
func TrackTypeForMimeType(mimeType string) trackselection.TrackType {
	top, _, _ := strings.Cut(strings.ToLower(mimeType), "/")
	switch top {
	case "video":
		return trackselection.TrackTypeVideo
	case "audio":
		return trackselection.TrackTypeAudio
	case "text":
		return trackselection.TrackTypeText
	}
	switch strings.ToLower(mimeType) {
	case "application/ttml+xml", "application/x-subrip", "application/cea-608":
		return trackselection.TrackTypeText
	case "application/id3", "application/x-emsg":
		return trackselection.TrackTypeMetadata
	}
	return trackselection.TrackTypeUnknown
}

// TrackTypeForRole maps catalog roles to track types.
func TrackTypeForRole(role string) trackselection.TrackType {
	switch strings.ToLower(role) {
	case RoleVideo:
		return trackselection.TrackTypeVideo
	case RoleAudio:
		return trackselection.TrackTypeAudio
	case RoleSubtitle, RoleCaption, RoleForcedSubtitle:
		return trackselection.TrackTypeText
	}
	return trackselection.TrackTypeUnknown
}
