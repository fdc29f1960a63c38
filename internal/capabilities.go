package internal

import (
	"fmt"
	"strings"

	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

// CodecCapabilities is a renderer described by the codecs its decoder accepts.
type CodecCapabilities struct {
	Type trackselection.TrackType
	// Codecs are codec string prefixes, e.g. "avc1" or "mp4a.40.2".
	Codecs []string
	// MaxWidth and MaxHeight limit the decodable video size. Zero means no limit.
	MaxWidth  int
	MaxHeight int
	// Adaptive are the adaptive support bits reported for handled formats.
	Adaptive trackselection.Support
	// MixedMimeAdaptive are the adaptive support bits for switching between mime types.
	MixedMimeAdaptive trackselection.Support
}

// DefaultRenderers returns the video, audio and text renderers of the subscriber.
func DefaultRenderers() []*CodecCapabilities {
	return []*CodecCapabilities{
		{
			Type:              trackselection.TrackTypeVideo,
			Codecs:            []string{"avc1", "avc3", "hvc1", "hev1"},
			MaxWidth:          3840,
			MaxHeight:         2160,
			Adaptive:          trackselection.AdaptiveSeamless,
			MixedMimeAdaptive: trackselection.AdaptiveNotSeamless,
		},
		{
			Type:     trackselection.TrackTypeAudio,
			Codecs:   []string{"mp4a", "opus", "ac-3", "ec-3"},
			Adaptive: trackselection.AdaptiveNotSeamless,
		},
		{
			Type:   trackselection.TrackTypeText,
			Codecs: []string{"wvtt", "stpp"},
		},
	}
}

func (c *CodecCapabilities) TrackType() trackselection.TrackType {
	return c.Type
}

// SupportsFormat matches f against the codec list and size limits.
func (c *CodecCapabilities) SupportsFormat(f trackselection.Format) (trackselection.Support, error) {
	if f.Codecs == "" && f.MimeType == "" {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCodec, f.ID)
	}
	formatType := TrackTypeForCodec(f.Codecs)
	if formatType == trackselection.TrackTypeUnknown {
		formatType = TrackTypeForMimeType(f.MimeType)
	}
	if formatType != c.Type {
		return trackselection.FormatUnsupportedType, nil
	}
	if !c.supportsCodec(f) {
		return trackselection.FormatUnsupportedSubtype, nil
	}
	if (c.MaxWidth > 0 && f.Width > c.MaxWidth) || (c.MaxHeight > 0 && f.Height > c.MaxHeight) {
		return trackselection.FormatExceedsCapabilities, nil
	}
	return trackselection.FormatHandled | c.Adaptive, nil
}

func (c *CodecCapabilities) supportsCodec(f trackselection.Format) bool {
	codec := strings.ToLower(f.Codecs)
	for _, prefix := range c.Codecs {
		prefix = strings.ToLower(prefix)
		if codec != "" && strings.HasPrefix(codec, prefix) {
			return true
		}
		if codec == "" && MimeTypeForCodec(prefix) == f.MimeType {
			return true
		}
	}
	return false
}

func (c *CodecCapabilities) SupportsMixedMimeTypeAdaptation() (trackselection.Support, error) {
	return c.MixedMimeAdaptive, nil
}

func (c *CodecCapabilities) String() string {
	return fmt.Sprintf("%s renderer (%s)", c.Type, strings.Join(c.Codecs, ","))
}
