package internal

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

// SubtitleFormat is the CMAF subtitle format.
type SubtitleFormat string

const (
	SubtitleFormatWVTT SubtitleFormat = "wvtt"
	SubtitleFormatSTPP SubtitleFormat = "stpp"
)

const (
	subtitleTimescale = 1000
	ttmlNamespace     = "http://www.w3.org/ns/ttml"
)

// NewSubtitleTrack creates a subtitle ContentTrack with an init segment but no samples.
func NewSubtitleTrack(name string, format SubtitleFormat, lang string) (*ContentTrack, error) {
	init := mp4.CreateEmptyInit()
	switch format {
	case SubtitleFormatWVTT:
		init.AddEmptyTrack(subtitleTimescale, "wvtt", lang)
		if err := init.Moov.Trak.SetWvttDescriptor("WEBVTT"); err != nil {
			return nil, fmt.Errorf("could not set wvtt descriptor: %w", err)
		}
	case SubtitleFormatSTPP:
		init.AddEmptyTrack(subtitleTimescale, "subt", lang)
		if err := init.Moov.Trak.SetStppDescriptor(ttmlNamespace, "", ""); err != nil {
			return nil, fmt.Errorf("could not set stpp descriptor: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: subtitle format %q", ErrUnsupportedMediaType, format)
	}
	info, err := ProbeInit(init)
	if err != nil {
		return nil, err
	}
	return &ContentTrack{
		Name:          name,
		Info:          info,
		SampleBitrate: trackselection.NoValue,
		init:          init,
	}, nil
}
