package internal

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/Eyevinn/mp4ff/aac"
	"github.com/Eyevinn/mp4ff/avc"
	"github.com/Eyevinn/mp4ff/bits"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

// InitInfo is what track selection needs to know about a CMAF init segment.
type InitInfo struct {
	TrackType   trackselection.TrackType
	SampleEntry string
	Codec       string
	MimeType    string
	// Width and Height are trackselection.NoValue for non-visual tracks.
	Width     int
	Height    int
	Language  string
	Timescale uint32
}

// DecodeInitData decodes a Base64 encoded init segment as found in the catalog.
func DecodeInitData(initData string) (*mp4.InitSegment, error) {
	data, err := base64.StdEncoding.DecodeString(initData)
	if err != nil {
		return nil, fmt.Errorf("could not decode base64 init data: %w", err)
	}
	sr := bits.NewFixedSliceReader(data)
	f, err := mp4.DecodeFileSR(sr)
	if err != nil {
		return nil, fmt.Errorf("could not decode init segment: %w", err)
	}
	if f.Init == nil {
		return nil, ErrNoTrack
	}
	return f.Init, nil
}

// EncodeInitData returns the Base64 encoding of init.
func EncodeInitData(init *mp4.InitSegment) (string, error) {
	sw := bits.NewFixedSliceWriter(int(init.Size()))
	if err := init.EncodeSW(sw); err != nil {
		return "", fmt.Errorf("could not encode init segment: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sw.Bytes()), nil
}

// ProbeInitData decodes and probes catalog init data.
func ProbeInitData(initData string) (*InitInfo, error) {
	init, err := DecodeInitData(initData)
	if err != nil {
		return nil, err
	}
	return ProbeInit(init)
}

// ProbeInit extracts track type, codec, size and language of the first track of init.
func ProbeInit(init *mp4.InitSegment) (*InitInfo, error) {
	if init == nil || init.Moov == nil || init.Moov.Trak == nil {
		return nil, ErrNoTrack
	}
	mdia := init.Moov.Trak.Mdia
	info := &InitInfo{
		Width:     trackselection.NoValue,
		Height:    trackselection.NoValue,
		Timescale: mdia.Mdhd.Timescale,
		Language:  initLanguage(mdia),
	}
	sampleDesc, err := mdia.Minf.Stbl.Stsd.GetSampleDescription(0)
	if err != nil {
		return nil, fmt.Errorf("could not get sample description: %w", err)
	}
	info.SampleEntry = sampleDesc.Type()
	info.Codec = info.SampleEntry

	switch se := sampleDesc.(type) {
	case *mp4.VisualSampleEntryBox:
		info.Width = int(se.Width)
		info.Height = int(se.Height)
		if se.AvcC != nil && len(se.AvcC.SPSnalus) > 0 {
			sps, err := avc.ParseSPSNALUnit(se.AvcC.SPSnalus[0], false)
			if err != nil {
				return nil, fmt.Errorf("could not parse SPS: %w", err)
			}
			info.Codec = avc.CodecString(info.SampleEntry, sps)
		}
	case *mp4.AudioSampleEntryBox:
		if se.Esds == nil {
			break
		}
		if ascBytes := se.Esds.DecConfigDescriptor.DecSpecificInfo.DecConfig; len(ascBytes) > 0 {
			asc, err := aac.DecodeAudioSpecificConfig(bytes.NewBuffer(ascBytes))
			if err != nil {
				return nil, fmt.Errorf("could not decode audio specific config: %w", err)
			}
			info.Codec = fmt.Sprintf("mp4a.40.%d", asc.ObjectType)
		}
	}

	ci, ok := codecsByFourCC[codecFourCC(info.SampleEntry)]
	if !ok {
		return nil, fmt.Errorf("%w: sample entry %s", ErrUnsupportedMediaType, info.SampleEntry)
	}
	info.MimeType = ci.mimeType
	info.TrackType = ci.trackType
	return info, nil
}

// initLanguage prefers the extended language box over the packed mdhd language.
func initLanguage(mdia *mp4.MdiaBox) string {
	lang := mdia.Mdhd.GetLanguage()
	if mdia.Elng != nil {
		lang = mdia.Elng.Language
	}
	return trackselection.NormalizeLanguage(lang)
}
