package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Eyevinn/mp4ff/bits"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

// ContentTrack is one local fMP4 rendition.
type ContentTrack struct {
	Name string
	Info *InitInfo
	// SampleBitrate in bits per second, trackselection.NoValue if the file has no samples.
	SampleBitrate int
	Duration      uint64
	NrSamples     int
	Framerate     float64
	// Fragments are the encoded moof+mdat pairs of the file in decode order.
	Fragments []Fragment
	init      *mp4.InitSegment
}

// Fragment is one encoded CMAF fragment.
type Fragment struct {
	Data     []byte
	Duration time.Duration
}

// AltGroup is a set of alternative ContentTracks.
type AltGroup struct {
	AltGroupID int
	Tracks     []*ContentTrack
}

// Asset is a directory of fMP4 renditions arranged in alternative groups.
type Asset struct {
	Name   string
	Groups []AltGroup
	// MainLanguage gives the audio tracks in this language the main role.
	MainLanguage string
	// ForcedSubtitleLanguages gives the subtitle tracks in these languages the
	// forced-subtitle role.
	ForcedSubtitleLanguages []string
}

// GetTrackByName returns the ContentTrack with the given name, or nil if not found.
func (a *Asset) GetTrackByName(name string) *ContentTrack {
	for _, group := range a.Groups {
		for _, ct := range group.Tracks {
			if ct.Name == name {
				return ct
			}
		}
	}
	return nil
}

// InitContentTrack creates a ContentTrack from a fragmented MP4 file with exactly one track.
// The file may consist of the init segment only. The name is stripped of any extension.
func InitContentTrack(r io.Reader, name string) (*ContentTrack, error) {
	m, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("could not decode file: %w", err)
	}
	if m.Init == nil {
		return nil, fmt.Errorf("file is not fragmented")
	}
	if len(m.Init.Moov.Traks) != 1 {
		return nil, fmt.Errorf("file has not exactly one track")
	}
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	info, err := ProbeInit(m.Init)
	if err != nil {
		return nil, err
	}
	ct := &ContentTrack{
		Name:          name,
		Info:          info,
		SampleBitrate: trackselection.NoValue,
		init:          m.Init,
	}
	if m.Init.Moov.Mvex == nil || len(m.Segments) == 0 {
		return ct, nil
	}
	if info.Timescale == 0 {
		return nil, fmt.Errorf("track %s has timescale 0", name)
	}
	trex := m.Init.Moov.Mvex.Trex
	totalBytes := 0
	for _, seg := range m.Segments {
		for _, frag := range seg.Fragments {
			fs, err := frag.GetFullSamples(trex)
			if err != nil {
				return nil, fmt.Errorf("could not get full samples: %w", err)
			}
			var fragDur uint64
			for _, s := range fs {
				totalBytes += int(s.Size)
				fragDur += uint64(s.Dur)
			}
			ct.Duration += fragDur
			ct.NrSamples += len(fs)
			sw := bits.NewFixedSliceWriter(int(frag.Size()))
			if err := frag.EncodeSW(sw); err != nil {
				return nil, fmt.Errorf("could not encode fragment: %w", err)
			}
			ct.Fragments = append(ct.Fragments, Fragment{
				Data:     sw.Bytes(),
				Duration: time.Duration(fragDur) * time.Second / time.Duration(info.Timescale),
			})
		}
	}
	durationSeconds := float64(ct.Duration) / float64(info.Timescale)
	if durationSeconds > 0 {
		ct.SampleBitrate = int(float64(totalBytes*8) / durationSeconds)
		if info.TrackType == trackselection.TrackTypeVideo {
			ct.Framerate = float64(ct.NrSamples) / durationSeconds
		}
	}
	return ct, nil
}

// LoadAsset reads all *.mp4 files of a directory and groups them by track type: one
// group of video tracks and one group of audio tracks, each sorted by increasing bitrate.
func LoadAsset(dirPath string) (*Asset, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("could not read directory: %w", err)
	}
	tracksByType := make(map[trackselection.TrackType][]*ContentTrack)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp4" {
			continue
		}
		filePath := filepath.Join(dirPath, entry.Name())
		fh, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("could not open file %s: %w", filePath, err)
		}
		ct, err := InitContentTrack(fh, entry.Name())
		fh.Close()
		if err != nil {
			return nil, fmt.Errorf("could not create ContentTrack for %s: %w", filePath, err)
		}
		tracksByType[ct.Info.TrackType] = append(tracksByType[ct.Info.TrackType], ct)
	}

	asset := &Asset{Name: filepath.Base(dirPath)}
	for _, tt := range []trackselection.TrackType{
		trackselection.TrackTypeVideo, trackselection.TrackTypeAudio, trackselection.TrackTypeText,
	} {
		tracks := tracksByType[tt]
		if len(tracks) == 0 {
			continue
		}
		sort.SliceStable(tracks, func(i, j int) bool {
			return tracks[i].SampleBitrate < tracks[j].SampleBitrate
		})
		asset.Groups = append(asset.Groups, AltGroup{
			AltGroupID: len(asset.Groups) + 1,
			Tracks:     tracks,
		})
	}
	if len(asset.Groups) == 0 {
		return nil, fmt.Errorf("no tracks found in %s", dirPath)
	}
	return asset, nil
}

// AddSubtitleTracks adds WVTT and STPP subtitle tracks for the given languages, one
// alternative group per format. Track names are "subs_wvtt_{lang}" and "subs_stpp_{lang}".
func (a *Asset) AddSubtitleTracks(wvttLangs, stppLangs []string) error {
	for _, f := range []struct {
		format SubtitleFormat
		langs  []string
	}{
		{SubtitleFormatWVTT, wvttLangs},
		{SubtitleFormatSTPP, stppLangs},
	} {
		if len(f.langs) == 0 {
			continue
		}
		group := AltGroup{AltGroupID: len(a.Groups) + 1}
		for _, lang := range f.langs {
			name := fmt.Sprintf("subs_%s_%s", f.format, lang)
			ct, err := NewSubtitleTrack(name, f.format, lang)
			if err != nil {
				return fmt.Errorf("failed to create %s subtitle track for %s: %w", f.format, lang, err)
			}
			group.Tracks = append(group.Tracks, ct)
		}
		a.Groups = append(a.Groups, group)
	}
	return nil
}

// GenCatalog generates a catalog entry for every track of the asset.
func (a *Asset) GenCatalog(namespace string) (*Catalog, error) {
	renderGroup := 1
	var tracks []Track
	for _, group := range a.Groups {
		for _, ct := range group.Tracks {
			initData, err := EncodeInitData(ct.init)
			if err != nil {
				return nil, fmt.Errorf("could not generate init data for track %s: %w", ct.Name, err)
			}
			track := Track{
				Name:        ct.Name,
				Namespace:   namespace,
				Packaging:   "cmaf",
				IsLive:      true,
				RenderGroup: Ptr(renderGroup),
				AltGroup:    Ptr(group.AltGroupID),
				InitData:    initData,
				Codec:       ct.Info.Codec,
				Timescale:   Ptr(int(ct.Info.Timescale)),
				Language:    ct.Info.Language,
			}
			if ct.SampleBitrate != trackselection.NoValue {
				track.Bitrate = Ptr(ct.SampleBitrate)
			}
			switch ct.Info.TrackType {
			case trackselection.TrackTypeVideo:
				track.Role = RoleVideo
				track.MimeType = "video/mp4"
				if ct.Info.Width > 0 && ct.Info.Height > 0 {
					track.Width = Ptr(ct.Info.Width)
					track.Height = Ptr(ct.Info.Height)
				}
				if ct.Framerate > 0 {
					track.Framerate = Ptr(ct.Framerate)
				}
			case trackselection.TrackTypeAudio:
				track.Role = RoleAudio
				if hasLanguage(ct.Info.Language, a.MainLanguage) {
					track.Role = RoleMain
				}
				track.MimeType = "audio/mp4"
			case trackselection.TrackTypeText:
				track.Role = RoleSubtitle
				if hasLanguage(ct.Info.Language, a.ForcedSubtitleLanguages...) {
					track.Role = RoleForcedSubtitle
				}
				track.MimeType = "application/mp4"
			}
			tracks = append(tracks, track)
		}
	}
	return &Catalog{
		Version: 1,
		Tracks:  tracks,
	}, nil
}

func hasLanguage(lang string, langs ...string) bool {
	if lang == "" {
		return false
	}
	for _, l := range langs {
		if trackselection.NormalizeLanguage(l) == lang {
			return true
		}
	}
	return false
}
