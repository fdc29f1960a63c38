package internal

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

// TrackGroups is the catalog arranged into track groups per track type.
type TrackGroups struct {
	byType map[trackselection.TrackType]trackselection.TrackGroupSet
	tracks map[string]Track
}

// BuildTrackGroups arranges the tracks of cat into track groups. Tracks of the same type
// that share an altGroup form one group in catalog order; tracks without altGroup form a
// group of their own. Fields missing in the catalog are taken from the track's init data.
func BuildTrackGroups(cat *Catalog) (*TrackGroups, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	type groupKey struct {
		trackType trackselection.TrackType
		id        string
	}
	tg := &TrackGroups{
		byType: make(map[trackselection.TrackType]trackselection.TrackGroupSet),
		tracks: make(map[string]Track, len(cat.Tracks)),
	}
	var order []groupKey
	formats := make(map[groupKey][]trackselection.Format)
	for _, track := range cat.Tracks {
		trackType, f := formatFromTrack(track)
		key := groupKey{trackType, "track:" + track.Name}
		if track.AltGroup != nil {
			key.id = "alt:" + strconv.Itoa(*track.AltGroup)
		}
		if _, ok := formats[key]; !ok {
			order = append(order, key)
		}
		formats[key] = append(formats[key], f)
		tg.tracks[track.Name] = track
	}
	for _, key := range order {
		group := trackselection.NewTrackGroup(key.id, formats[key]...)
		tg.byType[key.trackType] = append(tg.byType[key.trackType], group)
	}
	return tg, nil
}

// formatFromTrack converts a catalog track into a Format, probing the init data for
// anything the catalog leaves out. If the init data cannot be probed, the track keeps what
// the catalog states, which leaves an unknown codec unsupported by every renderer.
func formatFromTrack(track Track) (trackselection.TrackType, trackselection.Format) {
	f := trackselection.Format{
		ID:       track.Name,
		Codecs:   track.Codec,
		MimeType: MimeTypeForCodec(track.Codec),
		Width:    intOrNoValue(track.Width),
		Height:   intOrNoValue(track.Height),
		Bitrate:  intOrNoValue(track.Bitrate),
		Language: trackselection.NormalizeLanguage(track.Language),
	}
	switch track.Role {
	case RoleMain:
		f.SelectionFlags |= trackselection.SelectionFlagDefault
	case RoleForcedSubtitle:
		f.SelectionFlags |= trackselection.SelectionFlagForced
	}

	trackType := TrackTypeForRole(track.Role)
	if trackType == trackselection.TrackTypeUnknown {
		trackType = TrackTypeForCodec(track.Codec)
	}
	if trackType == trackselection.TrackTypeUnknown {
		trackType = TrackTypeForMimeType(track.MimeType)
	}

	needsProbe := trackType == trackselection.TrackTypeUnknown || f.Codecs == "" || f.Language == "" ||
		(trackType == trackselection.TrackTypeVideo && (f.Width == trackselection.NoValue || f.Height == trackselection.NoValue))
	var info *InitInfo
	if track.InitData != "" && needsProbe {
		var err error
		if info, err = ProbeInitData(track.InitData); err != nil {
			slog.Warn("could not probe init data", "track", track.Name, "error", err)
		}
	}
	if info != nil {
		if trackType == trackselection.TrackTypeUnknown {
			trackType = info.TrackType
		}
		if f.Codecs == "" {
			f.Codecs = info.Codec
		}
		if f.MimeType == "" {
			f.MimeType = info.MimeType
		}
		if f.Width == trackselection.NoValue && info.Width > 0 {
			f.Width = info.Width
		}
		if f.Height == trackselection.NoValue && info.Height > 0 {
			f.Height = info.Height
		}
		if f.Language == "" {
			f.Language = info.Language
		}
	}
	if f.MimeType == "" {
		f.MimeType = track.MimeType
	}
	return trackType, f
}

func intOrNoValue(v *int) int {
	if v == nil {
		return trackselection.NoValue
	}
	return *v
}

// ForType returns the groups for one track type.
func (tg *TrackGroups) ForType(trackType trackselection.TrackType) trackselection.TrackGroupSet {
	return tg.byType[trackType]
}

// Inputs returns the per-renderer group sets for a selection pass.
func (tg *TrackGroups) Inputs(renderers []*CodecCapabilities) ([]trackselection.RendererCapabilities, []trackselection.TrackGroupSet) {
	caps := make([]trackselection.RendererCapabilities, len(renderers))
	sets := make([]trackselection.TrackGroupSet, len(renderers))
	for i, r := range renderers {
		caps[i] = r
		sets[i] = tg.ForType(r.Type)
	}
	return caps, sets
}

// Track returns the catalog track with the given name.
func (tg *TrackGroups) Track(name string) (Track, bool) {
	t, ok := tg.tracks[name]
	return t, ok
}

// Lookup maps a selection back to catalog tracks. A nil selection yields no tracks.
func (tg *TrackGroups) Lookup(sel *trackselection.Selection) ([]Track, error) {
	if sel == nil {
		return nil, nil
	}
	tracks := make([]Track, 0, sel.Length())
	for _, ti := range sel.Tracks {
		if ti < 0 || ti >= sel.Group.Len() {
			return nil, fmt.Errorf("%w: index %d in group %s", ErrTrackNotFound, ti, sel.Group.ID)
		}
		t, ok := tg.tracks[sel.Group.Format(ti).ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, sel.Group.Format(ti).ID)
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// LogValue summarizes the groups for structured logging.
func (tg *TrackGroups) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(tg.byType))
	for tt, set := range tg.byType {
		ids := make([]string, 0, set.Len())
		for _, g := range set {
			ids = append(ids, fmt.Sprintf("%s(%d)", g.ID, g.Len()))
		}
		attrs = append(attrs, slog.Any(tt.String(), ids))
	}
	return slog.GroupValue(attrs...)
}
