package trackselection

import (
	"fmt"
	"strings"
)

// NoValue marks an unknown width, height, bitrate or pixel count.
const NoValue = -1

// SelectionFlags carries the default/forced flags of a Format.
type SelectionFlags uint8

const (
	SelectionFlagDefault SelectionFlags = 1 << iota
	SelectionFlagForced
)

// Has reports whether all bits in f are set.
func (s SelectionFlags) Has(f SelectionFlags) bool {
	return s&f == f
}

func (s SelectionFlags) String() string {
	var parts []string
	if s.Has(SelectionFlagDefault) {
		parts = append(parts, "default")
	}
	if s.Has(SelectionFlagForced) {
		parts = append(parts, "forced")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Format is the static description of one encoded rendition.
// It is produced by the demuxer/catalog layer and never modified afterwards.
type Format struct {
	// ID identifies the rendition, e.g. the MoQ track name.
	ID string
	// MimeType is the sample mime type. Empty means unknown.
	MimeType string
	// Codecs is the RFC 6381 codec string, e.g. "avc1.64001f".
	Codecs string
	// Width and Height are in pixels, NoValue if unknown.
	Width  int
	Height int
	// Bitrate in bits per second, NoValue if unknown.
	Bitrate int
	// Language is the normalized language, see NormalizeLanguage. Empty means none.
	Language       string
	SelectionFlags SelectionFlags
}

// PixelCount returns Width*Height or NoValue if a dimension is unknown.
func (f Format) PixelCount() int {
	if f.Width == NoValue || f.Height == NoValue {
		return NoValue
	}
	return f.Width * f.Height
}

// IsDefault reports whether the default selection flag is set.
func (f Format) IsDefault() bool {
	return f.SelectionFlags.Has(SelectionFlagDefault)
}

// IsForced reports whether the forced selection flag is set.
func (f Format) IsForced() bool {
	return f.SelectionFlags.Has(SelectionFlagForced)
}

// HasLanguage reports whether the format's language equals language after normalization.
// An empty language never matches.
//
// A language without region matches every region of the same base language, so "en"
// matches a track tagged "en-US" and the other way round. Two different regions never match.
func (f Format) HasLanguage(language string) bool {
	if language == "" {
		return false
	}
	own := NormalizeLanguage(f.Language)
	if own == language {
		return true
	}
	ownBase, ownRegion, _ := strings.Cut(own, "-")
	base, region, _ := strings.Cut(language, "-")
	return ownBase != "" && ownBase == base && (ownRegion == "" || region == "")
}

func (f Format) String() string {
	return fmt.Sprintf("%s(mime=%s codecs=%s %dx%d br=%d lang=%s flags=%s)",
		f.ID, f.MimeType, f.Codecs, f.Width, f.Height, f.Bitrate, f.Language, f.SelectionFlags)
}

// ComparePixelCounts orders two pixel counts. A known pixel count is greater than NoValue,
// and two unknown counts are equal.
func ComparePixelCounts(first, second int) int {
	switch {
	case first == NoValue && second == NoValue:
		return 0
	case first == NoValue:
		return -1
	case second == NoValue:
		return 1
	case first < second:
		return -1
	case first > second:
		return 1
	default:
		return 0
	}
}

// TrackGroup is an ordered set of mutually exclusive renditions of one logical track.
// Indices are stable for the lifetime of the group.
type TrackGroup struct {
	// ID identifies the group, e.g. the catalog altGroup.
	ID      string
	formats []Format
}

// NewTrackGroup creates a group from formats. The slice is copied.
func NewTrackGroup(id string, formats ...Format) *TrackGroup {
	fs := make([]Format, len(formats))
	copy(fs, formats)
	return &TrackGroup{ID: id, formats: fs}
}

// Len returns the number of formats in the group.
func (g *TrackGroup) Len() int {
	return len(g.formats)
}

// Format returns the format at index i. It panics if i is out of range.
func (g *TrackGroup) Format(i int) Format {
	return g.formats[i]
}

// IndexOf returns the index of the format with the given ID, or -1.
func (g *TrackGroup) IndexOf(id string) int {
	for i := range g.formats {
		if g.formats[i].ID == id {
			return i
		}
	}
	return -1
}

// TrackGroupSet is the ordered collection of groups available to one renderer.
// Order only matters as iteration order for tie-breaking.
type TrackGroupSet []*TrackGroup

// Len returns the number of groups.
func (s TrackGroupSet) Len() int {
	return len(s)
}

// Get returns group i.
func (s TrackGroupSet) Get(i int) *TrackGroup {
	return s[i]
}

// IndexOf returns the index of group g in the set, or -1.
func (s TrackGroupSet) IndexOf(g *TrackGroup) int {
	for i := range s {
		if s[i] == g {
			return i
		}
	}
	return -1
}

// TrackType is the media category a renderer handles.
type TrackType int

const (
	TrackTypeUnknown TrackType = iota
	TrackTypeVideo
	TrackTypeAudio
	TrackTypeText
	TrackTypeMetadata
)

var trackTypeNames = map[TrackType]string{
	TrackTypeUnknown:  "unknown",
	TrackTypeVideo:    "video",
	TrackTypeAudio:    "audio",
	TrackTypeText:     "text",
	TrackTypeMetadata: "metadata",
}

func (t TrackType) String() string {
	if name, ok := trackTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TrackType(%d)", int(t))
}

// ParseTrackType maps a name ("video", "audio", "text", "subtitle", "metadata") to a TrackType.
func ParseTrackType(name string) TrackType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "video":
		return TrackTypeVideo
	case "audio":
		return TrackTypeAudio
	case "text", "subtitle", "subtitles", "caption":
		return TrackTypeText
	case "metadata", "data":
		return TrackTypeMetadata
	default:
		return TrackTypeUnknown
	}
}
