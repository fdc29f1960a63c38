package internal

import (
	"encoding/json"
	"fmt"
)

// Track roles with a meaning for track selection.
const (
	RoleVideo          = "video"
	RoleAudio          = "audio"
	RoleSubtitle       = "subtitle"
	RoleCaption        = "caption"
	RoleMain           = "main"
	RoleForcedSubtitle = "forced-subtitle"
)

// Catalog represents the WARP JSON catalog as defined in
// [draft-ietf-moq-warp](https://moq-wg.github.io/warp-streaming-format/draft-ietf-moq-warp.html).
// It describes the tracks offered by a publisher.
type Catalog struct {
	// Version specifies the version of WARP referenced by this catalog.
	Version int `json:"version"`

	// GeneratedAt is the wallclock time in milliseconds at which the catalog was generated.
	GeneratedAt *int64 `json:"generatedAt,omitempty"`

	// DeltaUpdate indicates that this catalog object represents a delta (or partial) update.
	DeltaUpdate bool `json:"deltaUpdate,omitempty"`

	// AddTracks, RemoveTracks and CloneTracks are delta processing instructions.
	AddTracks    []Track `json:"addTracks,omitempty"`
	RemoveTracks []Track `json:"removeTracks,omitempty"`
	CloneTracks  []Track `json:"cloneTracks,omitempty"`

	// Tracks is the array of track objects. Required for non-delta updates.
	Tracks []Track `json:"tracks,omitempty"`

	SupportsDeltaUpdates bool `json:"supportsDeltaUpdates,omitempty"`
}

// ParseCatalog decodes and validates a full (non-delta) catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks that the catalog is a full catalog with uniquely named tracks.
func (c *Catalog) Validate() error {
	if c.DeltaUpdate {
		return ErrDeltaCatalog
	}
	seen := make(map[string]bool, len(c.Tracks))
	for i, t := range c.Tracks {
		if t.Name == "" {
			return fmt.Errorf("%w: track %d has no name", ErrInvalidCatalog, i)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate track name %q", ErrInvalidCatalog, t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// GetTrackByName returns the track with the given name, or nil if not found.
func (c *Catalog) GetTrackByName(name string) *Track {
	for i := range c.Tracks {
		if c.Tracks[i].Name == name {
			return &c.Tracks[i]
		}
	}
	return nil
}

// String returns an indented JSON representation of the catalog.
// InitData longer than 20 characters is shortened to its first 20 characters and the length.
func (c *Catalog) String() string {
	short := *c
	short.Tracks = make([]Track, len(c.Tracks))
	for i, track := range c.Tracks {
		short.Tracks[i] = track
		if len(track.InitData) > 20 {
			short.Tracks[i].InitData = fmt.Sprintf("%s...(len=%d)", track.InitData[:20], len(track.InitData))
		}
	}
	jsonBytes, err := json.MarshalIndent(short, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling catalog: %v", err)
	}
	return string(jsonBytes)
}

// Track represents a track object in the WARP catalog.
type Track struct {
	// Name defines the name of the track. Required.
	Name string `json:"name"`

	// Namespace is the namespace under which the track name is defined.
	Namespace string `json:"namespace,omitempty"`

	// Packaging defines the type of payload encapsulation, "loc" or "cmaf".
	Packaging string `json:"packaging"`

	IsLive bool `json:"isLive,omitempty"`

	// Role describes the purpose of the track, e.g. "video", "audio", "subtitle",
	// "main" or "forced-subtitle".
	Role string `json:"role,omitempty"`

	Label string `json:"label,omitempty"`

	// RenderGroup specifies a group of tracks which are designed to be rendered together.
	RenderGroup *int `json:"renderGroup,omitempty"`

	// AltGroup specifies a group of tracks which are alternate versions of one-another.
	AltGroup *int `json:"altGroup,omitempty"`

	// InitData holds the Base64 encoded CMAF init segment.
	InitData string `json:"initData,omitempty"`

	Dependencies []string `json:"depends,omitempty"`

	TemporalID *int `json:"temporalId,omitempty"`
	SpatialID  *int `json:"spatialId,omitempty"`

	// Codec is the RFC 6381 codec string.
	Codec    string `json:"codec,omitempty"`
	MimeType string `json:"mimeType,omitempty"`

	Timescale *int     `json:"timescale,omitempty"`
	Framerate *float64 `json:"framerate,omitempty"`

	// Bitrate in bits per second.
	Bitrate *int `json:"bitrate,omitempty"`

	// Width and Height are the encoded size of the video frames in pixels.
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`

	SampleRate    *int   `json:"samplerate,omitempty"`
	ChannelConfig string `json:"channelConfig,omitempty"`

	DisplayWidth  *int `json:"displayWidth,omitempty"`
	DisplayHeight *int `json:"displayHeight,omitempty"`

	// Language defines the dominant language of the track.
	Language string `json:"lang,omitempty"`

	// ParentName defines the parent track name to be cloned. Only used in CloneTracks.
	ParentName string `json:"parentName,omitempty"`
}

// Ptr returns a pointer to any value
func Ptr[T any](v T) *T {
	return &v
}
