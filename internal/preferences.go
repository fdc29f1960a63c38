package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

// Preferences is the YAML representation of the track selection preferences.
// Absent fields take the default value when applied.
type Preferences struct {
	AudioLanguage string `yaml:"audioLanguage"`
	TextLanguage  string `yaml:"textLanguage"`
	// MaxVideoSize is "unbounded", "sd" or "WxH".
	MaxVideoSize string `yaml:"maxVideoSize"`
	// Viewport is "unbounded" or "WxH".
	Viewport                          string `yaml:"viewport"`
	ViewportOrientationMayChange      *bool  `yaml:"viewportOrientationMayChange"`
	AllowMixedMimeAdaptiveness        *bool  `yaml:"allowMixedMimeAdaptiveness"`
	AllowNonSeamlessAdaptiveness      *bool  `yaml:"allowNonSeamlessAdaptiveness"`
	ExceedVideoConstraintsIfNecessary *bool  `yaml:"exceedVideoConstraintsIfNecessary"`

	VideoOverride *OverridePreferences `yaml:"videoOverride"`
	AudioOverride *OverridePreferences `yaml:"audioOverride"`
}

// OverridePreferences forces a group and/or track index.
type OverridePreferences struct {
	Group *int `yaml:"group"`
	Track *int `yaml:"track"`
}

func (o *OverridePreferences) override() trackselection.Override {
	out := trackselection.NoOverrides
	if o == nil {
		return out
	}
	if o.Group != nil {
		out.Group = *o.Group
	}
	if o.Track != nil {
		out.Track = *o.Track
	}
	return out
}

// LoadPreferences reads preferences from a YAML file.
func LoadPreferences(path string) (*Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	return ParsePreferences(data)
}

// ParsePreferences decodes YAML preferences. Unknown fields are rejected.
func ParsePreferences(data []byte) (*Preferences, error) {
	var p Preferences
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return &Preferences{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidPreferences, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: multiple documents or trailing content", ErrInvalidPreferences)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the size fields and override indices.
func (p *Preferences) Validate() error {
	if _, _, err := ParseVideoSize(p.MaxVideoSize); err != nil {
		return fmt.Errorf("%w: maxVideoSize: %w", ErrInvalidPreferences, err)
	}
	if _, _, err := ParseViewport(p.Viewport); err != nil {
		return fmt.Errorf("%w: viewport: %w", ErrInvalidPreferences, err)
	}
	for name, o := range map[string]*OverridePreferences{"videoOverride": p.VideoOverride, "audioOverride": p.AudioOverride} {
		if o == nil {
			continue
		}
		if (o.Group != nil && *o.Group < 0) || (o.Track != nil && *o.Track < 0) {
			return fmt.Errorf("%w: %s indices must not be negative", ErrInvalidPreferences, name)
		}
	}
	return nil
}

// Apply stores the preferences in cfg. Every field is written, so re-applying an
// unchanged file leaves the Config version untouched.
func (p *Preferences) Apply(cfg *trackselection.Config) error {
	if err := p.Validate(); err != nil {
		return err
	}
	defaults := trackselection.DefaultParameters()
	maxW, maxH, _ := ParseVideoSize(p.MaxVideoSize)
	vpW, vpH, _ := ParseViewport(p.Viewport)

	cfg.SetPreferredAudioLanguage(p.AudioLanguage)
	cfg.SetPreferredTextLanguage(p.TextLanguage)
	cfg.SetMaxVideoSize(maxW, maxH)
	cfg.SetViewportSizeFromDisplay(vpW, vpH, boolOr(p.ViewportOrientationMayChange, defaults.ViewportOrientationMayChange))
	cfg.SetAllowMixedMimeAdaptiveness(boolOr(p.AllowMixedMimeAdaptiveness, defaults.AllowMixedMimeAdaptiveness))
	cfg.SetAllowNonSeamlessAdaptiveness(boolOr(p.AllowNonSeamlessAdaptiveness, defaults.AllowNonSeamlessAdaptiveness))
	cfg.SetExceedVideoConstraintsIfNecessary(boolOr(p.ExceedVideoConstraintsIfNecessary, defaults.ExceedVideoConstraintsIfNecessary))
	vo := p.VideoOverride.override()
	cfg.SetVideoOverride(vo.Group, vo.Track)
	ao := p.AudioOverride.override()
	cfg.SetAudioOverride(ao.Group, ao.Track)
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// ParseVideoSize parses a max video size: "" or "unbounded", "sd", or "WxH".
func ParseVideoSize(s string) (width, height int, err error) {
	if strings.EqualFold(strings.TrimSpace(s), "sd") {
		return trackselection.MaxVideoWidthSD, trackselection.MaxVideoHeightSD, nil
	}
	return ParseViewport(s)
}

// ParseViewport parses a viewport size: "" or "unbounded", or "WxH".
func ParseViewport(s string) (width, height int, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "unbounded" {
		return trackselection.Unbounded, trackselection.Unbounded, nil
	}
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q, want WxH", ErrInvalidSize, s)
	}
	width, err = strconv.Atoi(ws)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("%w: width in %q", ErrInvalidSize, s)
	}
	height, err = strconv.Atoi(hs)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("%w: height in %q", ErrInvalidSize, s)
	}
	return width, height, nil
}
