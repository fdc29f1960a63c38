package trackselection

import (
	"fmt"
	"log/slog"
)

// strategy selects tracks for one renderer category.
type strategy func(s *Selector, caps RendererCapabilities, groups TrackGroupSet,
	support SupportMatrix, p Parameters) (*Selection, error)

var strategies = map[TrackType]strategy{
	TrackTypeVideo: (*Selector).selectVideoTrack,
	TrackTypeAudio: (*Selector).selectAudioTrack,
	TrackTypeText:  (*Selector).selectTextTrack,
}

// Observer is called once per renderer after a successful pass. sel is nil for a disabled
// renderer.
type Observer func(trackType TrackType, sel *Selection)

// Selector runs selection passes against the preferences held by a Config.
// A Selector performs no I/O and keeps no state between passes; callers serialize passes
// themselves or use a Tracker.
type Selector struct {
	config   *Config
	adaptive AdaptiveFactory
	logger   *slog.Logger
	observer Observer
}

// Option configures a Selector.
type Option func(*Selector)

// WithAdaptiveFactory enables adaptive video selections built by f.
func WithAdaptiveFactory(f AdaptiveFactory) Option {
	return func(s *Selector) {
		s.adaptive = f
	}
}

// WithLogger sets the logger used for decision diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = l
	}
}

// WithObserver registers fn to be told about every renderer's selection.
func WithObserver(fn Observer) Option {
	return func(s *Selector) {
		s.observer = fn
	}
}

// New returns a Selector reading preferences from cfg. A nil cfg uses DefaultParameters.
func New(cfg *Config, opts ...Option) *Selector {
	if cfg == nil {
		cfg = NewConfig()
	}
	s := &Selector{
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the configuration the Selector reads.
func (s *Selector) Config() *Config {
	return s.config
}

// SelectTracks returns one selection per renderer, nil meaning the renderer is disabled.
// caps, groups and support are indexed by renderer. A capability query failure aborts the
// whole pass; no partial result is returned.
func (s *Selector) SelectTracks(caps []RendererCapabilities, groups []TrackGroupSet,
	support []SupportMatrix) ([]*Selection, error) {
	return s.selectTracks(s.config.Parameters(), caps, groups, support)
}

// Select queries the renderers for support of every format and then runs SelectTracks.
func (s *Selector) Select(caps []RendererCapabilities, groups []TrackGroupSet) ([]*Selection, error) {
	return s.selectWith(s.config.Parameters(), caps, groups)
}

func (s *Selector) selectWith(p Parameters, caps []RendererCapabilities, groups []TrackGroupSet) ([]*Selection, error) {
	if len(caps) != len(groups) {
		return nil, fmt.Errorf("%w: %d renderers, %d track group sets", ErrInputMismatch, len(caps), len(groups))
	}
	support := make([]SupportMatrix, len(caps))
	for i := range caps {
		m, err := MapSupport(caps[i], groups[i])
		if err != nil {
			return nil, err
		}
		support[i] = m
	}
	return s.selectTracks(p, caps, groups, support)
}

func (s *Selector) selectTracks(p Parameters, caps []RendererCapabilities, groups []TrackGroupSet,
	support []SupportMatrix) ([]*Selection, error) {
	if len(caps) != len(groups) || len(caps) != len(support) {
		return nil, fmt.Errorf("%w: %d renderers, %d track group sets, %d support matrices",
			ErrInputMismatch, len(caps), len(groups), len(support))
	}
	selections := make([]*Selection, len(caps))
	for i := range caps {
		if len(support[i]) != groups[i].Len() {
			return nil, fmt.Errorf("%w: renderer %d has %d groups but %d support rows",
				ErrInputMismatch, i, groups[i].Len(), len(support[i]))
		}
		fn, ok := strategies[caps[i].TrackType()]
		if !ok {
			fn = (*Selector).selectOtherTrack
		}
		sel, err := fn(s, caps[i], groups[i], support[i], p)
		if err != nil {
			return nil, fmt.Errorf("renderer %d: %w", i, err)
		}
		selections[i] = sel
	}
	if s.observer != nil {
		for i := range caps {
			s.observer(caps[i].TrackType(), selections[i])
		}
	}
	return selections, nil
}
