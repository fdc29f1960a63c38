package main

import (
	"log/slog"

	"github.com/Eyevinn/moqtracksel/internal"
	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

// engine ties the renderers, preferences and the track selector together.
type engine struct {
	opts      *options
	cfg       *trackselection.Config
	tracker   *trackselection.Tracker
	renderers []*internal.CodecCapabilities
	logger    *slog.Logger
}

func newEngine(opts *options, logger *slog.Logger) (*engine, error) {
	cfg := trackselection.NewConfig(trackselection.WithInvalidationListener(internal.RecordConfigVersion))
	selOpts := []trackselection.Option{
		trackselection.WithLogger(logger),
		trackselection.WithObserver(internal.RecordSelection),
	}
	if opts.adaptive {
		selOpts = append(selOpts, trackselection.WithAdaptiveFactory(trackselection.DefaultAdaptiveFactory))
	}
	e := &engine{
		opts:      opts,
		cfg:       cfg,
		tracker:   trackselection.NewTracker(trackselection.New(cfg, selOpts...)),
		renderers: internal.DefaultRenderers(),
		logger:    logger,
	}
	if err := e.loadPreferences(); err != nil {
		return nil, err
	}
	return e, nil
}

// preferences reads the preferences file, if any, and lets the flags override it.
func (e *engine) preferences() (*internal.Preferences, error) {
	p := &internal.Preferences{}
	if e.opts.prefs != "" {
		var err error
		p, err = internal.LoadPreferences(e.opts.prefs)
		if err != nil {
			return nil, err
		}
	}
	if e.opts.audioLang != "" {
		p.AudioLanguage = e.opts.audioLang
	}
	if e.opts.textLang != "" {
		p.TextLanguage = e.opts.textLang
	}
	if e.opts.maxSize != "" {
		p.MaxVideoSize = e.opts.maxSize
	}
	if e.opts.viewport != "" {
		p.Viewport = e.opts.viewport
	}
	return p, p.Validate()
}

// loadPreferences applies the current preferences. The Config version only changes if a
// value changed.
func (e *engine) loadPreferences() error {
	p, err := e.preferences()
	if err != nil {
		return err
	}
	before := e.cfg.Version()
	if err := p.Apply(e.cfg); err != nil {
		return err
	}
	e.logger.Info("preferences applied",
		"changed", e.cfg.Version() != before,
		"configVersion", e.cfg.Version(),
		"audioLanguage", p.AudioLanguage,
		"textLanguage", p.TextLanguage)
	return nil
}

// selectFor runs a tracked selection pass over groups.
func (e *engine) selectFor(groups *internal.TrackGroups) ([]*trackselection.Selection, bool, error) {
	caps, sets := groups.Inputs(e.renderers)
	sels, ran, err := e.tracker.Select(caps, sets)
	if ran || err != nil {
		internal.RecordSelectionPass(err)
	}
	return sels, ran, err
}
