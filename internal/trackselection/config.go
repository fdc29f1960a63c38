package trackselection

import (
	"sync"
	"sync/atomic"
)

// Config holds the mutable selection preferences. It may be changed from any goroutine
// while selection passes run on another. Every setter that changes a stored value bumps
// the version and calls the invalidation listener exactly once; storing an equal value
// is a no-op.
type Config struct {
	mu       sync.Mutex
	params   Parameters
	version  atomic.Uint64
	listener func(version uint64)
}

// ConfigOption configures a Config at construction.
type ConfigOption func(*Config)

// WithVideoOverride forces the video group and/or track index.
func WithVideoOverride(group, track int) ConfigOption {
	return func(c *Config) {
		c.params.VideoOverride = Override{Group: group, Track: track}
	}
}

// WithAudioOverride forces the audio group and/or track index.
func WithAudioOverride(group, track int) ConfigOption {
	return func(c *Config) {
		c.params.AudioOverride = Override{Group: group, Track: track}
	}
}

// WithInvalidationListener registers fn to be called after every change with the new
// version. fn is called without internal locks held.
func WithInvalidationListener(fn func(version uint64)) ConfigOption {
	return func(c *Config) {
		c.listener = fn
	}
}

// WithParameters replaces the default parameters.
func WithParameters(p Parameters) ConfigOption {
	return func(c *Config) {
		c.params = p
	}
}

// NewConfig returns a Config holding DefaultParameters modified by opts.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{params: DefaultParameters()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Version returns the current configuration version. It starts at 0 and increases on
// every effective change.
func (c *Config) Version() uint64 {
	return c.version.Load()
}

// Parameters returns a copy of the current parameters.
func (c *Config) Parameters() Parameters {
	p, _ := c.Snapshot()
	return p
}

// Snapshot returns the current parameters together with the version they belong to.
func (c *Config) Snapshot() (Parameters, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params, c.version.Load()
}

// Invalidate forces the next tracked pass to re-run, e.g. when the available track groups
// were rebuilt.
func (c *Config) Invalidate() {
	c.mu.Lock()
	v := c.version.Add(1)
	c.mu.Unlock()
	c.notify(v)
}

// update applies fn under the lock. fn reports whether it changed anything.
func (c *Config) update(fn func(p *Parameters) bool) {
	c.mu.Lock()
	if !fn(&c.params) {
		c.mu.Unlock()
		return
	}
	v := c.version.Add(1)
	c.mu.Unlock()
	c.notify(v)
}

func (c *Config) notify(v uint64) {
	if c.listener != nil {
		c.listener(v)
	}
}

// SetPreferredAudioLanguage sets the preferred audio language, which is also used for
// forced text tracks. Empty selects the default track, or the first track if there is
// no default.
func (c *Config) SetPreferredAudioLanguage(lang string) {
	lang = NormalizeLanguage(lang)
	c.update(func(p *Parameters) bool {
		if p.PreferredAudioLanguage == lang {
			return false
		}
		p.PreferredAudioLanguage = lang
		return true
	})
}

// SetPreferredTextLanguage sets the preferred text language. Empty selects the default
// track, or no track if there is no default.
func (c *Config) SetPreferredTextLanguage(lang string) {
	lang = NormalizeLanguage(lang)
	c.update(func(p *Parameters) bool {
		if p.PreferredTextLanguage == lang {
			return false
		}
		p.PreferredTextLanguage = lang
		return true
	})
}

// SetAllowMixedMimeAdaptiveness sets whether adaptive selections may mix mime types.
func (c *Config) SetAllowMixedMimeAdaptiveness(allow bool) {
	c.update(func(p *Parameters) bool {
		if p.AllowMixedMimeAdaptiveness == allow {
			return false
		}
		p.AllowMixedMimeAdaptiveness = allow
		return true
	})
}

// SetAllowNonSeamlessAdaptiveness sets whether non-seamless adaptation is allowed.
func (c *Config) SetAllowNonSeamlessAdaptiveness(allow bool) {
	c.update(func(p *Parameters) bool {
		if p.AllowNonSeamlessAdaptiveness == allow {
			return false
		}
		p.AllowNonSeamlessAdaptiveness = allow
		return true
	})
}

// SetMaxVideoSize sets the maximum allowed video width and height.
func (c *Config) SetMaxVideoSize(width, height int) {
	c.update(func(p *Parameters) bool {
		if p.MaxVideoWidth == width && p.MaxVideoHeight == height {
			return false
		}
		p.MaxVideoWidth = width
		p.MaxVideoHeight = height
		return true
	})
}

// SetMaxVideoSizeSD is SetMaxVideoSize(MaxVideoWidthSD, MaxVideoHeightSD).
func (c *Config) SetMaxVideoSizeSD() {
	c.SetMaxVideoSize(MaxVideoWidthSD, MaxVideoHeightSD)
}

// ClearMaxVideoSize is SetMaxVideoSize(Unbounded, Unbounded).
func (c *Config) ClearMaxVideoSize() {
	c.SetMaxVideoSize(Unbounded, Unbounded)
}

// SetExceedVideoConstraintsIfNecessary sets whether size constraints may be ignored when
// no video track satisfies them.
func (c *Config) SetExceedVideoConstraintsIfNecessary(exceed bool) {
	c.update(func(p *Parameters) bool {
		if p.ExceedVideoConstraintsIfNecessary == exceed {
			return false
		}
		p.ExceedVideoConstraintsIfNecessary = exceed
		return true
	})
}

// SetViewportSize sets the viewport used to discard needlessly large video tracks.
func (c *Config) SetViewportSize(width, height int, orientationMayChange bool) {
	c.update(func(p *Parameters) bool {
		if p.ViewportWidth == width && p.ViewportHeight == height &&
			p.ViewportOrientationMayChange == orientationMayChange {
			return false
		}
		p.ViewportWidth = width
		p.ViewportHeight = height
		p.ViewportOrientationMayChange = orientationMayChange
		return true
	})
}

// SetViewportSizeFromDisplay uses the physical display size as viewport, assuming playback
// is fullscreen.
func (c *Config) SetViewportSizeFromDisplay(displayWidth, displayHeight int, orientationMayChange bool) {
	c.SetViewportSize(displayWidth, displayHeight, orientationMayChange)
}

// ClearViewportConstraints is SetViewportSize(Unbounded, Unbounded, true).
func (c *Config) ClearViewportConstraints() {
	c.SetViewportSize(Unbounded, Unbounded, true)
}

// SetVideoOverride forces the video group and/or track. Use NoOverride to leave an index
// to the strategy.
func (c *Config) SetVideoOverride(group, track int) {
	o := Override{Group: group, Track: track}
	c.update(func(p *Parameters) bool {
		if p.VideoOverride == o {
			return false
		}
		p.VideoOverride = o
		return true
	})
}

// SetAudioOverride forces the audio group and/or track.
func (c *Config) SetAudioOverride(group, track int) {
	o := Override{Group: group, Track: track}
	c.update(func(p *Parameters) bool {
		if p.AudioOverride == o {
			return false
		}
		p.AudioOverride = o
		return true
	})
}

// ClearOverrides removes all video and audio overrides.
func (c *Config) ClearOverrides() {
	c.update(func(p *Parameters) bool {
		if p.VideoOverride == NoOverrides && p.AudioOverride == NoOverrides {
			return false
		}
		p.VideoOverride = NoOverrides
		p.AudioOverride = NoOverrides
		return true
	})
}
