package trackselection

import "sync"

// Tracker re-runs selection passes only when the Config version moved since the last pass.
// Changes of the renderer inputs are not detected; whoever rebuilds the track groups calls
// Config.Invalidate.
type Tracker struct {
	selector *Selector

	mu      sync.Mutex
	ran     bool
	version uint64
	last    []*Selection
}

// NewTracker wraps s.
func NewTracker(s *Selector) *Tracker {
	return &Tracker{selector: s}
}

// Stale reports whether the next Select call will run a pass.
func (t *Tracker) Stale() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.ran || t.version != t.selector.config.Version()
}

// Select returns the selections for the current configuration. ran reports whether a pass
// was executed; otherwise the selections of the previous pass are returned. A failed pass
// leaves the previous result in place and is retried on the next call.
func (t *Tracker) Select(caps []RendererCapabilities, groups []TrackGroupSet) (selections []*Selection, ran bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, version := t.selector.config.Snapshot()
	if t.ran && version == t.version {
		return t.last, false, nil
	}
	selections, err = t.selector.selectWith(p, caps, groups)
	if err != nil {
		return nil, false, err
	}
	t.ran = true
	t.version = version
	t.last = selections
	return selections, true, nil
}

// Last returns the selections of the last successful pass and the version it ran against.
func (t *Tracker) Last() ([]*Selection, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.version
}
