package main

import (
	"context"
	"fmt"

	"github.com/Eyevinn/moqtracksel/internal"
)

// reselect runs a selection pass if the preferences or track groups changed and moves
// every renderer whose start track changed to a new subscription.
func (h *moqHandler) reselect(ctx context.Context) error {
	sels, ran, err := h.engine.selectFor(h.groups)
	if err != nil {
		return fmt.Errorf("track selection failed: %w", err)
	}
	if !ran {
		h.logger.Debug("selection unchanged", "configVersion", h.engine.cfg.Version())
		return nil
	}
	if len(h.subs) != len(sels) {
		h.closeAll()
		h.subs = make([]*trackSubscription, len(sels))
	}
	for i, sel := range sels {
		trackType := h.engine.renderers[i].Type
		var want *internal.Track
		if sel != nil {
			tracks, err := h.groups.Lookup(sel)
			if err != nil {
				h.logger.Error("selection does not map to catalog tracks", "trackType", trackType, "error", err)
			} else {
				t := startTrack(tracks)
				want = &t
			}
		}

		cur := h.subs[i]
		if cur != nil && want != nil && cur.name == want.Name {
			continue
		}
		if cur != nil {
			if err := cur.close(); err != nil {
				h.logger.Warn("failed to close subscription", "track", cur.name, "error", err)
			}
			h.subs[i] = nil
		}
		if want == nil {
			h.logger.Info("renderer disabled", "trackType", trackType)
			continue
		}
		sub, err := h.openSubscription(ctx, *want)
		if err != nil {
			return err
		}
		h.subs[i] = sub
		if cur != nil {
			internal.RecordSubscriptionSwitch(trackType)
		}
		h.logger.Info("subscribed",
			"trackType", trackType,
			"track", want.Name,
			"selection", sel)
	}
	return nil
}
